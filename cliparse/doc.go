// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first when present.

# CLI Flags

	-p            Server port
	-d            Database URL
	-t            Database type (sqlite or postgres)
	-secure       Mark cookies Secure (serve over HTTPS)
	-log-level    debug, info, warn or error
	-session-key  Secret for sessions and CSRF tokens

# Environment Variables

Flags fall back to environment variables:

	PORT           → -p (default 3318)
	DATABASE_URL   → -d
	DATABASE_TYPE  → -t (default sqlite)
	SECURE_COOKIES → -secure
	LOG_LEVEL      → -log-level (default info)
	SESSION_KEY    → -session-key

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - SESSION_KEY is missing or shorter than 32 bytes
*/
package cliparse
