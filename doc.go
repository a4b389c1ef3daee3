// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Encuestas polling server.

Encuestas publishes single-choice polls, takes one vote per voter and
shows live results.

# Starting the Server

	DATABASE_URL=encuestas.db SESSION_KEY=... go run .

Or against PostgreSQL:

	go run . -t postgres -d "postgres://..." -session-key ...

Use cmd/pollsctl to create accounts and load the demo polls.

# Architecture

  - voting: vote admission, tallies and open poll listings
  - handlers: HTTP request handlers (pages, votes, results, accounts, admin)
  - router: route definitions using Go 1.22+ routing, CSRF protection
  - views: embedded HTML templates
  - middleware: logging, panic recovery, JSON helpers, client IP
  - auth: passwords, accounts and cookie sessions
  - models: domain and response types
  - db: connections and schema creation
  - cliparse: configuration parsing
  - fixtures: demo data

See package documentation for each component.
*/
package main
