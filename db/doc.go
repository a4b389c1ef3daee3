// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open accepts DATABASE_TYPE "postgres" (lib/pq) or "sqlite" (modernc.org/sqlite,
pure Go). SQLite DSNs get foreign_keys, busy_timeout and _time_format
pragmas appended when missing, and the pool is limited to one connection.

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

# Schema Creation

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: accounts, bcrypt password hashes, staff flag
  - question: poll text, pub_date, is_active, optional creator
  - choice: answers per question
  - vote: one row per recorded vote

# Relationships

	question 1──* choice 1──* vote
	users    1──* vote     (ON DELETE CASCADE)
	users    1──* question (created_by, ON DELETE SET NULL)

# Uniqueness

vote has UNIQUE (choice_id, identity_key). IsUniqueViolation recognises
the error from either driver so callers can map it to a domain error.
*/
package db
