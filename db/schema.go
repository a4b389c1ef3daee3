// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/encuestas/cliparse"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	ddl, err := Schema(dbType)
	if err != nil {
		return err
	}

	// SQLite drivers only run the first statement of a multi-statement Exec
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Schema returns the DDL for the given database type.
func Schema(dbType string) (string, error) {
	var r *strings.Replacer
	switch dbType {
	case cliparse.DatabasePostgres:
		r = strings.NewReplacer("%PK%", "BIGSERIAL PRIMARY KEY", "%TS%", "TIMESTAMPTZ", "%NOW%", "NOW()")
	case cliparse.DatabaseSQLite:
		r = strings.NewReplacer("%PK%", "INTEGER PRIMARY KEY AUTOINCREMENT", "%TS%", "TIMESTAMP", "%NOW%", "CURRENT_TIMESTAMP")
	default:
		return "", fmt.Errorf("unsupported database type %q", dbType)
	}
	return r.Replace(schema), nil
}

// Votes carry identity_key = 'user:<id>' when cast by an authenticated user
// and 'ip:<address>' otherwise. The single UNIQUE (choice_id, identity_key)
// stands in for the two nullability-gated constraints: one vote per choice
// per user, or per choice per IP for anonymous voters.
const schema = `
-- Users
CREATE TABLE IF NOT EXISTS users (
    id %PK%,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    is_staff BOOLEAN NOT NULL DEFAULT FALSE,
    created_at %TS% NOT NULL DEFAULT %NOW%
);

-- Questions (polls)
CREATE TABLE IF NOT EXISTS question (
    id %PK%,
    question_text VARCHAR(200) NOT NULL,
    pub_date %TS% NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_by BIGINT REFERENCES users(id) ON DELETE SET NULL,
    created_at %TS% NOT NULL DEFAULT %NOW%,
    updated_at %TS% NOT NULL DEFAULT %NOW%
);

CREATE INDEX IF NOT EXISTS idx_question_pub_date ON question(pub_date);
CREATE INDEX IF NOT EXISTS idx_question_active ON question(is_active, pub_date);

-- Choices
CREATE TABLE IF NOT EXISTS choice (
    id %PK%,
    question_id BIGINT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    choice_text VARCHAR(200) NOT NULL,
    created_at %TS% NOT NULL DEFAULT %NOW%
);

CREATE INDEX IF NOT EXISTS idx_choice_question_id ON choice(question_id);

-- Votes
CREATE TABLE IF NOT EXISTS vote (
    id %PK%,
    choice_id BIGINT NOT NULL REFERENCES choice(id) ON DELETE CASCADE,
    voter_ip TEXT NOT NULL,
    user_id BIGINT REFERENCES users(id) ON DELETE CASCADE,
    identity_key TEXT NOT NULL,
    voted_at %TS% NOT NULL DEFAULT %NOW%,
    CONSTRAINT unique_vote_per_choice UNIQUE (choice_id, identity_key)
);

CREATE INDEX IF NOT EXISTS idx_vote_choice_voted_at ON vote(choice_id, voted_at);
CREATE INDEX IF NOT EXISTS idx_vote_voter_ip_choice ON vote(voter_ip, choice_id);
CREATE INDEX IF NOT EXISTS idx_vote_user_id ON vote(user_id);
`
