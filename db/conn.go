// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/encuestas/cliparse"
)

// sqlitePragmas are appended to SQLite DSNs that don't set them already.
// foreign_keys is off by default in SQLite and the cascades depend on it.
var sqlitePragmas = []struct{ key, param string }{
	{"_pragma=foreign_keys", "_pragma=foreign_keys(1)"},
	{"_pragma=busy_timeout", "_pragma=busy_timeout(5000)"},
	{"_time_format", "_time_format=sqlite"},
}

// Open connects to the configured database and verifies the connection.
func Open(dbType, dsn string) (*sql.DB, error) {
	var conn *sql.DB
	var err error

	switch dbType {
	case cliparse.DatabasePostgres:
		conn, err = sql.Open("postgres", dsn)
	case cliparse.DatabaseSQLite:
		conn, err = sql.Open("sqlite", SQLiteDSN(dsn))
		if err == nil {
			// Single writer; concurrent writers would only trade SQLITE_BUSY errors
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}

// SQLiteDSN adds the pragmas the schema relies on to a SQLite DSN.
func SQLiteDSN(dsn string) string {
	for _, p := range sqlitePragmas {
		if strings.Contains(dsn, p.key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p.param
		} else {
			dsn += "?" + p.param
		}
	}
	return dsn
}

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY
// constraint rejecting an insert, for either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	return false
}
