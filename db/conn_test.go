// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/encuestas/cliparse"
	"github.com/danielhkuo/encuestas/db"
	"github.com/danielhkuo/encuestas/testutil"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{
			"plain path",
			"polls.db",
			"polls.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		},
		{
			"existing query",
			"file:polls.db?mode=rwc",
			"file:polls.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		},
		{
			"caller settings kept",
			"polls.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_time_format=sqlite",
			"polls.db?_pragma=busy_timeout(100)&_pragma=foreign_keys(1)&_time_format=sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := db.SQLiteDSN(tt.dsn); got != tt.want {
				t.Errorf("SQLiteDSN(%q) = %q, want %q", tt.dsn, got, tt.want)
			}
		})
	}
}

func TestOpenUnsupported(t *testing.T) {
	if _, err := db.Open("mysql", "whatever"); err == nil {
		t.Error("Open() should reject unknown database types")
	}
	if _, err := db.Schema("mysql"); err == nil {
		t.Error("Schema() should reject unknown database types")
	}
}

func TestSchemaDialects(t *testing.T) {
	pg, err := db.Schema(cliparse.DatabasePostgres)
	if err != nil {
		t.Fatal(err)
	}
	lite, err := db.Schema(cliparse.DatabaseSQLite)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range []string{pg, lite} {
		if strings.Contains(s, "%") {
			t.Error("Schema() left a placeholder unreplaced")
		}
		if !strings.Contains(s, "UNIQUE (choice_id, identity_key)") {
			t.Error("Schema() is missing the vote uniqueness constraint")
		}
	}
	if !strings.Contains(pg, "BIGSERIAL") || !strings.Contains(lite, "AUTOINCREMENT") {
		t.Error("Schema() did not apply dialect keys")
	}
}

func TestCreateSchemaIdempotent(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	// SetupTestDB already ran it once
	if err := db.CreateSchema(conn, testutil.DBType()); err != nil {
		t.Fatalf("second CreateSchema() failed: %v", err)
	}
}

func TestReopenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	conn, err := db.Open(cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.CreateSchema(conn, cliparse.DatabaseSQLite); err != nil {
		t.Fatal(err)
	}
	pub := time.Date(2026, 1, 2, 3, 4, 5, 600, time.UTC)
	questionID := testutil.CreateTestPoll(t, conn, "persisted", pub, true)
	conn.Close()

	conn, err = db.Open(cliparse.DatabaseSQLite, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer conn.Close()

	var got time.Time
	if err := conn.QueryRow(`SELECT pub_date FROM question WHERE id = $1`, questionID).Scan(&got); err != nil {
		t.Fatalf("query after reopen failed: %v", err)
	}
	if !got.Equal(pub) {
		t.Errorf("pub_date round trip: got %v, want %v", got, pub)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	_, choices := testutil.CreateOpenPoll(t, conn, "Question", "A")

	if _, err := testutil.InsertTestVote(t, conn, choices[0], "192.0.2.1", nil); err != nil {
		t.Fatal(err)
	}
	_, err := testutil.InsertTestVote(t, conn, choices[0], "192.0.2.1", nil)
	if !db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	// A foreign key failure is not a uniqueness failure
	_, err = testutil.InsertTestVote(t, conn, 999999, "192.0.2.1", nil)
	if err == nil {
		t.Fatal("Expected a foreign key error for a missing choice")
	}
	if db.IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = true for a foreign key error", err)
	}

	if db.IsUniqueViolation(nil) || db.IsUniqueViolation(errors.New("unique")) {
		t.Error("IsUniqueViolation() should only match driver errors")
	}
}

func TestCascadeDelete(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	questionID, choices := testutil.CreateOpenPoll(t, conn, "Doomed", "A", "B")
	if _, err := testutil.InsertTestVote(t, conn, choices[0], "192.0.2.1", nil); err != nil {
		t.Fatal(err)
	}

	if _, err := conn.Exec(`DELETE FROM question WHERE id = $1`, questionID); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := conn.QueryRow(`SELECT (SELECT COUNT(*) FROM choice) + (SELECT COUNT(*) FROM vote)`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected choices and votes to be deleted with the question, %d rows remain", n)
	}
}
