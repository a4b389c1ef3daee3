// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/cliparse"
	"github.com/danielhkuo/encuestas/db"
	"github.com/danielhkuo/encuestas/models"
)

// PostgresURLEnv, when set, points the tests at a PostgreSQL database
// instead of a throwaway SQLite file. The tables are dropped first.
const PostgresURLEnv = "TEST_POSTGRES_URL"

// TestSessionKey is the session secret used by GetTestConfig
const TestSessionKey = "test-session-key-0123456789abcdef0123456789"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	auth.PasswordCost = bcrypt.MinCost

	dbType, dsn := DBType(), os.Getenv(PostgresURLEnv)
	if dbType == cliparse.DatabaseSQLite {
		dsn = filepath.Join(t.TempDir(), "test.db")
	}

	conn, err := db.Open(dbType, dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if dbType == cliparse.DatabasePostgres {
		// Clean up tables before each test
		_, err = conn.Exec(`DROP TABLE IF EXISTS vote, choice, question, users CASCADE`)
		if err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.CreateSchema(conn, dbType); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// DBType is the database type SetupTestDB uses
func DBType() string {
	if os.Getenv(PostgresURLEnv) != "" {
		return cliparse.DatabasePostgres
	}
	return cliparse.DatabaseSQLite
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  "test.db",
		DatabaseType: cliparse.DatabaseSQLite,
		SessionKey:   TestSessionKey,
	}
}

// CreateTestPoll creates a question and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, text string, pubDate time.Time, active bool) int64 {
	t.Helper()

	now := time.Now().UTC()
	var id int64
	err := conn.QueryRow(`
		INSERT INTO question (question_text, pub_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, text, pubDate.UTC(), active, now, now).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return id
}

// CreateOpenPoll creates an active poll published an hour ago with the
// given choices, returning the question ID and choice IDs in order
func CreateOpenPoll(t *testing.T, conn *sql.DB, text string, choices ...string) (int64, []int64) {
	t.Helper()

	questionID := CreateTestPoll(t, conn, text, time.Now().Add(-time.Hour), true)
	ids := make([]int64, 0, len(choices))
	for _, c := range choices {
		ids = append(ids, AddTestChoice(t, conn, questionID, c))
	}
	return questionID, ids
}

// AddTestChoice adds a choice to a question and returns the choice ID
func AddTestChoice(t *testing.T, conn *sql.DB, questionID int64, text string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO choice (question_id, choice_text, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, questionID, text, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	return id
}

// InsertTestVote stores a vote directly, bypassing admission checks.
// The identity key follows the user, or the IP when userID is nil.
func InsertTestVote(t *testing.T, conn *sql.DB, choiceID int64, ip string, userID *int64) (int64, error) {
	t.Helper()

	key := "ip:" + ip
	if userID != nil {
		key = fmt.Sprintf("user:%d", *userID)
	}

	var id int64
	err := conn.QueryRow(`
		INSERT INTO vote (choice_id, voter_ip, user_id, identity_key, voted_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, choiceID, ip, userID, key, time.Now().UTC()).Scan(&id)
	return id, err
}

// CountVotes returns the number of stored votes for a choice
func CountVotes(t *testing.T, conn *sql.DB, choiceID int64) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE choice_id = $1`, choiceID).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// CreateTestUser creates an account with the given password
func CreateTestUser(t *testing.T, conn *sql.DB, username, password string, staff bool) *models.User {
	t.Helper()

	u, err := auth.CreateUser(t.Context(), conn, username, password, staff)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// LoginCookies returns session cookies for the user
func LoginCookies(t *testing.T, sessions *auth.Sessions, u *models.User) []*http.Cookie {
	t.Helper()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := sessions.Login(w, r, u.ID, u.Username); err != nil {
		t.Fatalf("Failed to log in: %v", err)
	}
	return w.Result().Cookies()
}

// WithCookies adds cookies to the request. When a response set the same
// cookie more than once, the last value wins as it would in a browser.
func WithCookies(r *http.Request, cookies []*http.Cookie) *http.Request {
	last := make(map[string]*http.Cookie, len(cookies))
	var order []string
	for _, c := range cookies {
		if _, seen := last[c.Name]; !seen {
			order = append(order, c.Name)
		}
		last[c.Name] = c
	}
	for _, name := range order {
		r.AddCookie(last[name])
	}
	return r
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates a URL-encoded form submission
func MakeFormRequest(method, path string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatus(t, w, http.StatusFound)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertContains checks that the response body contains each substring
func AssertContains(t *testing.T, w *httptest.ResponseRecorder, subs ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range subs {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q. Body: %s", s, body)
		}
	}
}
