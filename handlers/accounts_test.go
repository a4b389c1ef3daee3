// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielhkuo/encuestas/testutil"
)

func TestLogin(t *testing.T) {
	env, db := setupTestEnv(t)
	handler := NewAccountHandler(env)
	polls := NewPollHandler(env)

	testutil.CreateTestUser(t, db, "alice", "wonderland", false)

	tests := []struct {
		name           string
		form           url.Values
		expectedStatus int
		location       string
		contains       []string
	}{
		{
			name:           "valid credentials",
			form:           url.Values{"username": {"alice"}, "password": {"wonderland"}, "next": {"/about/"}},
			expectedStatus: http.StatusFound,
			location:       "/about/",
		},
		{
			name:           "offsite next is ignored",
			form:           url.Values{"username": {"alice"}, "password": {"wonderland"}, "next": {"//evil.example/"}},
			expectedStatus: http.StatusFound,
			location:       "/",
		},
		{
			name:           "wrong password",
			form:           url.Values{"username": {"alice"}, "password": {"nope"}},
			expectedStatus: http.StatusOK,
			contains:       []string{"Please enter a correct username and password.", `value="alice"`},
		},
		{
			name:           "unknown user",
			form:           url.Values{"username": {"mallory"}, "password": {"wonderland"}},
			expectedStatus: http.StatusOK,
			contains:       []string{"Please enter a correct username and password."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.Login(w, testutil.MakeFormRequest(http.MethodPost, "/accounts/login/", tt.form))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.location != "" {
				testutil.AssertRedirect(t, w, tt.location)

				// The next page shows the user and the welcome flash
				page := httptest.NewRecorder()
				polls.About(page, followCookies(w, tt.location))
				testutil.AssertContains(t, page, "Signed in as alice", "Welcome back, alice.")
			}
			testutil.AssertContains(t, w, tt.contains...)
		})
	}
}

func TestLoginForm(t *testing.T) {
	env, _ := setupTestEnv(t)
	handler := NewAccountHandler(env)

	w := httptest.NewRecorder()
	handler.LoginForm(w, httptest.NewRequest(http.MethodGet, "/accounts/login/?next=/5/", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertContains(t, w, `name="username"`, `name="password"`, `value="/5/"`)
}

func TestLogout(t *testing.T) {
	env, db := setupTestEnv(t)
	handler := NewAccountHandler(env)

	user := testutil.CreateTestUser(t, db, "bob", "builder", false)
	req := testutil.WithCookies(httptest.NewRequest(http.MethodPost, "/accounts/logout/", nil), testutil.LoginCookies(t, env.Sessions, user))

	w := httptest.NewRecorder()
	handler.Logout(w, req)
	testutil.AssertRedirect(t, w, "/")

	if id := env.Sessions.CurrentUserID(followCookies(w, "/")); id != nil {
		t.Errorf("Expected no user after logout, got %d", *id)
	}
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/3/results/", "/3/results/"},
		{"//evil.example", "/"},
		{"https://evil.example", "/"},
		{`/\evil.example`, "/"},
		{"relative", "/"},
	}

	for _, tt := range tests {
		if got := safeNext(tt.next); got != tt.want {
			t.Errorf("safeNext(%q) = %q, want %q", tt.next, got, tt.want)
		}
	}
}
