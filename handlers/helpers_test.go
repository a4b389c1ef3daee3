// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/encuestas/testutil"
)

func setupTestEnv(t *testing.T) (*Env, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewEnv(db, testutil.GetTestConfig()), db
}

// withID sets the {id} path value the router would have matched
func withID(r *http.Request, id int64) *http.Request {
	r.SetPathValue("id", strconv.FormatInt(id, 10))
	return r
}

// followCookies builds a GET for path carrying the cookies set on w
func followCookies(w *httptest.ResponseRecorder, path string) *http.Request {
	return testutil.WithCookies(httptest.NewRequest(http.MethodGet, path, nil), w.Result().Cookies())
}
