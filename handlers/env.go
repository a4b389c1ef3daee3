// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/cliparse"
	"github.com/danielhkuo/encuestas/middleware"
	"github.com/danielhkuo/encuestas/views"
	"github.com/danielhkuo/encuestas/voting"
)

// Env carries the dependencies shared by every handler
type Env struct {
	DB       *sql.DB
	Cfg      cliparse.Config
	Engine   *voting.Engine
	Sessions *auth.Sessions
	View     *views.View
}

func NewEnv(db *sql.DB, cfg cliparse.Config) *Env {
	sessions := auth.NewSessions(cfg.SessionKey, cfg.SecureCookies)
	return &Env{
		DB:       db,
		Cfg:      cfg,
		Engine:   voting.NewEngine(db),
		Sessions: sessions,
		View:     views.New(sessions),
	}
}

// identity resolves the voter behind the request
func (e *Env) identity(r *http.Request) voting.Identity {
	return voting.ResolveIdentity(e.Sessions.CurrentUserID(r), middleware.GetClientIP(r))
}

// flash queues a message, logging instead of failing the request
func (e *Env) flash(w http.ResponseWriter, r *http.Request, level, message string) {
	if err := e.Sessions.AddFlash(w, r, level, message); err != nil {
		logError(r, "failed to save flash message", err)
	}
}

// pathID parses a numeric path segment; anything else is treated as a
// route that doesn't exist
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParam reads ?page=, defaulting to the first page when it isn't a number
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

func resultsURL(questionID int64) string {
	return "/" + strconv.FormatInt(questionID, 10) + "/results/"
}
