// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName   = "encuestas"
	sessionUserID = "user_id"
	sessionUser   = "username"
	sessionMaxAge = 14 * 24 * 60 * 60
)

// Flash message levels
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Sessions keeps the logged in user and pending flash messages in a
// signed and encrypted cookie.
type Sessions struct {
	store sessions.Store
}

func NewSessions(secret string, secure bool) *Sessions {
	s := sessions.NewCookieStore(DeriveKey(secret, "session-hash"), DeriveKey(secret, "session-block"))
	s.Options.Path = "/"
	s.Options.HttpOnly = true
	s.Options.Secure = secure
	s.Options.SameSite = http.SameSiteLaxMode
	s.Options.MaxAge = sessionMaxAge
	return &Sessions{store: s}
}

// get never returns nil; a cookie that fails to decode yields a fresh session
func (s *Sessions) get(r *http.Request) *sessions.Session {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		slog.Debug("discarding invalid session cookie", "error", err)
	}
	return sess
}

// CurrentUserID returns the logged in user's id, or nil for anonymous requests
func (s *Sessions) CurrentUserID(r *http.Request) *int64 {
	id, ok := s.get(r).Values[sessionUserID].(int64)
	if !ok {
		return nil
	}
	return &id
}

// CurrentUsername returns the logged in user's name, or ""
func (s *Sessions) CurrentUsername(r *http.Request) string {
	name, _ := s.get(r).Values[sessionUser].(string)
	return name
}

// Login binds the session to the user
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID int64, username string) error {
	sess := s.get(r)
	sess.Values[sessionUserID] = userID
	sess.Values[sessionUser] = username
	return sess.Save(r, w)
}

// Logout removes the user from the session, keeping pending flashes
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := s.get(r)
	delete(sess.Values, sessionUserID)
	delete(sess.Values, sessionUser)
	return sess.Save(r, w)
}

// AddFlash queues a message for the next page
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, level, message string) error {
	sess := s.get(r)
	sess.AddFlash(Flash{Level: level, Message: message})
	return sess.Save(r, w)
}

// Flashes pops the queued messages
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess := s.get(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if fl, ok := f.(Flash); ok {
			flashes = append(flashes, fl)
		}
	}
	if err := sess.Save(r, w); err != nil {
		slog.Error("failed to save session", "error", err)
	}
	return flashes
}
