// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/encuestas/auth"
)

// AccountHandler logs users in and out
type AccountHandler struct {
	*Env
}

func NewAccountHandler(env *Env) *AccountHandler {
	return &AccountHandler{Env: env}
}

// LoginData feeds login.html
type LoginData struct {
	Username string
	Next     string
	Error    string
}

// LoginForm handles GET /accounts/login/
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.View.Render(w, r, http.StatusOK, "login", "Log in", LoginData{Next: safeNext(r.URL.Query().Get("next"))})
}

// Login handles POST /accounts/login/
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.PostFormValue("username")
	next := safeNext(r.PostFormValue("next"))

	user, err := auth.Authenticate(r.Context(), h.DB, username, r.PostFormValue("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.View.Render(w, r, http.StatusOK, "login", "Log in", LoginData{
			Username: username,
			Next:     next,
			Error:    "Please enter a correct username and password.",
		})
		return
	}
	if err != nil {
		logError(r, "failed to authenticate", err)
		h.View.ServerError(w, r)
		return
	}

	if err := h.Sessions.Login(w, r, user.ID, user.Username); err != nil {
		logError(r, "failed to save session", err)
		h.View.ServerError(w, r)
		return
	}
	slog.Info("user logged in", "user_id", user.ID)

	h.flash(w, r, auth.FlashSuccess, "Welcome back, "+user.Username+".")
	h.View.Redirect(w, r, next)
}

// Logout handles POST /accounts/logout/
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		logError(r, "failed to save session", err)
		h.View.ServerError(w, r)
		return
	}

	h.flash(w, r, auth.FlashInfo, "You have been logged out.")
	h.View.Redirect(w, r, "/")
}

// safeNext keeps post-login redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	return next
}
