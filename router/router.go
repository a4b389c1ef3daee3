// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/danielhkuo/encuestas/auth"
	"github.com/danielhkuo/encuestas/cliparse"
	"github.com/danielhkuo/encuestas/handlers"
	"github.com/danielhkuo/encuestas/middleware"
	"github.com/danielhkuo/encuestas/views"
)

// CSRFFieldName is the form field carrying the CSRF token
const CSRFFieldName = "csrf_token"

func NewRouter(db *sql.DB, cfg cliparse.Config) http.Handler {
	return NewRouterWithEnv(handlers.NewEnv(db, cfg))
}

// NewRouterWithEnv builds the router around an existing handler environment
func NewRouterWithEnv(env *handlers.Env) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(env)
	votingHandler := handlers.NewVotingHandler(env)
	resultsHandler := handlers.NewResultsHandler(env)
	accountHandler := handlers.NewAccountHandler(env)
	adminHandler := handlers.NewAdminHandler(env)
	staff := adminHandler.RequireStaff

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Public pages
	mux.HandleFunc("GET /{$}", middleware.WithLogging(pollHandler.Index))
	mux.HandleFunc("GET /list/{$}", middleware.WithLogging(pollHandler.Index))
	mux.HandleFunc("GET /about/{$}", middleware.WithLogging(pollHandler.About))
	mux.HandleFunc("GET /{id}/{$}", middleware.WithLogging(pollHandler.Detail))

	// Voting and results
	mux.HandleFunc("POST /{id}/vote/{$}", middleware.WithLogging(votingHandler.Vote))
	mux.HandleFunc("GET /{id}/results/{$}", middleware.WithLogging(resultsHandler.Results))
	mux.HandleFunc("GET /{id}/live-results/{$}", middleware.WithLogging(resultsHandler.LiveResults))

	// Accounts
	mux.HandleFunc("GET /accounts/login/{$}", middleware.WithLogging(accountHandler.LoginForm))
	mux.HandleFunc("POST /accounts/login/{$}", middleware.WithLogging(accountHandler.Login))
	mux.HandleFunc("POST /accounts/logout/{$}", middleware.WithLogging(accountHandler.Logout))

	// Staff management API
	mux.HandleFunc("GET /admin/polls", middleware.WithLogging(staff(adminHandler.ListPolls)))
	mux.HandleFunc("POST /admin/polls", middleware.WithLogging(staff(adminHandler.CreatePoll)))
	mux.HandleFunc("GET /admin/polls/{id}", middleware.WithLogging(staff(adminHandler.GetPoll)))
	mux.HandleFunc("POST /admin/polls/{id}/active", middleware.WithLogging(staff(adminHandler.SetActive)))
	mux.HandleFunc("GET /admin/polls/{id}/votes", middleware.WithLogging(staff(adminHandler.ListVotes)))
	mux.HandleFunc("DELETE /admin/votes/{id}", middleware.WithLogging(staff(adminHandler.DeleteVote)))

	// Everything else renders the site's not found page
	mux.HandleFunc("/", middleware.WithLogging(env.View.NotFound))

	protect := csrf.Protect(
		auth.DeriveKey(env.Cfg.SessionKey, "csrf"),
		csrf.Secure(env.Cfg.SecureCookies),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName("encuestas_csrf"),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(csrfFailure(env.View)),
	)

	return middleware.Recover(plaintext(env.Cfg.SecureCookies, protect(mux)))
}

// plaintext tells the CSRF layer when the site is served over plain HTTP,
// which relaxes its Referer checks
func plaintext(secure bool, next http.Handler) http.Handler {
	if secure {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(view *views.View) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Warn("CSRF check failed", "method", r.Method, "path", r.URL.Path, "reason", csrf.FailureReason(r))
		view.Render(w, r, http.StatusForbidden, "error", "Forbidden", views.ErrorData{
			Status:  http.StatusForbidden,
			Message: "Your form submission could not be verified. Please reload the page and try again.",
		})
	})
}
