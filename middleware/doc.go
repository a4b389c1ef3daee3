// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets an X-Request-ID (kept from the client when present,
otherwise a new UUID). It is echoed in the response, logged with the
request start and completion lines, and available to handlers through
RequestID(r.Context()).

# Panics

Recover wraps the whole router and turns a panicking handler into a logged
500 response.

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

Parse JSON request bodies:

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

The first X-Forwarded-For entry is used when present, otherwise the
connection address. The result identifies anonymous voters, so the server
should only be exposed behind a proxy that sets the header.
*/
package middleware
