// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/encuestas/middleware"
)

func logError(r *http.Request, msg string, err error, args ...any) {
	args = append(args, "error", err, "path", r.URL.Path)
	if id := middleware.RequestID(r.Context()); id != "" {
		args = append(args, "request_id", id)
	}
	slog.Error(msg, args...)
}
