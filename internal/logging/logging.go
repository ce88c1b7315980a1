// Package logging builds the process logger.
package logging

import (
	"io"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// ForRequest tags logger with the request ID chi's RequestID middleware
// assigned, so handler logs line up with the access log.
func ForRequest(logger *slog.Logger, r *http.Request) *slog.Logger {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}
