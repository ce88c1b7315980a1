package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger is a dependency the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether the service and its dependencies are reachable.
// GET /health
func Health(service string, logger *slog.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		for name, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				logger.Error("health check failed", "dependency", name, "error", err)
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":  "unhealthy",
					"service": service,
				})
				return
			}
		}

		WriteJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": service,
		})
	}
}
