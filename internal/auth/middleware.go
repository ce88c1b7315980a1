// =============================================================================
// MIDDLEWARE.GO - ACCESS GATE
// =============================================================================
// Middleware for pages that need a logged-in user.
//
// Usage in router:
//   gate := auth.NewGate(service, cookies, table, logger)
//   r.With(gate.RequireSession).Get("/account/profile", handler)
//
// The gate:
//   1. Reads the usuario_id cookie (none -> redirect to login)
//   2. Verifies the token and its server-side session
//   3. Loads the user (gone -> revoke session, clear cookies, redirect)
//   4. Adds the user and session to the request context
// =============================================================================

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JoshBaneyCS/betanito/internal/routes"
	"github.com/JoshBaneyCS/betanito/internal/users"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session"
)

const internalErrorMessage = "Error interno del servidor"

// Gate guards pages behind a valid session.
type Gate struct {
	service   *Service
	cookies   *Cookies
	loginPath string
	logger    *slog.Logger
}

func NewGate(service *Service, cookies *Cookies, table *routes.Table, logger *slog.Logger) *Gate {
	return &Gate{
		service:   service,
		cookies:   cookies,
		loginPath: table.Path(routes.Login),
		logger:    logger,
	}
}

// RequireSession only lets a request through when its token maps to a live
// session of an existing user. Rejected tokens have their cookies cleared.
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := IdentityToken(r)
		if !ok {
			http.Redirect(w, r, g.loginPath, http.StatusFound)
			return
		}

		user, session, err := g.service.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrSessionNotFound) {
				g.cookies.Clear(w)
				http.Redirect(w, r, g.loginPath, http.StatusFound)
				return
			}
			g.logger.Error("session check failed", "path", r.URL.Path, "error", err)
			http.Error(w, internalErrorMessage, http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// CONTEXT HELPERS
// =============================================================================

// UserFromContext returns the user stored by RequireSession.
func UserFromContext(ctx context.Context) (*users.User, bool) {
	user, ok := ctx.Value(userContextKey).(*users.User)
	return user, ok
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	return session, ok
}
