// =============================================================================
// ROUTER.GO - HTTP ROUTES
// =============================================================================
// Builds the chi router and wires handlers to the paths in the route table.
//
// Route Groups:
//   /health                 - Health check (public)
//   /, /info/*, /roulette   - Informational pages (public)
//   /account/register|login - Auth forms (POST rate limited)
//   /account/logout         - Logout
//   /account/profile|transactions, /bienvenida - Session required
//   /account, /login, /register - Legacy aliases
// =============================================================================

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JoshBaneyCS/betanito/internal/auth"
	"github.com/JoshBaneyCS/betanito/internal/middleware"
	"github.com/JoshBaneyCS/betanito/internal/routes"
	"github.com/JoshBaneyCS/betanito/internal/web/handlers"
	"github.com/JoshBaneyCS/betanito/internal/web/view"
)

const serviceName = "betanito"

// Auth form posts: bursts of 10, then one every 6 seconds per client IP.
const (
	authRatePerSecond = 1.0 / 6
	authRateBurst     = 10
)

// RouterConfig holds dependencies needed to set up routes.
type RouterConfig struct {
	Routes         *routes.Table
	Service        *auth.Service
	Cookies        *auth.Cookies
	Renderer       *view.Renderer
	Logger         *slog.Logger
	AllowedOrigins []string

	// HealthChecks are probed by /health, keyed by name.
	HealthChecks map[string]handlers.Pinger

	// AuthLimiter throttles login and registration posts. Nil uses the
	// default limits.
	AuthLimiter *middleware.TokenBucket
}

// NewRouter creates and configures the main HTTP router.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	table := cfg.Routes

	// -------------------------------------------------------------------------
	// GLOBAL MIDDLEWARE
	// -------------------------------------------------------------------------
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders)

	// -------------------------------------------------------------------------
	// CORS CONFIGURATION
	// -------------------------------------------------------------------------
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// -------------------------------------------------------------------------
	// INITIALIZE HANDLERS
	// -------------------------------------------------------------------------
	pages := handlers.NewPagesHandler(cfg.Renderer, cfg.Logger)
	account := handlers.NewAccountHandler(cfg.Service, cfg.Cookies, cfg.Renderer, table, cfg.Logger)
	gate := auth.NewGate(cfg.Service, cfg.Cookies, table, cfg.Logger)

	limiter := cfg.AuthLimiter
	if limiter == nil {
		limiter = middleware.NewTokenBucket(authRatePerSecond, authRateBurst)
	}
	rateLimit := middleware.RateLimit(limiter, cfg.Logger)

	// -------------------------------------------------------------------------
	// HEALTH CHECK (Public)
	// -------------------------------------------------------------------------
	r.Get("/health", handlers.Health(serviceName, cfg.Logger, cfg.HealthChecks))

	// -------------------------------------------------------------------------
	// PUBLIC PAGES
	// -------------------------------------------------------------------------
	r.Get(table.Path(routes.Home), pages.Page(view.PageHome))
	r.Get(table.Path(routes.AboutUs), pages.Page(view.PageAboutUs))
	r.Get(table.Path(routes.RouletteRules), pages.Page(view.PageRouletteRules))
	r.Get(table.Path(routes.Roulette), pages.Page(view.PageRoulette))

	// -------------------------------------------------------------------------
	// ACCOUNT
	// -------------------------------------------------------------------------
	r.Get(table.Path(routes.Register), account.RegisterForm)
	r.With(rateLimit).Post(table.Path(routes.Register), account.Register)
	r.Get(table.Path(routes.Login), account.LoginForm)
	r.With(rateLimit).Post(table.Path(routes.Login), account.Login)
	r.Get(table.Path(routes.Logout), account.Logout)

	r.Group(func(r chi.Router) {
		r.Use(gate.RequireSession)
		r.Get(table.Path(routes.Profile), account.Profile)
		r.Get(table.Path(routes.Transactions), account.Transactions)
		r.Get(table.Path(routes.Bienvenida), account.Bienvenida)
	})

	// -------------------------------------------------------------------------
	// LEGACY ALIASES
	// -------------------------------------------------------------------------
	r.Get("/account", redirectTo(table.Path(routes.Profile)))
	r.Get("/login", redirectTo(table.Path(routes.Login)))
	r.Get("/register", redirectTo(table.Path(routes.Register)))

	return r
}

func redirectTo(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, path, http.StatusFound)
	}
}
