// =============================================================================
// MAIN.GO - BETANITO WEB SERVER ENTRY POINT
// =============================================================================
// Startup order:
//
//   1. Load configuration from environment variables (.env for local dev)
//   2. Connect to PostgreSQL and run embedded migrations
//   3. Pick the session store: Redis when REDIS_URL is set, memory otherwise
//   4. Build services, templates and the router
//   5. Serve HTTP until SIGINT/SIGTERM, then shut down gracefully
//
// Layout:
//   - cmd/api/main.go: wiring and server lifecycle (this file)
//   - internal/config: configuration loading
//   - internal/db: pgx pool and migrations
//   - internal/users: credential store
//   - internal/auth: passwords, tokens, sessions, access gate
//   - internal/routes: route table
//   - internal/web: router, handlers and views
// =============================================================================

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JoshBaneyCS/betanito/internal/auth"
	"github.com/JoshBaneyCS/betanito/internal/config"
	"github.com/JoshBaneyCS/betanito/internal/db"
	"github.com/JoshBaneyCS/betanito/internal/logging"
	"github.com/JoshBaneyCS/betanito/internal/routes"
	"github.com/JoshBaneyCS/betanito/internal/users"
	"github.com/JoshBaneyCS/betanito/internal/web"
	"github.com/JoshBaneyCS/betanito/internal/web/handlers"
	"github.com/JoshBaneyCS/betanito/internal/web/view"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// -------------------------------------------------------------------------
	// STEP 1: Configuration and logging
	// -------------------------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.ValidateProductionConfig(); err != nil {
		logger.Warn(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// -------------------------------------------------------------------------
	// STEP 2: Database
	// -------------------------------------------------------------------------
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer database.Close()
	logger.Info("database connected")

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	healthChecks := map[string]handlers.Pinger{"database": database}

	// -------------------------------------------------------------------------
	// STEP 3: Session store
	// -------------------------------------------------------------------------
	var sessions auth.SessionStore
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		store := auth.NewRedisStore(rdb)
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		sessions = store
		healthChecks["redis"] = store
		logger.Info("session store: redis", "addr", opt.Addr)
	} else {
		sessions = auth.NewMemorySessionStore()
		logger.Warn("REDIS_URL not set; sessions are kept in memory and lost on restart")
	}

	// -------------------------------------------------------------------------
	// STEP 4: Services and router
	// -------------------------------------------------------------------------
	table := routes.New()

	service, err := auth.NewService(
		users.NewPostgresStore(database.SQL),
		sessions,
		auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL),
		auth.NewHasher(cfg.BcryptCost),
	)
	if err != nil {
		return fmt.Errorf("init auth service: %w", err)
	}

	renderer, err := view.New(table)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	router := web.NewRouter(web.RouterConfig{
		Routes:         table,
		Service:        service,
		Cookies:        auth.NewCookies(cfg.CookieSecure),
		Renderer:       renderer,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		HealthChecks:   healthChecks,
	})

	// -------------------------------------------------------------------------
	// STEP 5: Serve with graceful shutdown
	// -------------------------------------------------------------------------
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", "http://localhost"+server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
