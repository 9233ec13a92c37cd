// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/netip"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/qualitysolutions/qsite/internal/auth"
	"github.com/qualitysolutions/qsite/internal/cache"
	"github.com/qualitysolutions/qsite/internal/config"
	"github.com/qualitysolutions/qsite/internal/handler"
	"github.com/qualitysolutions/qsite/internal/i18n"
	"github.com/qualitysolutions/qsite/internal/loader"
	"github.com/qualitysolutions/qsite/internal/logging"
	"github.com/qualitysolutions/qsite/internal/middleware"
	"github.com/qualitysolutions/qsite/internal/model"
	"github.com/qualitysolutions/qsite/internal/render"
	"github.com/qualitysolutions/qsite/internal/scheduler"
	"github.com/qualitysolutions/qsite/internal/service"
	"github.com/qualitysolutions/qsite/internal/session"
	"github.com/qualitysolutions/qsite/internal/store"
	"github.com/qualitysolutions/qsite/internal/version"
	"github.com/qualitysolutions/qsite/web"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second

	// Public form posts (comments) per IP.
	publicRateLimit = 1.0
	publicBurst     = 10

	staticMaxAge = 7 * 24 * 60 * 60
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	seedOnly := flag.Bool("seed", false, "Seed the database with demo content and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "qsite - Quality Solutions website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_SESSION_SECRET      Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_DB_DRIVER           sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_DATABASE_URL        SQLite path or MySQL DSN (default: ./data/qsite.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_BASE_URL            Public site URL (default: http://localhost:8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_SERVER_PORT         Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_ENV                 development|production|test (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_TRUSTED_PROXIES     Reverse proxy IPs/CIDRs allowed to set X-Forwarded-For\n")
	_, _ = fmt.Fprintf(os.Stderr, "  QS_REDIS_URL           Redis URL for the shared cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  QS_DO_SEED             Seed demo content at startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Println(version.Get().String())
		os.Exit(0)
	}

	if err := run(*seedOnly); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(seedOnly bool) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// WARN and above also go to the events table.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.MaxEntries = cfg.CacheMaxSize
	appCache, cacheBackend := cache.New(cacheCfg, logger)
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	if seedOnly || cfg.DoSeed {
		if err := store.Seed(ctx, db, store.SeedOptions{Env: cfg.Env}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		// A shared Redis may still hold the product list from before the seed.
		products := loader.New(store.New(db), appCache, loader.WithProductTTL(cfg.ProductCacheTTL))
		if err := products.InvalidateProducts(ctx); err != nil {
			logger.Warn("failed to drop cached product list", "error", err)
		}
		if seedOnly {
			return nil
		}
	}

	app, err := newApplication(cfg, db, appCache, cacheBackend, logger)
	if err != nil {
		return err
	}
	events := service.NewEventService(db, logger)

	sched := scheduler.New(db, cfg.DBDriver, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           app.routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()
	_ = events.LogSystemEvent(ctx, model.EventLevelInfo, "Server started", map[string]any{
		"version": version.Get().Version,
		"cache":   cacheBackend,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openDatabase opens the configured database and applies migrations.
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	if cfg.DBDriver == store.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabaseURL), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	db, err := store.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	if err := store.MigrateDriver(db, cfg.DBDriver); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")
	return db, nil
}

// newApplication wires the handlers and middleware around db and c.
func newApplication(cfg *config.Config, db *sql.DB, c cache.Cache, cacheBackend string, logger *slog.Logger) (*application, error) {
	isDev := cfg.IsDevelopment()

	sessionManager := session.New(db, cfg.DBDriver, isDev)
	tokens := session.NewTokenIssuer(cfg.SessionSecret, cfg.BaseURL, !isDev)
	revocations := session.NewRevocations(c)

	queries := store.New(db)
	events := service.NewEventService(db, logger)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          isDev,
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	trustedProxies, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	loginProtection := middleware.NewLoginProtection(db, middleware.LoginProtectionConfig{
		MaxFailedAttempts: cfg.LoginMaxAttempts,
		LockoutDuration:   cfg.LoginLockout,
	})

	return &application{
		sessionManager: sessionManager,
		sessionAuth:    middleware.NewSessionAuth(tokens, revocations, logger),
		frontend: handler.NewFrontendHandler(
			loader.New(queries, c, loader.WithProductTTL(cfg.ProductCacheTTL)),
			db, renderer, events, logger,
		),
		auth: handler.NewAuthHandler(handler.AuthDeps{
			DB:              db,
			Authenticator:   auth.NewAuthenticator(queries, logger),
			Tokens:          tokens,
			Revocations:     revocations,
			LoginProtection: loginProtection,
			SessionManager:  sessionManager,
			Renderer:        renderer,
			Events:          events,
			Logger:          logger,
		}),
		language:        handler.NewLanguageHandler(!isDev),
		health:          handler.NewHealthHandler(db, c, cacheBackend),
		seo:             handler.NewSEOHandler(db, c, cfg.BaseURL, cfg.IsProduction(), logger),
		loginProtection: loginProtection,
		publicLimiter:   middleware.NewGlobalRateLimiter(publicRateLimit, publicBurst),
		csrf:            middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.BaseURL, isDev)),
		security:        middleware.DefaultSecurityHeadersConfig(isDev),
		trustedProxies:  trustedProxies,
	}, nil
}

// application holds the wired handlers and middleware for the router.
type application struct {
	sessionManager  *scs.SessionManager
	sessionAuth     *middleware.SessionAuth
	frontend        *handler.FrontendHandler
	auth            *handler.AuthHandler
	language        *handler.LanguageHandler
	health          *handler.HealthHandler
	seo             *handler.SEOHandler
	loginProtection *middleware.LoginProtection
	publicLimiter   *middleware.GlobalRateLimiter
	csrf            func(http.Handler) http.Handler
	security        middleware.SecurityHeadersConfig
	trustedProxies  []netip.Prefix
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(app.trustedProxies))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(app.security))
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.Language)
	r.Use(app.sessionAuth.OptionalSession)

	registerHealthRoutes(r, app.health)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		panic(fmt.Sprintf("static assets: %v", err))
	}
	r.With(middleware.StaticCache(staticMaxAge)).
		Handle(handler.RouteStatic, http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	registerFrontendRoutes(r, app.frontend)
	r.Get(handler.RouteRobots, app.seo.Robots)
	r.Get(handler.RouteSitemap, app.seo.Sitemap)

	r.Group(func(r chi.Router) {
		r.Use(app.csrf)

		r.Get(handler.RouteLogin, app.auth.LoginForm)
		r.With(app.loginProtection.Middleware()).Post(handler.RouteLogin, app.auth.Login)
		r.Post(handler.RouteLogout, app.auth.Logout)
		r.Post(handler.RouteLanguage, app.language.SetLanguage)

		r.With(app.publicLimiter.HTMLMiddleware()).
			Post(handler.RouteArticles+handler.RouteSuffixComments, app.frontend.CommentCreate)
	})

	r.With(middleware.RequireSession).Get(handler.RouteDashboard, app.frontend.Dashboard)

	r.NotFound(app.frontend.NotFound)
	return r
}

func registerFrontendRoutes(r chi.Router, h *handler.FrontendHandler) {
	r.Get(handler.RouteRoot, h.Home)
	r.Get(handler.RouteArticles, h.ArticleList)
	r.Get(handler.RouteArticles+handler.RouteParamSlug, h.ArticleDetail)
	r.Get(handler.RouteProducts, h.ProductList)
	r.Get(handler.RouteProducts+handler.RouteParamSlug, h.ProductDetail)
}

func registerHealthRoutes(r chi.Router, h *handler.HealthHandler) {
	r.Get(handler.RouteHealth, h.Health)
	r.Get(handler.RouteHealth+"/live", h.Liveness)
	r.Get(handler.RouteHealth+"/ready", h.Readiness)
}
