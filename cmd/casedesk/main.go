// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"casedesk/internal/cache"
	"casedesk/internal/config"
	"casedesk/internal/geoip"
	"casedesk/internal/handler"
	"casedesk/internal/imaging"
	"casedesk/internal/legacy"
	"casedesk/internal/logging"
	"casedesk/internal/middleware"
	"casedesk/internal/model"
	"casedesk/internal/scheduler"
	"casedesk/internal/service"
	"casedesk/internal/session"
	"casedesk/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "CaseDesk - charity case management console\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_DB_PATH         SQLite database path (default: ./data/casedesk.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_UPLOADS_DIR     Attachment storage directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_REDIS_URL       Redis URL for the menu cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CASEDESK_LEGACY_DSN      MySQL DSN of the old database (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("casedesk %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	var baseHandler slog.Handler
	if cfg.IsDevelopment() {
		baseHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		baseHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	}
	slog.SetDefault(slog.New(baseHandler))

	// Ensure data and uploads directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also mirror WARN and ERROR logs into the audit log
	slog.SetDefault(slog.New(logging.NewAuditHandler(baseHandler, db)))
	logger := slog.Default()
	slog.Info("audit log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// GeoIP country lookup for login events (optional)
	var geo *geoip.Lookup
	if cfg.GeoIPEnabled() {
		geo, err = geoip.New(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("GeoIP disabled", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			defer geo.Close()
			slog.Info("GeoIP lookup initialized", "path", cfg.GeoIPDBPath)
		}
	}

	// Menu cache backend: Redis when configured, in-process memory otherwise
	cacheConfig := cache.Config{
		Type:       "memory",
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.CacheTTL) * time.Second,
	}
	if cfg.UseRedisCache() {
		cacheConfig.Type = "redis"
	}
	cacheBackend, err := cache.New(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := cacheBackend.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	menuCache := cache.NewMenuCache(cacheBackend, cacheConfig.DefaultTTL)
	slog.Info("cache initialized", "backend", cacheConfig.Type)

	// Services
	eventService := service.NewEventService(db, geo)
	menuService := service.NewMenuService(db, menuCache)
	batchService := service.NewBatchService(db, eventService)
	sponsorshipService := service.NewSponsorshipService(db, eventService)

	// Legacy MySQL importer (optional)
	var legacyImporter *legacy.Importer
	if cfg.LegacyImportEnabled() {
		reader, err := legacy.NewReader(cfg.LegacyDSN, cfg.LegacyTablePrefix)
		if err != nil {
			return fmt.Errorf("connecting to legacy database: %w", err)
		}
		defer func() {
			if err := reader.Close(); err != nil {
				slog.Error("error closing legacy database", "error", err)
			}
		}()
		legacyImporter = legacy.NewImporter(reader, batchService)
		slog.Info("legacy importer initialized", "prefix", cfg.LegacyTablePrefix)
	}

	// Maintenance scheduler
	sched := scheduler.New(scheduler.Config{
		BatchMaxAge:    time.Duration(cfg.BatchMaxAgeHours) * time.Hour,
		EventRetention: time.Duration(cfg.EventRetentionDays) * 24 * time.Hour,
	}, batchService, eventService, geo, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	processor := imaging.NewProcessor(cfg.UploadsDir)

	// Login protection: per-IP rate limit plus account lockout
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized")

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Handlers
	authHandler := handler.NewAuthHandler(db, sessionManager, loginProtection, eventService)
	userHandler := handler.NewUserHandler(db)
	categoryHandler := handler.NewCategoryHandler(db)
	caseHandler := handler.NewCaseHandler(db, eventService)
	sponsorshipHandler := handler.NewSponsorshipHandler(db, sponsorshipService)
	menuHandler := handler.NewMenuHandler(db, menuService, eventService)
	batchHandler := handler.NewBatchHandler(db, batchService)
	legacyHandler := handler.NewLegacyHandler(legacyImporter)
	attachmentHandler := handler.NewAttachmentHandler(db, processor)
	eventHandler := handler.NewEventHandler(db)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(sessionManager.LoadAndSave)

	// Health check (public)
	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.LoadUser(sessionManager, db))

		// Public auth routes
		r.With(loginProtection.Middleware()).Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		// Staff routes (staff + admin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/me", authHandler.Me)

			r.Get("/categories", categoryHandler.List)
			r.Get("/categories/{id}", categoryHandler.Get)

			r.Get("/cases", caseHandler.List)
			r.Post("/cases", caseHandler.Create)
			r.Get("/cases/{id}", caseHandler.Get)
			r.Put("/cases/{id}", caseHandler.Update)

			r.Get("/cases/{id}/attachments", attachmentHandler.List)
			r.Post("/cases/{id}/attachments", attachmentHandler.Upload)
			r.Get("/attachments/{uuid}", attachmentHandler.Download)
			r.Get("/attachments/{uuid}/thumb", attachmentHandler.Thumbnail)
			r.Delete("/attachments/{uuid}", attachmentHandler.Delete)

			r.Get("/sponsorships", sponsorshipHandler.List)
			r.Post("/sponsorships", sponsorshipHandler.Create)
			r.Get("/sponsorships/{id}", sponsorshipHandler.Get)

			r.Get("/menus", menuHandler.List)
			r.Get("/menus/{slug}/tree", menuHandler.GetTree)
			r.Put("/menus/{slug}/tree", menuHandler.SaveTree)
			r.Post("/menus/{slug}/items", menuHandler.CreateItem)
			r.Put("/menus/{slug}/items/{id}", menuHandler.UpdateItem)
			r.Post("/menus/{slug}/items/{id}/duplicate", menuHandler.DuplicateItem)
			r.Delete("/menus/{slug}/items/{id}", menuHandler.DeleteItem)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Use(middleware.RequireRole(model.RoleAdmin))

			r.Get("/users", userHandler.List)
			r.Post("/users", userHandler.Create)
			r.Get("/users/{id}/contributions", userHandler.Contributions)

			r.Post("/categories", categoryHandler.Create)
			r.Put("/categories/{id}", categoryHandler.Update)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			r.Delete("/cases/{id}", caseHandler.Delete)

			r.Post("/sponsorships/{id}/review", sponsorshipHandler.Review)

			r.Post("/menus", menuHandler.Create)
			r.Put("/menus/{slug}", menuHandler.Update)
			r.Delete("/menus/{slug}", menuHandler.Delete)

			r.Get("/batches", batchHandler.List)
			r.Post("/batches", batchHandler.Upload)
			r.Get("/batches/{id}", batchHandler.Get)
			r.Delete("/batches/{id}", batchHandler.Delete)
			r.Put("/batches/{id}/mappings", batchHandler.MapNickname)
			r.Get("/batches/suggestions", batchHandler.Suggestions)
			r.Post("/batches/{id}/process", batchHandler.Process)
			r.Post("/batches/import-legacy", legacyHandler.Import)

			r.Get("/events", eventHandler.List)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
