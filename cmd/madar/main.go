// Copyright (c) 2025-2026 Madar Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command madar runs the bilingual blog engine: public blog endpoints,
// the content management API, and the SEO surface.
package main

import (
	"context"
	"database/sql"
	"errors"
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

	"github.com/madarhq/madar/internal/cache"
	"github.com/madarhq/madar/internal/config"
	"github.com/madarhq/madar/internal/content"
	"github.com/madarhq/madar/internal/handler"
	"github.com/madarhq/madar/internal/handler/api"
	"github.com/madarhq/madar/internal/middleware"
	"github.com/madarhq/madar/internal/scheduler"
	"github.com/madarhq/madar/internal/seo"
	"github.com/madarhq/madar/internal/settings"
	"github.com/madarhq/madar/internal/store"
	"github.com/madarhq/madar/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
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

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	build := version.Get()
	slog.Info("starting madar",
		"version", build.Version,
		"commit", build.GitCommit,
		"env", cfg.Env)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
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

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded")
	}

	// Cache: Redis when configured, in-memory otherwise
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.DefaultTTL = time.Duration(cfg.CacheTTL) * time.Second
	cacheCfg.MaxSize = cfg.CacheMaxSize
	appCache, err := cache.New(cacheCfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() {
		if err := appCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()
	slog.Info("cache initialized", "backend", cacheBackend(cfg))

	// Services
	queries := store.New(db)
	settingsSvc := settings.New(queries)
	seoSvc := seo.NewService(queries, appCache, cfg.SiteURL)
	viewRecorder := content.NewRecorder(appCache, queries)

	// Middleware with state
	rateLimiter := middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)

	// Handlers
	apiHandler := api.NewHandler(db, settingsSvc, seoSvc, appCache, logger)
	blogHandler := handler.NewBlog(db, settingsSvc, seoSvc, viewRecorder, appCache,
		logger, cfg.SiteURL, cfg.IsDevelopment())
	healthHandler := handler.NewHealthHandler(db, appCache)

	// Background jobs: hourly sitemap warm and limiter cleanup
	sched := scheduler.New(seoSvc, rateLimiter, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	r := newRouter(cfg, rateLimiter, apiHandler, blogHandler, healthHandler)

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

// newLogger builds the application logger: human-readable text in
// development, JSON in production.
func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func cacheBackend(cfg *config.Config) string {
	if cfg.UseRedisCache() {
		return "redis"
	}
	return "memory"
}

func newRouter(cfg *config.Config, rateLimiter *middleware.RateLimiter,
	apiHandler *api.Handler, blogHandler *handler.Blog, healthHandler *handler.HealthHandler) chi.Router {

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Locale())

	// Health checks
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// SEO surface
	r.Get("/sitemap.xml", blogHandler.Sitemap)
	r.Get("/robots.txt", blogHandler.Robots)

	// Public blog
	r.Route("/blog", func(r chi.Router) {
		r.Get("/", blogHandler.ListPosts)
		r.Get("/tags", blogHandler.PopularTags)
		r.Get("/category/{slug}", blogHandler.CategoryArchive)
		r.Get("/tag/{slug}", blogHandler.TagArchive)
		r.Get("/{slug}", blogHandler.ShowPost)
	})

	// Content management API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Middleware())

		r.Get("/status", apiHandler.Status)

		r.Get("/posts", apiHandler.ListPosts)
		r.Post("/posts", apiHandler.CreatePost)
		r.Get("/posts/{id}", apiHandler.GetPost)
		r.Put("/posts/{id}", apiHandler.UpdatePost)
		r.Delete("/posts/{id}", apiHandler.DeletePost)

		r.Get("/categories", apiHandler.ListCategories)
		r.Post("/categories", apiHandler.CreateCategory)
		r.Get("/categories/{id}", apiHandler.GetCategory)
		r.Put("/categories/{id}", apiHandler.UpdateCategory)
		r.Delete("/categories/{id}", apiHandler.DeleteCategory)

		r.Get("/tags", apiHandler.ListTags)
		r.Post("/tags", apiHandler.CreateTag)
		r.Get("/tags/{id}", apiHandler.GetTag)
		r.Put("/tags/{id}", apiHandler.UpdateTag)
		r.Delete("/tags/{id}", apiHandler.DeleteTag)

		r.Get("/settings", apiHandler.ListSettings)
		r.Get("/settings/{name}", apiHandler.GetSetting)
		r.Put("/settings/{name}", apiHandler.UpdateSetting)
		r.Delete("/settings/{name}", apiHandler.DeleteSetting)
	})

	return r
}
