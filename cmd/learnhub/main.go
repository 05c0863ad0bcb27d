// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the learnhub teacher server.
// It serves both the course API and the teacher dashboard that consumes it,
// with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnhub/internal/apiclient"
	"learnhub/internal/cache"
	"learnhub/internal/config"
	"learnhub/internal/database"
	"learnhub/internal/handlers"
	"learnhub/internal/middleware"
	"learnhub/internal/render"
	"learnhub/internal/router"
	"learnhub/internal/session"
	"learnhub/internal/storage"
	"learnhub/internal/store"
	"learnhub/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// JSON in production, text in development.
	var logHandler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	if cfg.IsDev() {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(logHandler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"api", cfg.APIBaseURL,
	)

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if cfg.IsDev() {
		if err := database.Seed(context.Background(), db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)
	courseCache := cache.NewCourseCache(cache.NewValkeyStore(valkeyClient, cfg.CourseCacheTTL))

	renderer, err := render.New(cfg.IsDev(), cfg.SignOutURL)
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	courseStore := store.NewCourseStore(db)
	categoryStore := store.NewCategoryStore(db)
	cacheLogStore := store.NewCacheLogStore(db)

	// Storage is optional. The interfaces stay nil without it so uploads
	// answer 503 instead of dereferencing a nil client.
	var (
		fileStore upload.Storage
		remover   handlers.ObjectRemover
	)
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	switch {
	case err != nil:
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	case storageClient != nil:
		fileStore, remover = storageClient, storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", storageClient.Bucket())
	default:
		slog.Warn("s3 storage not configured, course image uploads disabled")
	}

	uploads := upload.NewService(fileStore, upload.CourseImage(cfg.UploadMaxBytes))

	api := handlers.NewAPI(courseStore, categoryStore, uploads, remover)
	teacher := handlers.NewTeacher(
		renderer,
		apiclient.New(cfg.APIBaseURL),
		courseCache,
		sessionStore,
		cacheLogStore,
	)

	uploadLimiter := middleware.NewRateLimiter(20, time.Minute)
	defer uploadLimiter.Stop()

	r := router.New(router.Options{
		Identity:      cfg.Identity(),
		SecureCookies: secureCookies,
		UploadLimiter: uploadLimiter,
	}, api, teacher)

	// No WriteTimeout: mutations run to completion however slow the API is.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
