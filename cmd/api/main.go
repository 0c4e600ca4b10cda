// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

// Command api is the entry point for the WebNDB HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Connect to Meilisearch and provision the indexes.
//  6. Run database migrations (idempotent).
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webndb/webndb/internal/api"
	"github.com/webndb/webndb/internal/core/chapter"
	"github.com/webndb/webndb/internal/core/novel"
	"github.com/webndb/webndb/internal/core/volume"
	"github.com/webndb/webndb/internal/ordering"
	"github.com/webndb/webndb/internal/platform/config"
	"github.com/webndb/webndb/internal/platform/constants"
	"github.com/webndb/webndb/internal/platform/meili"
	"github.com/webndb/webndb/internal/platform/migration"
	pgstore "github.com/webndb/webndb/internal/platform/postgres"
	redisstore "github.com/webndb/webndb/internal/platform/redis"
	"github.com/webndb/webndb/internal/platform/sec"
	"github.com/webndb/webndb/pkg/pagetoken"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[WebNDB] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Meilisearch ────────────────────────────────────────────────────
	search, err := meili.NewClient(cfg.MeiliURL, cfg.MeiliMasterKey, log)
	must(log, err, "connect to meilisearch")
	must(log, search.EnsureIndex(constants.IndexNovels, novel.IndexSettings()), "provision novels index")
	must(log, search.EnsureIndex(constants.IndexVolumes, volume.IndexSettings()), "provision volumes index")
	must(log, search.EnsureIndex(constants.IndexChapters, chapter.IndexSettings()), "provision chapters index")

	// ── 6. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 7. Auth Verifier ──────────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 8. Page Token Codec ───────────────────────────────────────────────
	tokenKey, err := cfg.DecodePageTokenKey()
	must(log, err, "decode page token key")
	codec, err := pagetoken.NewCodec(tokenKey, cfg.PageTokenTTL)
	must(log, err, "initialize page token codec")

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckSearch: search.Ping,
	}, log)

	// ── 10. Domain Wiring ─────────────────────────────────────────────────
	volumeEngine := ordering.NewEngine(
		ordering.NewPostgresStore(ordering.VolumeTables()), "Novel", constants.VolumeOrderMax)
	chapterEngine := ordering.NewEngine(
		ordering.NewPostgresStore(ordering.ChapterTables()), "Novel", constants.ChapterOrderMax)

	novelRepository := novel.NewRepository(pool,
		ordering.NewPostgresStore(ordering.VolumeTables()),
		ordering.NewPostgresStore(ordering.ChapterTables()))
	novelService := novel.NewService(novelRepository, rdb, search, codec, log,
		cfg.DefaultPageSize, cfg.MaxPageSize)
	novelHandler := novel.NewHandler(novelService)

	volumeRepository := volume.NewRepository(pool, volumeEngine)
	volumeService := volume.NewService(volumeRepository, search, codec, log,
		cfg.DefaultPageSize, cfg.MaxPageSize)
	volumeHandler := volume.NewHandler(volumeService)

	chapterRepository := chapter.NewRepository(pool, chapterEngine)
	chapterService := chapter.NewService(chapterRepository, search, codec, log,
		cfg.DefaultPageSize, cfg.MaxPageSize)
	chapterHandler := chapter.NewHandler(chapterService)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Novel:     novelHandler,
		Volume:    volumeHandler,
		Chapter:   chapterHandler,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, verifier, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
