package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/adapter/localstore"
	repo "resume-builder/internal/adapter/repository"
	"resume-builder/internal/auth"
	"resume-builder/internal/config"
	"resume-builder/internal/export"
	"resume-builder/internal/infrastructure/migration"
	"resume-builder/internal/layout"
	"resume-builder/internal/service"
	"resume-builder/internal/storage"
	"resume-builder/internal/telemetry"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	"resume-builder/pkg/metrics"
	infra "resume-builder/pkg/infrastructure"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Disabled, logger)
	if err != nil {
		logger.Warn("tracing not available", "error", err)
	}

	db, err := infra.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Error("database not available", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := migration.RunMigrations(ctx, db, logger); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// local fallback store: redis when reachable, otherwise process memory
	var backend localstore.Backend = localstore.NewMemoryBackend()
	if cfg.Redis.Addr != "" {
		rdb, err := infra.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis not available, local store is in memory", "error", err)
		} else {
			defer rdb.Close()
			backend = localstore.NewRedisBackend(rdb, cfg.Redis.Prefix)
		}
	}

	var improver usecase.Improver
	if cfg.AI.APIKey != "" {
		improver = ai.NewClient(ai.Options{
			BaseURL:  cfg.AI.BaseURL,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			Language: cfg.AI.Language,
			Timeout:  cfg.AI.Timeout,
		}, logger)
	} else {
		logger.Warn("AI_API_KEY not set, text improvement is unavailable")
	}

	exportsRepo := repo.NewExportsRepo(db)
	capturer := infra.NewChromedpCapturer(cfg.Export.ChromePath, layout.SurfaceSelector, cfg.Export.Timeout, logger)
	pipeline := export.New(capturer, export.AttachmentSaver{}, export.Options{
		Scale:      cfg.Export.Scale,
		Quality:    cfg.Export.Quality,
		Page:       export.A4,
		MaxWidthPx: cfg.Export.MaxWidthPx,
	}, logger).WithRecorder(exportsRepo)

	deps := httpadapter.Deps{
		Resumes:  service.NewResumeService(repo.NewResumesRepo(db, logger), logger),
		Local:    localstore.New(backend, logger),
		Engine:   usecase.NewEngine(improver, logger),
		Improver: improver,
		Exporter: pipeline,
		History:  exportsRepo,
		Logger:   logger,
	}
	if cfg.MinIO.Endpoint != "" {
		objects, err := storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			logger.Warn("object storage not available, link delivery disabled", "error", err)
		} else {
			deps.ObjectSaver = export.ObjectSaver{Store: objects, Prefix: "exports", Expiry: cfg.MinIO.URLExpiry}
		}
	}

	var verifiers auth.Chain
	if cfg.Auth.JWTSecret != "" {
		verifiers = append(verifiers, auth.NewJWTVerifier(cfg.Auth.JWTSecret))
	}
	if cfg.Auth.OIDCIssuer != "" {
		v, err := auth.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			logger.Warn("oidc provider not available", "issuer", cfg.Auth.OIDCIssuer, "error", err)
		} else {
			verifiers = append(verifiers, v)
		}
	}
	var verifier auth.Verifier
	if len(verifiers) > 0 {
		verifier = verifiers
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)

	app, err := httpadapter.NewApp(httpadapter.NewHandler(deps), httpadapter.Options{
		Verifier:     verifier,
		Registry:     reg,
		RateLimit:    httpadapter.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		BodyLimit:    cfg.Server.BodyLimit,
		Logger:       logger,
		Tracing:      !cfg.Telemetry.Disabled,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		logger.Error("failed to build http app", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if shutdownTracing != nil {
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}
}
