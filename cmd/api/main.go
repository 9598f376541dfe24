package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentinelops/sentinel/internal/api/handlers"
	"github.com/sentinelops/sentinel/internal/api/router"
	"github.com/sentinelops/sentinel/internal/cache"
	"github.com/sentinelops/sentinel/internal/channels"
	"github.com/sentinelops/sentinel/internal/config"
	"github.com/sentinelops/sentinel/internal/correlation"
	"github.com/sentinelops/sentinel/internal/dispatch"
	"github.com/sentinelops/sentinel/internal/escalation"
	"github.com/sentinelops/sentinel/internal/filter"
	"github.com/sentinelops/sentinel/internal/ingest"
	"github.com/sentinelops/sentinel/internal/pipeline"
	"github.com/sentinelops/sentinel/internal/pkg/logger"
	"github.com/sentinelops/sentinel/internal/repository/postgres"
	"github.com/sentinelops/sentinel/internal/strategy"
	"github.com/sentinelops/sentinel/internal/worker"
	"github.com/sentinelops/sentinel/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	db, err := postgres.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	alertRepo := postgres.NewAlertRepository(db)
	ruleRepo := postgres.NewRuleRepository(db)
	correlationRepo := postgres.NewCorrelationRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)

	// Windowed counters: redis when configured, in-process otherwise
	var windowCache cache.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		windowCache = redisCache
	} else {
		windowCache = cache.NewMemory()
	}
	defer windowCache.Close()

	// Notification channels
	registry := channels.NewRegistry()
	if err := registry.Register(channels.NewEmailSender()); err != nil {
		return err
	}
	if err := registry.Register(channels.NewSlackSender()); err != nil {
		return err
	}
	if err := registry.Register(channels.NewWebhookSender()); err != nil {
		return err
	}

	provider, err := channels.LoadProvider(cfg.Channels.File)
	if err != nil {
		return fmt.Errorf("failed to load channels: %w", err)
	}
	if err := channels.ValidateChannels(ctx, provider, registry); err != nil {
		return fmt.Errorf("invalid channel configuration: %w", err)
	}

	// Pipeline stages
	ingestSvc := ingest.NewService(alertRepo, ruleRepo, log)
	filterSvc := filter.New(alertRepo, windowCache, cfg.Filter, log)
	accuracy := correlation.NewAccuracyTracker(windowCache, cfg.Correlator.AccuracyCutoff, log)
	engine := correlation.NewEngine(alertRepo, correlationRepo, accuracy, cfg.Correlator, log)
	planner := strategy.NewPlanner()

	limiter := dispatch.NewRateLimiter(windowCache, cfg.Dispatch.RateLimitFailOpen, log)
	dispatcher := dispatch.New(notificationRepo, provider, registry, limiter, cfg.Dispatch, log)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	escalator := escalation.NewScheduler(dispatcher, log)

	pipe := pipeline.New(
		ingestSvc, filterSvc, engine, planner, dispatcher, escalator,
		alertRepo, correlationRepo, accuracy, log,
	)

	// Background maintenance
	maintenance := worker.NewMaintenance(accuracy, dispatcher, log)
	if err := maintenance.Start(ctx); err != nil {
		return fmt.Errorf("failed to start maintenance worker: %w", err)
	}

	// HTTP server
	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db.DB, log),
		Event:        handlers.NewEventHandler(pipe, log),
		Alert:        handlers.NewAlertHandler(pipe, alertRepo, correlationRepo, log),
		Correlation:  handlers.NewCorrelationHandler(pipe, log),
		Notification: handlers.NewNotificationHandler(notificationRepo, log),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Starting HTTP server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
