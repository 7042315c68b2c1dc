package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshu-sajeev/pingcrm/internal/config"
	"github.com/joshu-sajeev/pingcrm/internal/logger"
	"github.com/joshu-sajeev/pingcrm/internal/metrics"
	"github.com/joshu-sajeev/pingcrm/internal/pool"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/joshu-sajeev/pingcrm/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(cfg.Log)
	slog.SetDefault(appLogger)

	db, err := postgres.ConnectDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	defer sqlDB.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	store := postgres.NewJobRepository(db)

	registry := queue.NewRegistry()
	worker.RegisterBuiltins(registry, appLogger)

	observer := queue.NopObserver()
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		observer = metrics.NewCollector(reg)
		reg.MustRegister(metrics.NewStatusCollector(store))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		metricsSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:      mux,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}
		go func() {
			appLogger.Info("metrics server listening", slog.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				appLogger.Error("metrics server failed", slog.Any("error", err))
			}
		}()
	}

	workerPool := pool.NewWorkerPool(store, registry, cfg.Queue.Pool(),
		pool.WithObserver(observer),
		pool.WithLogger(appLogger),
	)

	workerPool.Start(ctx)
	appLogger.Info("worker pool active",
		slog.Int("workers", cfg.Queue.WorkerCount),
		slog.Any("kinds", registry.Kinds()),
	)

	<-ctx.Done()
	appLogger.Info("shutting down worker pool")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("metrics server shutdown", slog.Any("error", err))
		}
	}

	if err := workerPool.Stop(shutdownCtx); err != nil {
		return err
	}

	appLogger.Info("shutdown complete")
	return nil
}
