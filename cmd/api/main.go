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

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/pingcrm/internal/config"
	"github.com/joshu-sajeev/pingcrm/internal/crm"
	"github.com/joshu-sajeev/pingcrm/internal/job"
	"github.com/joshu-sajeev/pingcrm/internal/logger"
	"github.com/joshu-sajeev/pingcrm/internal/metrics"
	"github.com/joshu-sajeev/pingcrm/internal/queue"
	"github.com/joshu-sajeev/pingcrm/internal/router"
	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/prometheus/client_golang/prometheus"
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
	gin.SetMode(cfg.Server.GinMode)

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
	appLogger.Info("database connected", slog.String("driver", cfg.DB.Driver))

	store := postgres.NewJobRepository(db)

	var (
		reg      *prometheus.Registry
		observer = queue.NopObserver()
	)
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		observer = metrics.NewCollector(reg)
		reg.MustRegister(metrics.NewStatusCollector(store))
	}

	dispatcher := queue.NewDispatcher(store,
		queue.WithDispatcherObserver(observer),
		queue.WithDispatcherLogger(appLogger),
	)

	r := router.SetupRouter(router.Dependencies{
		Logger:         appLogger,
		Jobs:           job.NewJobHandler(job.NewJobService(dispatcher, store)),
		CRM:            crm.NewHandler(postgres.NewUserRepository(db)),
		DB:             sqlDB,
		Metrics:        reg,
		RequestTimeout: cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info("shutdown complete")
	return nil
}
