package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/joshu-sajeev/pingcrm/internal/backoff"
	"github.com/joshu-sajeev/pingcrm/internal/logger"
	"github.com/joshu-sajeev/pingcrm/internal/pool"
	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/joshu-sajeev/pingcrm/internal/worker"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server  ServerConfig
	Queue   QueueConfig
	Metrics MetricsConfig
	Log     logger.Config
	DB      postgres.Config
}

type ServerConfig struct {
	Port            int           `env:"PORT,default=8000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT,default=10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT,default=10s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=30s"`
	GinMode         string        `env:"GIN_MODE,default=release"`
}

type QueueConfig struct {
	PollInterval     time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	MaxAttempts      int           `env:"QUEUE_MAX_ATTEMPTS,default=5"`
	BackoffBase      time.Duration `env:"QUEUE_BACKOFF_BASE,default=1s"`
	BackoffCap       time.Duration `env:"QUEUE_BACKOFF_CAP,default=5m"`
	BackoffJitter    bool          `env:"QUEUE_BACKOFF_JITTER,default=false"`
	ExecutionTimeout time.Duration `env:"QUEUE_EXECUTION_TIMEOUT,default=30s"`
	WorkerCount      int           `env:"QUEUE_WORKER_COUNT,default=4"`
	LeaseTimeout     time.Duration `env:"QUEUE_LEASE_TIMEOUT,default=0s"`
}

type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED,default=true"`
	Port    int  `env:"METRICS_PORT,default=9090"`
}

// to help with testing
var envProcess = envconfig.Process

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.DB.LogLevel = postgres.ParseLogLevel(cfg.DB.LogLevelString)
	return &cfg, nil
}

func (cfg *Config) Validate() error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "PORT must be between 1 and 65535")
	}
	if cfg.Metrics.Enabled && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
		errs = append(errs, "METRICS_PORT must be between 1 and 65535")
	}

	q := cfg.Queue
	if q.PollInterval <= 0 {
		errs = append(errs, "QUEUE_POLL_INTERVAL must be positive")
	}
	if q.MaxAttempts < 1 {
		errs = append(errs, "QUEUE_MAX_ATTEMPTS must be at least 1")
	}
	if q.BackoffBase <= 0 {
		errs = append(errs, "QUEUE_BACKOFF_BASE must be positive")
	}
	if q.BackoffCap < q.BackoffBase {
		errs = append(errs, "QUEUE_BACKOFF_CAP must not be less than QUEUE_BACKOFF_BASE")
	}
	if q.ExecutionTimeout <= 0 {
		errs = append(errs, "QUEUE_EXECUTION_TIMEOUT must be positive")
	}
	if q.WorkerCount < 1 {
		errs = append(errs, "QUEUE_WORKER_COUNT must be at least 1")
	}
	if q.LeaseTimeout < 0 {
		errs = append(errs, "QUEUE_LEASE_TIMEOUT must not be negative")
	} else if q.LeaseTimeout > 0 && q.LeaseTimeout <= q.ExecutionTimeout {
		errs = append(errs, "QUEUE_LEASE_TIMEOUT must exceed QUEUE_EXECUTION_TIMEOUT")
	}

	if err := cfg.DB.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (q QueueConfig) Policy() backoff.Policy {
	p := backoff.New(q.MaxAttempts, q.BackoffBase, q.BackoffCap)
	p.Jitter = q.BackoffJitter
	return p
}

func (q QueueConfig) Pool() pool.Config {
	return pool.Config{
		Workers: q.WorkerCount,
		Worker: worker.Config{
			PollInterval:     q.PollInterval,
			ExecutionTimeout: q.ExecutionTimeout,
			Policy:           q.Policy(),
		},
		LeaseTimeout: q.LeaseTimeout,
	}
}
