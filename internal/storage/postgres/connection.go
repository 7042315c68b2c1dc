package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver         string        `env:"DB_DRIVER,default=postgres"`
	User           string        `env:"POSTGRES_USER,default=postgres"`
	Password       string        `env:"POSTGRES_PASSWORD,default=postgres"`
	Host           string        `env:"POSTGRES_HOST,default=postgres"`
	Port           string        `env:"POSTGRES_PORT,default=5432"`
	Database       string        `env:"POSTGRES_DB,default=pingcrm"`
	SSLMode        string        `env:"POSTGRES_SSLMODE,default=disable"`
	SQLitePath     string        `env:"SQLITE_PATH,default=pingcrm.db"`
	MaxRetries     int           `env:"DB_MAX_RETRIES,default=10"`
	RetryDelay     time.Duration `env:"DB_RETRY_DELAY,default=2s"`
	ConnectTimeout int           `env:"DB_CONNECT_TIMEOUT,default=5"`
	MaxOpenConns   int           `env:"DB_MAX_OPEN_CONNS,default=50"`
	MaxIdleConns   int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	LogLevelString string        `env:"DB_LOG_LEVEL,default=warn"`
	LogLevel       logger.LogLevel
}

// to help with testing
var envProcess = envconfig.Process

func LoadConfigFromEnv(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envProcess(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.LogLevel = ParseLogLevel(cfg.LogLevelString)
	return &cfg, nil
}

// Validate collects every problem with cfg into a single error.
func (cfg *Config) Validate() error {
	var errors []string

	switch cfg.Driver {
	case DriverPostgres:
		if strings.TrimSpace(cfg.User) == "" {
			errors = append(errors, "POSTGRES_USER is required")
		}

		if strings.TrimSpace(cfg.Database) == "" {
			errors = append(errors, "POSTGRES_DB is required")
		}

		if strings.TrimSpace(cfg.Host) == "" {
			errors = append(errors, "POSTGRES_HOST is required")
		}

		if strings.TrimSpace(cfg.Port) == "" {
			errors = append(errors, "POSTGRES_PORT is required")
		}
		if cfg.Port != "" {
			port, err := strconv.Atoi(cfg.Port)
			if err != nil {
				errors = append(errors, "POSTGRES_PORT must be a valid number")
			} else if port < 1 || port > 65535 {
				errors = append(errors, "POSTGRES_PORT must be between 1 and 65535")
			}
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			errors = append(errors, "SQLITE_PATH is required")
		}
	default:
		errors = append(errors, fmt.Sprintf("DB_DRIVER must be %q or %q", DriverPostgres, DriverSQLite))
	}

	if cfg.MaxRetries < 0 {
		errors = append(errors, "DB_MAX_RETRIES must be non-negative")
	}

	if cfg.RetryDelay <= 0 {
		errors = append(errors, "DB_RETRY_DELAY must be positive")
	}

	if cfg.RetryDelay > 10*time.Minute {
		errors = append(errors, "DB_RETRY_DELAY must not exceed 10 minutes")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// DSN returns the driver-specific data source name.
func (cfg *Config) DSN() string {
	if cfg.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.SQLitePath)
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s connect_timeout=%d",
		cfg.Host, cfg.User, cfg.Password, cfg.Database, cfg.Port, cfg.SSLMode, cfg.ConnectTimeout,
	)
}

func (cfg *Config) dialector() gorm.Dialector {
	if cfg.Driver == DriverSQLite {
		return sqlite.Open(cfg.DSN())
	}
	return postgres.Open(cfg.DSN())
}

// ConnectDB opens the configured database, retrying until it answers a ping,
// MaxRetries is exhausted, or ctx is done.
func ConnectDB(ctx context.Context, cfg *Config) (*gorm.DB, error) {
	if cfg == nil {
		loadedCfg, err := LoadConfigFromEnv(ctx)
		if err != nil {
			return nil, err
		}
		cfg = loadedCfg
	}

	if cfg.Driver == DriverSQLite {
		slog.Info("connecting to database", slog.String("driver", cfg.Driver), slog.String("path", cfg.SQLitePath))
	} else {
		slog.Info("connecting to database",
			slog.String("driver", DriverPostgres),
			slog.String("user", cfg.User),
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("database", cfg.Database),
		)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	}

	var lastErr error
	for i := 0; i < cfg.MaxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}

		slog.Debug("database connection attempt", slog.Int("attempt", i+1), slog.Int("max", cfg.MaxRetries))

		gdb, err := gorm.Open(cfg.dialector(), gormConfig)
		if err == nil {
			sqlDB, dbErr := gdb.DB()
			if dbErr == nil {
				pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				pingErr := sqlDB.PingContext(pingCtx)
				cancel()

				if pingErr == nil {
					slog.Info("database connected")

					if cfg.Driver == DriverSQLite {
						// sqlite allows a single writer; serialize through one connection.
						sqlDB.SetMaxOpenConns(1)
					} else {
						sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
						sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
						sqlDB.SetConnMaxLifetime(time.Hour)
					}

					return gdb, nil
				}
				_ = sqlDB.Close()
				err = pingErr
			} else {
				err = dbErr
			}
		}
		lastErr = err

		slog.Warn("database not ready",
			slog.String("reason", simplifyDBError(err)),
			slog.Duration("retry_in", cfg.RetryDelay),
		)

		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("connect database: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("database connection failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// simplifyDBError returns a user-friendly error message
func simplifyDBError(err error) string {
	if err == nil {
		return "database error"
	}
	msg := err.Error()

	switch {
	case strings.Contains(msg, "password authentication failed"):
		return "invalid database credentials"
	case strings.Contains(msg, "timeout"):
		return "database connection timed out"
	case strings.Contains(msg, "connect"):
		return "cannot reach database server"
	case strings.Contains(msg, "SASL"):
		return "authentication error"
	}

	return "database error"
}

// Convert string to logger.LogLevel
func ParseLogLevel(levelStr string) logger.LogLevel {
	switch strings.ToLower(levelStr) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
