package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

// withEnv makes Load read from env instead of the process environment.
func withEnv(t *testing.T, env map[string]string) {
	t.Helper()

	original := envProcess
	t.Cleanup(func() { envProcess = original })

	envProcess = func(ctx context.Context, v any, mus ...envconfig.Mutator) error {
		return envconfig.ProcessWith(ctx, &envconfig.Config{
			Target:   v,
			Lookuper: envconfig.MapLookuper(env),
			Mutators: mus,
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	withEnv(t, map[string]string{})

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, 5, cfg.Queue.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Queue.BackoffBase)
	assert.Equal(t, 5*time.Minute, cfg.Queue.BackoffCap)
	assert.False(t, cfg.Queue.BackoffJitter)
	assert.Equal(t, 30*time.Second, cfg.Queue.ExecutionTimeout)
	assert.Equal(t, 4, cfg.Queue.WorkerCount)
	assert.Zero(t, cfg.Queue.LeaseTimeout)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, postgres.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, "pingcrm", cfg.DB.Database)
	assert.Equal(t, logger.Warn, cfg.DB.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	withEnv(t, map[string]string{
		"PORT":                    "8080",
		"QUEUE_POLL_INTERVAL":     "250ms",
		"QUEUE_MAX_ATTEMPTS":      "3",
		"QUEUE_BACKOFF_BASE":      "2s",
		"QUEUE_BACKOFF_CAP":       "1m",
		"QUEUE_BACKOFF_JITTER":    "true",
		"QUEUE_EXECUTION_TIMEOUT": "5s",
		"QUEUE_WORKER_COUNT":      "8",
		"QUEUE_LEASE_TIMEOUT":     "10m",
		"LOG_FORMAT":              "console",
		"DB_DRIVER":               "sqlite",
		"SQLITE_PATH":             "/tmp/queue.db",
		"DB_LOG_LEVEL":            "silent",
	})

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, postgres.DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, logger.Silent, cfg.DB.LogLevel)

	policy := cfg.Queue.Policy()
	assert.Equal(t, 3, policy.MaxAttempts)
	assert.Equal(t, 2*time.Second, policy.Base)
	assert.Equal(t, time.Minute, policy.Cap)
	assert.True(t, policy.Jitter)

	pc := cfg.Queue.Pool()
	assert.Equal(t, 8, pc.Workers)
	assert.Equal(t, 250*time.Millisecond, pc.Worker.PollInterval)
	assert.Equal(t, 5*time.Second, pc.Worker.ExecutionTimeout)
	assert.Equal(t, 10*time.Minute, pc.LeaseTimeout)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		errorContains []string
	}{
		{
			name:          "unparsable duration",
			env:           map[string]string{"QUEUE_POLL_INTERVAL": "soon"},
			errorContains: []string{"failed to process env config"},
		},
		{
			name: "queue limits",
			env: map[string]string{
				"QUEUE_MAX_ATTEMPTS": "0",
				"QUEUE_WORKER_COUNT": "0",
				"QUEUE_BACKOFF_CAP":  "100ms",
			},
			errorContains: []string{
				"config validation failed",
				"QUEUE_MAX_ATTEMPTS must be at least 1",
				"QUEUE_WORKER_COUNT must be at least 1",
				"QUEUE_BACKOFF_CAP must not be less than QUEUE_BACKOFF_BASE",
			},
		},
		{
			name: "lease shorter than execution timeout",
			env: map[string]string{
				"QUEUE_EXECUTION_TIMEOUT": "1m",
				"QUEUE_LEASE_TIMEOUT":     "30s",
			},
			errorContains: []string{"QUEUE_LEASE_TIMEOUT must exceed QUEUE_EXECUTION_TIMEOUT"},
		},
		{
			name:          "bad port",
			env:           map[string]string{"PORT": "0"},
			errorContains: []string{"PORT must be between 1 and 65535"},
		},
		{
			name:          "database config is validated too",
			env:           map[string]string{"DB_DRIVER": "oracle"},
			errorContains: []string{"DB_DRIVER must be"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.env)

			_, err := Load(context.Background())
			require.Error(t, err)
			for _, s := range tt.errorContains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestLoad_ProcessError(t *testing.T) {
	original := envProcess
	defer func() { envProcess = original }()

	envProcess = func(ctx context.Context, v any, mus ...envconfig.Mutator) error {
		return errors.New("env: boom")
	}

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "failed to process env config: env: boom")
}
