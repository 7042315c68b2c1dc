package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshu-sajeev/pingcrm/internal/config"
	"github.com/joshu-sajeev/pingcrm/internal/logger"
	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
)

// Connect loads configuration from the environment and opens the
// configured database. Logs go to stderr so stdout stays parseable.
func Connect(ctx context.Context) (*Backend, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	cfg.Log.Output = "stderr"
	slog.SetDefault(logger.New(cfg.Log))

	db, err := postgres.ConnectDB(ctx, &cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	return &Backend{
		Store: postgres.NewJobRepository(db),
		Migrate: func(ctx context.Context) error {
			return postgres.Migrate(ctx, db)
		},
		Close: sqlDB.Close,
	}, nil
}
