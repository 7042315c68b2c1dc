package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joshu-sajeev/pingcrm/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate applies every pending goose migration for db's dialect.
func Migrate(ctx context.Context, db *gorm.DB) error {
	provider, err := newProvider(db)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		slog.Info("migration applied",
			slog.String("source", r.Source.Path),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// MigrationVersion returns the current schema version.
func MigrationVersion(ctx context.Context, db *gorm.DB) (int64, error) {
	provider, err := newProvider(db)
	if err != nil {
		return 0, err
	}

	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get migration version: %w", err)
	}
	return v, nil
}

func newProvider(db *gorm.DB) (*goose.Provider, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch name := db.Dialector.Name(); name {
	case DriverPostgres:
		dialect, dir = goose.DialectPostgres, "postgres"
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "sqlite"
	default:
		return nil, fmt.Errorf("migrations: unsupported dialect %q", name)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("migrations: get sql.DB: %w", err)
	}

	fsys, err := fs.Sub(migrations.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: open %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return nil, fmt.Errorf("migrations: new provider: %w", err)
	}
	return provider, nil
}
