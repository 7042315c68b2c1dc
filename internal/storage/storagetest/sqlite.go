// Package storagetest opens throwaway migrated databases for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/joshu-sajeev/pingcrm/internal/storage/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLite returns a migrated sqlite database in a temporary directory.
// The connection is closed when the test ends.
func NewSQLite(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &postgres.Config{
		Driver:     postgres.DriverSQLite,
		SQLitePath: filepath.Join(tb.TempDir(), "queue.db"),
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
		LogLevel:   logger.Silent,
	}

	db, err := postgres.ConnectDB(context.Background(), cfg)
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	tb.Cleanup(func() { sqlDB.Close() })

	require.NoError(tb, postgres.Migrate(context.Background(), db))
	return db
}
