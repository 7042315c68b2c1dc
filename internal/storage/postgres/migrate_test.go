package postgres

import (
	"context"
	"testing"

	"github.com/joshu-sajeev/pingcrm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	version, err := MigrationVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// re-running is a no-op
	require.NoError(t, Migrate(ctx, db))

	again, err := MigrationVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, version, again)

	for _, table := range []any{&models.Job{}, &models.User{}, &models.Post{}} {
		assert.True(t, db.Migrator().HasTable(table), "missing table for %T", table)
	}
}

func TestMigrate_RejectsBadStatus(t *testing.T) {
	db := SetupTestDB(t)

	err := db.Exec(`INSERT INTO jobs (id, kind, payload, status, attempts, available_at, created_at, updated_at)
		VALUES ('x', 'echo', '{}', 'bogus', 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`).Error
	assert.Error(t, err)
}
