package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/studio/internal/models"
)

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestAutoMigrateCreatesSchema(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:migratetest?mode=memory&cache=shared"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	model := "growth"
	conn := models.NewConnection("ibkr", "duckdb", true, &model, map[string]any{"region": "us"})
	require.NoError(t, db.Create(&conn).Error)

	var loaded models.Connection
	require.NoError(t, db.First(&loaded, "name = ?", "ibkr").Error)
	require.Equal(t, "duckdb", loaded.Type)
	require.True(t, loaded.Active)
	require.Equal(t, "growth", *loaded.Model)
	require.Equal(t, "us", loaded.Extra["region"])
}

func TestAutoMigrateNilHandle(t *testing.T) {
	require.Error(t, AutoMigrate(nil))
}
