package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.Equal(t, "./models", cfg.Catalog.Path)
	require.Equal(t, ".sql", cfg.Catalog.Extension)

	require.Equal(t, 250, cfg.Query.StatementLimit)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/internal/metrics", cfg.Monitoring.Prometheus.Endpoint)

	require.True(t, cfg.Maintenance.PruneIdle.Enabled)
	require.Equal(t, 45*time.Minute, cfg.Maintenance.PruneIdle.TTL)
	require.Equal(t, "@every 10m", cfg.Maintenance.PruneIdle.Schedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 5678, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/studio.sqlite", cfg.Database.Path)
	require.Equal(t, ".sql", cfg.Catalog.Extension)
	require.Equal(t, 100, cfg.Query.StatementLimit)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.False(t, cfg.Maintenance.PruneIdle.Enabled)
	require.Equal(t, 30*time.Minute, cfg.Maintenance.PruneIdle.TTL)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STUDIO_SERVER_PORT", "7001")
	t.Setenv("STUDIO_QUERY_STATEMENT_LIMIT", "10")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 7001, cfg.Server.Port)
	require.Equal(t, 10, cfg.Query.StatementLimit)
}
