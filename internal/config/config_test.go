package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-management-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.PostgresConn)
	assert.Equal(t, "migrations", cfg.MigrationsDir)
	assert.Equal(t, 1024, cfg.FeedRetention)
	assert.Equal(t, 256, cfg.SubscriberQueue)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9000")
	t.Setenv("POSTGRES_CONN", "postgres://localhost/market")
	t.Setenv("FEED_RETENTION", "64")
	t.Setenv("SUBSCRIBER_QUEUE_SIZE", "32")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "postgres://localhost/market", cfg.PostgresConn)
	assert.Equal(t, 64, cfg.FeedRetention)
	assert.Equal(t, 32, cfg.SubscriberQueue)
}

func TestLoadFileOverridesEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9000")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\nfeed_retention: 16\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 16, cfg.FeedRetention)
	assert.Equal(t, 256, cfg.SubscriberQueue)
}

func TestLoadRejectsNonPositiveSizes(t *testing.T) {
	t.Setenv("FEED_RETENTION", "-1")

	_, err := config.Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
