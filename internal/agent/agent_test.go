package agent

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/mwantia/codingrules/internal/config/server"
)

func testConfig(t *testing.T, seed string) *config.BaseServerConfig {
	cfg := config.GetServerDefault()
	cfg.Log.Level = "FATAL"
	cfg.Metadata.SQLite.Path = filepath.Join(t.TempDir(), "agent.db")
	cfg.Metadata.Seed = seed
	return &cfg
}

func TestSetupStoreSeedsEmptyStore(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, filepath.Join("..", "..", "pkg", "catalog", "testdata", "catalog.yaml"))

	cra := NewAgent(cfg, "test")
	require.NoError(t, cra.setupStore(ctx))
	defer cra.store.Close()

	count, err := cra.store.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// A second run keeps the existing catalog
	require.NoError(t, cra.seed(ctx))
	count, err = cra.store.CountRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestSetupStoreWithoutSeed(t *testing.T) {
	ctx := context.Background()

	cra := NewAgent(testConfig(t, ""), "test")
	require.NoError(t, cra.setupStore(ctx))
	defer cra.store.Close()

	count, err := cra.store.CountRules(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSetupStoreFailsOnMissingSeed(t *testing.T) {
	cra := NewAgent(testConfig(t, filepath.Join(t.TempDir(), "missing.yaml")), "test")
	assert.Error(t, cra.setupStore(context.Background()))
}

func TestSetupStoreFailsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cra := NewAgent(testConfig(t, ""), "test")
	assert.ErrorIs(t, cra.setupStore(ctx), context.Canceled)
	assert.Nil(t, cra.store)
}
