package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 64, cfg.PoolSize)
	assert.Equal(t, 2, cfg.ReplacerK)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 128\nreplacer_k: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.PoolSize)
	assert.Equal(t, 4, cfg.ReplacerK)
	assert.Equal(t, 4, cfg.NumWorkers, "unset fields fall back to Default()")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 32\n"), 0o644))

	t.Setenv("PAGECACHE_POOL_SIZE", "99")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.PoolSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []Config{
		{PoolSize: 0, ReplacerK: 2, NumWorkers: 1, DiskQueueCapacity: 1},
		{PoolSize: 1, ReplacerK: 0, NumWorkers: 1, DiskQueueCapacity: 1},
		{PoolSize: 1, ReplacerK: 2, NumWorkers: 0, DiskQueueCapacity: 1},
		{PoolSize: 1, ReplacerK: 2, NumWorkers: 1, DiskQueueCapacity: 0},
	}
	for _, c := range cases {
		assert.Error(t, c.Validate())
	}
}
