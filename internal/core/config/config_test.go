package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Table.PageSize)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", `
table:
  page_size: 25
  search_debounce: 300ms
  fetch_retries: 0
cache:
  size: 0
seed:
  count: 42
  rand_seed: 7
backend:
  latency: 150ms
  fail: rate=0.25,code=502
server:
  addr: 127.0.0.1:9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Table.PageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Table.SearchDebounce)
	assert.Equal(t, 0, cfg.Table.FetchRetries, "explicit zero is kept")
	assert.Equal(t, 1, cfg.Table.MutationRetries)
	assert.Equal(t, []int{5, 10, 25, 50}, cfg.Table.PageSizes)
	assert.Equal(t, DefaultConfig().Cache.Size, cfg.Cache.Size, "zero size falls back to default")
	assert.Equal(t, 42, cfg.Seed.Count)
	assert.Equal(t, uint64(7), cfg.Seed.RandSeed)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)

	faults, err := cfg.Faults()
	require.NoError(t, err)
	assert.Equal(t, 150*time.Millisecond, faults.Latency)
	assert.InDelta(t, 0.25, faults.Rate, 1e-9)
	assert.Equal(t, 502, faults.Code)

	opts := cfg.TableOptions()
	assert.Equal(t, 25, opts.PageSize)
	assert.Equal(t, 300*time.Millisecond, opts.SearchDebounce)
	assert.Equal(t, cfg.Cache.Size, opts.CacheSize)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "bad.yaml", "table: [unclosed"))
	require.ErrorContains(t, err, "parse config file")

	_, err = Load(writeFile(t, dir, "invalid.yaml", "table:\n  mutation_retries: 3\n"))
	require.ErrorContains(t, err, "invalid config")
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/tabula/config.yaml", DefaultConfigPath())
}
