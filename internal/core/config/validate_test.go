package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	return &cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_DefaultConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Warnings())
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "page size", mutate: func(c *Config) { c.Table.PageSize = 0 }, field: "table.page_size"},
		{name: "page sizes", mutate: func(c *Config) { c.Table.PageSizes = []int{5, -1} }, field: "table.page_sizes[1]"},
		{name: "debounce", mutate: func(c *Config) { c.Table.SearchDebounce = -time.Second }, field: "table.search_debounce"},
		{name: "fetch retries", mutate: func(c *Config) { c.Table.FetchRetries = -1 }, field: "table.fetch_retries"},
		{name: "mutation retries", mutate: func(c *Config) { c.Table.MutationRetries = 2 }, field: "table.mutation_retries"},
		{name: "fetch timeout", mutate: func(c *Config) { c.Table.FetchTimeout = 0 }, field: "table.fetch_timeout"},
		{name: "cache size", mutate: func(c *Config) { c.Cache.Size = 0 }, field: "cache.size"},
		{name: "seed count", mutate: func(c *Config) { c.Seed.Count = -5 }, field: "seed.count"},
		{name: "seed glob", mutate: func(c *Config) { c.Seed.Files = []string{"seeds/[.json"} }, field: "seed.files[0]"},
		{name: "latency", mutate: func(c *Config) { c.Backend.Latency = -time.Millisecond }, field: "backend.latency"},
		{name: "fail rate", mutate: func(c *Config) { c.Backend.Fail = "rate=2" }, field: "backend.fail"},
		{name: "fail code", mutate: func(c *Config) { c.Backend.Fail = "rate=0.1,code=404" }, field: "backend.fail"},
		{name: "server addr", mutate: func(c *Config) { c.Server.Addr = "" }, field: "server.addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestValidateDeep(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[]`)

	t.Run("valid", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Seed.Files = []string{filepath.Join(dir, "*.json")}
		assert.NoError(t, cfg.ValidateDeep(filepath.Join(dir, "missing.yaml")))
	})

	t.Run("pattern matches nothing", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Seed.Files = []string{filepath.Join(dir, "*.yaml")}

		err := cfg.ValidateDeep("")

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		require.Len(t, fieldErrs, 1)
		assert.Equal(t, "seed.files[0]", fieldErrs[0].Field)
		assert.Contains(t, fieldErrs[0].Err.Error(), "matches no files")
	})

	t.Run("config path is a directory", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Cache.Size = 0

		err := cfg.ValidateDeep(dir)

		var fieldErrs criterio.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Len(t, fieldErrs, 2)
		assert.Equal(t, "config", fieldErrs[0].Field)
		assert.Equal(t, "cache.size", fieldErrs[1].Field)
	})
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	cfg.Table.PageSize = 20
	cfg.Backend.Fail = "rate=0.5"
	cfg.Table.FetchRetries = 0

	warnings := cfg.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, "page_size", warnings[0].Item)
	assert.Equal(t, "fail", warnings[1].Item)
}

func TestPageSizeCycle(t *testing.T) {
	cfg := validConfig(t)
	assert.Equal(t, []int{5, 10, 25, 50}, cfg.PageSizeCycle())

	cfg.Table.PageSize = 20
	cfg.Table.PageSizes = []int{50, 5, 5}
	assert.Equal(t, []int{5, 20, 50}, cfg.PageSizeCycle())
}
