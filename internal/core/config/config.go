// Package config handles configuration loading and validation for tabula.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hay-kot/tabula/internal/backend"
	"github.com/hay-kot/tabula/internal/table"
)

// Config holds the application configuration.
type Config struct {
	Table   TableConfig   `yaml:"table"`
	Cache   CacheConfig   `yaml:"cache"`
	Seed    SeedConfig    `yaml:"seed"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
}

// TableConfig tunes the table coordinator and the TUI.
type TableConfig struct {
	PageSize        int           `yaml:"page_size"`
	PageSizes       []int         `yaml:"page_sizes"` // cycled with +/- in the TUI
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	FetchRetries    int           `yaml:"fetch_retries"`
	MutationRetries int           `yaml:"mutation_retries"`
	RetryBackoff    time.Duration `yaml:"retry_backoff"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

// CacheConfig sizes the query cache.
type CacheConfig struct {
	Size int `yaml:"size"`
}

// SeedConfig controls the initial contents of the in-memory store.
type SeedConfig struct {
	// Count generated items when no files are given.
	Count int `yaml:"count"`
	// Files are JSON or YAML item lists. Glob patterns are supported.
	Files []string `yaml:"files"`
	// RandSeed makes generated items reproducible. Zero means random.
	RandSeed uint64 `yaml:"rand_seed"`
}

// BackendConfig configures latency and failure injection for the mock backend.
type BackendConfig struct {
	Latency time.Duration `yaml:"latency"`
	// Fail is "rate=<float>,code=<5xx>", e.g. "rate=0.2,code=503".
	Fail string `yaml:"fail"`
}

// ServerConfig configures the HTTP server started by `tabula serve`.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	opts := table.DefaultOptions()
	return Config{
		Table: TableConfig{
			PageSize:        opts.PageSize,
			PageSizes:       []int{5, 10, 25, 50},
			SearchDebounce:  opts.SearchDebounce,
			FetchRetries:    opts.FetchRetries,
			MutationRetries: opts.MutationRetries,
			RetryBackoff:    opts.RetryBackoff,
			FetchTimeout:    opts.FetchTimeout,
		},
		Cache: CacheConfig{
			Size: opts.CacheSize,
		},
		Seed: SeedConfig{
			Count: 100,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads configuration from the given path. If configPath is empty or
// doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for options where zero is never valid.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Table.PageSize == 0 {
		c.Table.PageSize = defaults.Table.PageSize
	}
	if len(c.Table.PageSizes) == 0 {
		c.Table.PageSizes = defaults.Table.PageSizes
	}
	if c.Table.SearchDebounce == 0 {
		c.Table.SearchDebounce = defaults.Table.SearchDebounce
	}
	if c.Table.FetchTimeout == 0 {
		c.Table.FetchTimeout = defaults.Table.FetchTimeout
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = defaults.Cache.Size
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}

// TableOptions converts the table and cache sections into coordinator options.
func (c *Config) TableOptions() table.Options {
	return table.Options{
		PageSize:        c.Table.PageSize,
		SearchDebounce:  c.Table.SearchDebounce,
		FetchRetries:    c.Table.FetchRetries,
		MutationRetries: c.Table.MutationRetries,
		RetryBackoff:    c.Table.RetryBackoff,
		FetchTimeout:    c.Table.FetchTimeout,
		CacheSize:       c.Cache.Size,
	}
}

// Faults parses the backend section into fault injection settings.
func (c *Config) Faults() (backend.Faults, error) {
	f, err := backend.ParseFaults(c.Backend.Fail)
	if err != nil {
		return backend.Faults{}, err
	}
	f.Latency = c.Backend.Latency
	return f, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tabula", "config.yaml")
}
