package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/tabula/internal/api"
	"github.com/hay-kot/tabula/internal/backend"
	"github.com/hay-kot/tabula/internal/core/config"
	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/devseed"
	"github.com/hay-kot/tabula/internal/store/memory"
	"github.com/hay-kot/tabula/internal/table"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	// Remote is the base URL of a `tabula serve` instance. When empty the
	// in-process mock backend is used.
	Remote string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Backend serves every command. It is Local unless Remote is set.
	Backend item.Backend

	// Local is the in-process backend, nil when Remote is set.
	Local *backend.Local

	// Coordinator drives the table over Backend.
	Coordinator *table.Coordinator
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	return config.DefaultConfigPath()
}

// Setup builds the backend and coordinator from f.Config. It must run after
// the config is loaded.
func (f *Flags) Setup(log zerolog.Logger) error {
	if f.Config == nil {
		return fmt.Errorf("configuration not loaded")
	}

	if f.Remote != "" {
		client, err := api.NewClient(f.Remote)
		if err != nil {
			return fmt.Errorf("create api client: %w", err)
		}
		f.Backend = client
	} else {
		local, err := NewLocalBackend(f.Config, log.With().Str("component", "backend").Logger())
		if err != nil {
			return err
		}
		f.Local = local
		f.Backend = local
	}

	coord, err := table.New(f.Backend, log.With().Str("component", "table").Logger(), f.Config.TableOptions())
	if err != nil {
		return fmt.Errorf("create coordinator: %w", err)
	}
	f.Coordinator = coord
	return nil
}

// Close releases the coordinator and logs query cache activity.
func (f *Flags) Close() {
	if f.Coordinator == nil {
		return
	}

	stats := f.Coordinator.CacheStats()
	log.Debug().
		Uint64("hits", stats.Hits).
		Uint64("misses", stats.Misses).
		Uint64("invalidations", stats.Invalidations).
		Int("entries", stats.Entries).
		Msg("query cache stats")
	f.Coordinator.Close()
}

// NewLocalBackend seeds a fresh in-memory store as configured and wraps it
// with the configured fault injection.
func NewLocalBackend(cfg *config.Config, log zerolog.Logger) (*backend.Local, error) {
	items, err := SeedItems(cfg)
	if err != nil {
		return nil, err
	}

	store := memory.New()
	if err := store.Seed(items); err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}

	faults, err := cfg.Faults()
	if err != nil {
		return nil, fmt.Errorf("parse backend faults: %w", err)
	}

	log.Debug().Int("items", store.Len()).Dur("latency", faults.Latency).Float64("fail_rate", faults.Rate).Msg("seeded store")
	return backend.NewLocal(store, log, backend.WithFaults(faults)), nil
}

// SeedItems returns the configured seed records: the contents of the seed
// files when any are set, otherwise seed.count generated items.
func SeedItems(cfg *config.Config) ([]item.Item, error) {
	if len(cfg.Seed.Files) > 0 {
		items, err := devseed.LoadGlob(cfg.Seed.Files...)
		if err != nil {
			return nil, fmt.Errorf("load seed files: %w", err)
		}
		return items, nil
	}

	return devseed.Generate(cfg.Seed.Count, devseed.NewRand(cfg.Seed.RandSeed)), nil
}
