// Package backend implements item.Backend over the in-memory store, emulating
// a remote API with optional latency and failure injection.
package backend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/store/memory"
)

var _ item.Backend = (*Local)(nil)

// Local serves the table contract from a memory.Store.
type Local struct {
	store  *memory.Store
	faults Faults
	log    zerolog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Local backend.
type Option func(*Local)

// WithFaults enables latency and failure injection.
func WithFaults(f Faults) Option {
	return func(l *Local) {
		l.faults = f
	}
}

// WithRand sets the source used to decide injected failures.
func WithRand(rng *rand.Rand) Option {
	return func(l *Local) {
		l.rng = rng
	}
}

// NewLocal creates a backend over store.
func NewLocal(store *memory.Store, log zerolog.Logger, opts ...Option) *Local {
	l := &Local{
		store: store,
		log:   log,
		rng:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the underlying store.
func (l *Local) Store() *memory.Store {
	return l.store
}

// Faults returns the configured fault injection.
func (l *Local) Faults() Faults {
	return l.faults
}

// Fetch filters and paginates the store.
func (l *Local) Fetch(ctx context.Context, q item.Query) (item.Page, error) {
	if err := q.Validate(); err != nil {
		return item.Page{}, err
	}
	if err := l.simulate(ctx, "fetch"); err != nil {
		return item.Page{}, err
	}

	items, err := l.store.List(ctx, q.Search)
	if err != nil {
		return item.Page{}, fmt.Errorf("list items: %w", err)
	}

	data, total := item.Paginate(items, q.Page, q.PageSize)
	return item.Page{Data: data, Total: total}, nil
}

// Add validates and inserts an item.
func (l *Local) Add(ctx context.Context, it item.Item) (item.Item, error) {
	it = it.Normalize()
	if err := it.Validate(); err != nil {
		return item.Item{}, err
	}
	if err := l.simulate(ctx, "add"); err != nil {
		return item.Item{}, err
	}

	stored, err := l.store.Insert(ctx, it)
	if err != nil {
		return item.Item{}, fmt.Errorf("insert item: %w", err)
	}
	l.log.Debug().Str("id", stored.ID).Msg("item added")
	return stored, nil
}

// Update validates and applies a patch.
func (l *Local) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	if err := patch.Validate(); err != nil {
		return item.Item{}, err
	}
	if err := l.simulate(ctx, "update"); err != nil {
		return item.Item{}, err
	}

	updated, err := l.store.Update(ctx, id, patch)
	if err != nil {
		return item.Item{}, fmt.Errorf("update item %s: %w", id, err)
	}
	l.log.Debug().Str("id", id).Msg("item updated")
	return updated, nil
}

// Delete removes an item.
func (l *Local) Delete(ctx context.Context, id string) (item.Item, error) {
	if err := l.simulate(ctx, "delete"); err != nil {
		return item.Item{}, err
	}

	removed, err := l.store.Remove(ctx, id)
	if err != nil {
		return item.Item{}, fmt.Errorf("delete item %s: %w", id, err)
	}
	l.log.Debug().Str("id", id).Msg("item deleted")
	return removed, nil
}

// simulate applies latency and failure injection before the store is touched,
// so a failed call never has side effects.
func (l *Local) simulate(ctx context.Context, op string) error {
	if l.faults.Latency > 0 {
		timer := time.NewTimer(l.faults.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if l.faults.Rate <= 0 {
		return nil
	}

	l.mu.Lock()
	roll := l.rng.Float64()
	l.mu.Unlock()

	if roll < l.faults.Rate {
		l.log.Debug().Str("op", op).Msg("failure injected")
		return fmt.Errorf("%s: %w", op, item.ErrTransient)
	}
	return nil
}
