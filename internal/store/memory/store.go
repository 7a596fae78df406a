// Package memory provides the in-memory item store that backs the table.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/hay-kot/tabula/internal/core/item"
)

// Store holds items in insertion order. It is the system of record for the
// process and is never persisted. All methods are safe for concurrent use and
// return copies, never references into the store.
type Store struct {
	mu    sync.RWMutex
	items []item.Item
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithIDFunc overrides ID generation. Used by tests for stable IDs.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// New creates a store. Use Seed to load initial items.
func New(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed appends items, assigning IDs where missing. Seeding rejects duplicate IDs.
func (s *Store) Seed(items []item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		if _, err := s.insertLocked(it); err != nil {
			return fmt.Errorf("seed %q: %w", it.Title, err)
		}
	}
	return nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// List returns the items whose title contains search (case-insensitive) in
// insertion order. An empty search returns all items.
func (s *Store) List(ctx context.Context, search string) ([]item.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return item.Filter(s.items, search), nil
}

// Get returns an item by ID. Returns item.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return item.Item{}, item.ErrNotFound
	}
	return s.items[i], nil
}

// Insert appends an item, assigning a UUID if it has no ID.
// Returns item.ErrConflict if the ID is already taken.
func (s *Store) Insert(ctx context.Context, it item.Item) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(it)
}

// Update merges patch into the item with the given ID and returns the result.
// Returns item.ErrNotFound if absent.
func (s *Store) Update(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return item.Item{}, item.ErrNotFound
	}

	s.items[i] = patch.Apply(s.items[i])
	return s.items[i], nil
}

// Remove deletes the item with the given ID and returns it.
// Returns item.ErrNotFound if absent.
func (s *Store) Remove(ctx context.Context, id string) (item.Item, error) {
	if err := ctx.Err(); err != nil {
		return item.Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return item.Item{}, item.ErrNotFound
	}

	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	return removed, nil
}

func (s *Store) insertLocked(it item.Item) (item.Item, error) {
	if it.ID == "" {
		it.ID = s.newID()
	}
	if s.indexLocked(it.ID) >= 0 {
		return item.Item{}, fmt.Errorf("%w: %s", item.ErrConflict, it.ID)
	}

	s.items = append(s.items, it)
	return it, nil
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(it item.Item) bool {
		return it.ID == id
	})
}
