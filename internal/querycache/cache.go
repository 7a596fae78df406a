// Package querycache memoizes page lookups keyed by item.Query.
//
// The cache is invalidated wholesale after any mutation. A lookup that was
// already running when the cache was invalidated still returns its result to
// the caller but does not write it back, so stale pages are never served.
package querycache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/hay-kot/tabula/internal/core/item"
)

// DefaultSize is the number of distinct queries kept when no size is given.
const DefaultSize = 256

// LoadFunc computes a page on a cache miss.
type LoadFunc func(ctx context.Context) (item.Page, error)

// Stats reports cache activity counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Invalidations uint64
	Entries       int
}

// Cache is safe for concurrent use.
type Cache struct {
	entries     *lru.Cache[item.Query, item.Page]
	group       singleflight.Group
	loadTimeout time.Duration

	// mu makes the generation check and the write back atomic with respect
	// to InvalidateAll.
	mu         sync.Mutex
	generation atomic.Uint64

	hits          atomic.Uint64
	misses        atomic.Uint64
	invalidations atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLoadTimeout bounds a shared load. Loads are detached from the caller
// that started them, so this is the only deadline they get. Zero means none.
func WithLoadTimeout(d time.Duration) Option {
	return func(c *Cache) {
		c.loadTimeout = d
	}
}

// New creates a cache holding at most size queries. A size below 1 uses DefaultSize.
func New(size int, opts ...Option) (*Cache, error) {
	if size < 1 {
		size = DefaultSize
	}

	entries, err := lru.New[item.Query, item.Page](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &Cache{entries: entries}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get returns a copy of the cached page for q.
func (c *Cache) Get(q item.Query) (item.Page, bool) {
	page, ok := c.entries.Get(q)
	if !ok {
		return item.Page{}, false
	}
	return page.Clone(), true
}

// Set stores a copy of page under q.
func (c *Cache) Set(q item.Query, page item.Page) {
	c.entries.Add(q, page.Clone())
}

// InvalidateAll drops every entry and bumps the generation so in-flight loads
// do not repopulate the cache with pre-mutation data.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation.Add(1)
	c.invalidations.Add(1)
	c.entries.Purge()
}

// Do returns the cached page for q, or calls load and caches its result.
// Concurrent calls for the same query and generation share one load. The
// shared load is detached from ctx so one caller giving up does not fail the
// others; each caller still returns as soon as its own ctx is done. The
// boolean reports whether the result came from the cache.
func (c *Cache) Do(ctx context.Context, q item.Query, load LoadFunc) (item.Page, bool, error) {
	if page, ok := c.Get(q); ok {
		c.hits.Add(1)
		return page, true, nil
	}
	c.misses.Add(1)

	gen := c.generation.Load()
	key := strconv.FormatUint(gen, 10) + "|" + q.String()

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if c.loadTimeout > 0 {
			var cancel context.CancelFunc
			loadCtx, cancel = context.WithTimeout(loadCtx, c.loadTimeout)
			defer cancel()
		}

		page, err := load(loadCtx)
		if err != nil {
			return item.Page{}, err
		}
		c.setIfCurrent(gen, q, page)
		return page, nil
	})

	select {
	case <-ctx.Done():
		return item.Page{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return item.Page{}, false, res.Err
		}
		return res.Val.(item.Page).Clone(), false, nil
	}
}

// setIfCurrent stores page unless the cache was invalidated since gen.
func (c *Cache) setIfCurrent(gen uint64, q item.Query, page item.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation.Load() == gen {
		c.Set(q, page)
	}
}

// Len returns the number of cached queries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       c.entries.Len(),
	}
}
