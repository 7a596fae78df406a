// Package table coordinates the paginated item table: it owns the current
// page, page size and search text, fetches pages through a query cache and
// dispatches mutations to the backend.
//
// Every fetch is tagged with a sequence number and its result is applied only
// if no newer fetch was issued in the meantime, so out of order completions
// can never show data for a stale query.
package table

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/querycache"
	"github.com/hay-kot/tabula/pkg/debounce"
)

// Coordinator is safe for concurrent use. Its lock is never held while the
// backend is called.
type Coordinator struct {
	backend item.Backend
	cache   *querycache.Cache
	opts    Options
	log     zerolog.Logger
	search  *debounce.Debouncer[string]

	mu      sync.Mutex
	query   item.Query
	items   []item.Item
	total   int
	status  Status
	err     error
	seq     uint64
	version uint64

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a coordinator in the idle state. No fetch is issued until
// Fetch or one of the setters is called.
func New(backend item.Backend, log zerolog.Logger, opts Options) (*Coordinator, error) {
	opts = opts.withDefaults()

	cache, err := querycache.New(opts.CacheSize, querycache.WithLoadTimeout(opts.FetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}

	c := &Coordinator{
		backend: backend,
		cache:   cache,
		opts:    opts,
		log:     log,
		query:   item.Query{Page: 0, PageSize: opts.PageSize},
		subs:    make(map[int]func(Snapshot)),
	}
	c.search = debounce.New(opts.SearchDebounce, c.debouncedSearch)
	return c, nil
}

// Close drops any pending debounced search.
func (c *Coordinator) Close() {
	c.search.Stop()
}

// Options returns the effective options.
func (c *Coordinator) Options() Options {
	return c.opts
}

// CacheStats reports query cache activity.
func (c *Coordinator) CacheStats() querycache.Stats {
	return c.cache.Stats()
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func unregisters it. fn must not block.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (cancel func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		delete(c.subs, id)
	}
}

// SetPage moves to page n and fetches it. Negative pages are rejected.
func (c *Coordinator) SetPage(ctx context.Context, n int) error {
	if err := c.updateQuery(func(q *item.Query) { q.Page = n }); err != nil {
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

// SetPageSize changes the page size, resets to the first page and fetches it.
// Sizes below one are rejected.
func (c *Coordinator) SetPageSize(ctx context.Context, n int) error {
	if err := c.updateQuery(func(q *item.Query) {
		q.PageSize = n
		q.Page = 0
	}); err != nil {
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

// SetQuery replaces the whole query and fetches it. Any pending debounced
// search is dropped. Used by one-shot callers such as the CLI.
func (c *Coordinator) SetQuery(ctx context.Context, q item.Query) error {
	c.search.Stop()
	if err := c.updateQuery(func(cur *item.Query) { *cur = q }); err != nil {
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

// SetSearch schedules a search. Rapid calls are coalesced so that only the
// last text is fetched once input has been quiet for the debounce window.
func (c *Coordinator) SetSearch(text string) {
	c.search.Trigger(text)
}

// FlushSearch applies a pending debounced search immediately.
func (c *Coordinator) FlushSearch() {
	c.search.Flush()
}

// ApplySearch sets the search text without debouncing, resets to the first
// page and fetches it.
func (c *Coordinator) ApplySearch(ctx context.Context, text string) error {
	if err := c.updateQuery(func(q *item.Query) {
		q.Search = text
		q.Page = 0
	}); err != nil {
		return err
	}
	_, err := c.Fetch(ctx)
	return err
}

func (c *Coordinator) debouncedSearch(text string) {
	if err := c.ApplySearch(context.Background(), text); err != nil {
		c.log.Warn().Err(err).Str("search", text).Msg("search fetch failed")
	}
}

// Retry re-runs the fetch for the current query, typically after an error.
func (c *Coordinator) Retry(ctx context.Context) error {
	_, err := c.Fetch(ctx)
	return err
}

// Refresh drops every cached page and fetches the current query again.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.cache.InvalidateAll()
	_, err := c.Fetch(ctx)
	return err
}

// Fetch runs a fetch cycle for the current query. Cached pages are returned
// without calling the backend. The result is applied to the visible state
// only if no newer fetch was started meanwhile; the page is returned to the
// caller either way.
func (c *Coordinator) Fetch(ctx context.Context) (item.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()

	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := c.query
	c.status = StatusFetching
	c.version++
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	page, hit, err := c.cache.Do(ctx, q, func(ctx context.Context) (item.Page, error) {
		return retry(ctx, c.log, "fetch", c.opts.FetchRetries, c.opts.RetryBackoff, func() (item.Page, error) {
			return c.backend.Fetch(ctx, q)
		})
	})

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.log.Debug().Stringer("query", q).Uint64("seq", seq).Msg("discarding stale fetch result")
		if err != nil {
			return item.Page{}, fmt.Errorf("fetch %s: %w", q, err)
		}
		return page, nil
	}

	if err != nil {
		c.status = StatusError
		c.err = err
	} else {
		c.items = page.Data
		c.total = page.Total
		c.status = StatusIdle
		c.err = nil
	}
	c.version++
	snap = c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)

	if err != nil {
		c.log.Warn().Err(err).Stringer("query", q).Msg("fetch failed")
		return item.Page{}, fmt.Errorf("fetch %s: %w", q, err)
	}

	c.log.Debug().Stringer("query", q).Bool("cache_hit", hit).Int("total", page.Total).Msg("fetched page")
	return page, nil
}

// AddItem inserts an item through the backend, then invalidates the cache and
// refetches the current page.
func (c *Coordinator) AddItem(ctx context.Context, it item.Item) (item.Item, error) {
	added, err := retry(ctx, c.log, "add", c.opts.MutationRetries, c.opts.RetryBackoff, func() (item.Item, error) {
		return c.backend.Add(ctx, it)
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("add item: %w", err)
	}

	c.afterMutation(ctx)
	return added, nil
}

// UpdateItem merges patch into the item with the given ID. Returns an error
// matching item.ErrNotFound if the item does not exist.
func (c *Coordinator) UpdateItem(ctx context.Context, id string, patch item.Patch) (item.Item, error) {
	updated, err := retry(ctx, c.log, "update", c.opts.MutationRetries, c.opts.RetryBackoff, func() (item.Item, error) {
		return c.backend.Update(ctx, id, patch)
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("update item: %w", err)
	}

	c.afterMutation(ctx)
	return updated, nil
}

// DeleteItem removes the item with the given ID. Returns an error matching
// item.ErrNotFound if the item does not exist.
func (c *Coordinator) DeleteItem(ctx context.Context, id string) (item.Item, error) {
	deleted, err := retry(ctx, c.log, "delete", c.opts.MutationRetries, c.opts.RetryBackoff, func() (item.Item, error) {
		return c.backend.Delete(ctx, id)
	})
	if err != nil {
		return item.Item{}, fmt.Errorf("delete item: %w", err)
	}

	c.afterMutation(ctx)
	return deleted, nil
}

// afterMutation invalidates the cache and refetches the current page. When
// the page ran empty (the last row of the last page was deleted) it steps
// back to the last page that still has rows. Fetch failures show up in the
// snapshot and do not fail the mutation.
func (c *Coordinator) afterMutation(ctx context.Context) {
	c.cache.InvalidateAll()

	page, err := c.Fetch(ctx)
	if err != nil {
		return
	}

	if len(page.Data) > 0 || page.Total == 0 {
		return
	}

	last := item.LastPage(page.Total, c.Snapshot().Query.PageSize)
	if err := c.SetPage(ctx, last); err != nil {
		c.log.Warn().Err(err).Int("page", last).Msg("step back to last page failed")
	}
}

func (c *Coordinator) updateQuery(fn func(q *item.Query)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	q := c.query
	fn(&q)
	if err := q.Validate(); err != nil {
		return err
	}
	c.query = q
	return nil
}

func (c *Coordinator) snapshotLocked() Snapshot {
	return Snapshot{
		Query:   c.query,
		Items:   c.items,
		Total:   c.total,
		Status:  c.status,
		Err:     c.err,
		Version: c.version,
	}.clone()
}

func (c *Coordinator) notify(snap Snapshot) {
	c.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap.clone())
	}
}
