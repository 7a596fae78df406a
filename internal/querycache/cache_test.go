package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New(8)
	require.NoError(t, err)
	return c
}

func pageOf(titles ...string) item.Page {
	p := item.Page{Total: len(titles)}
	for _, title := range titles {
		p.Data = append(p.Data, item.Item{ID: title, Title: title, Type: item.TypeA})
	}
	return p
}

func TestCache_GetSet(t *testing.T) {
	c := newCache(t)
	q := item.Query{Page: 0, PageSize: 10}

	_, ok := c.Get(q)
	assert.False(t, ok)

	c.Set(q, pageOf("a", "b"))
	got, ok := c.Get(q)
	require.True(t, ok)
	assert.Equal(t, pageOf("a", "b"), got)

	// keys differ on any field
	_, ok = c.Get(item.Query{Page: 0, PageSize: 10, Search: "a"})
	assert.False(t, ok)
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := newCache(t)
	q := item.Query{PageSize: 5}
	c.Set(q, pageOf("a"))

	got, _ := c.Get(q)
	got.Data[0].Title = "changed"

	again, _ := c.Get(q)
	assert.Equal(t, "a", again.Data[0].Title)
}

func TestCache_Do(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	q := item.Query{PageSize: 10}

	calls := 0
	load := func(context.Context) (item.Page, error) {
		calls++
		return pageOf("x"), nil
	}

	first, hit, err := c.Do(ctx, q, load)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.Do(ctx, q, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestCache_DoErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	q := item.Query{PageSize: 10}
	boom := errors.New("boom")

	_, _, err := c.Do(ctx, q, func(context.Context) (item.Page, error) {
		return item.Page{}, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestCache_InvalidateAll(t *testing.T) {
	c := newCache(t)
	c.Set(item.Query{PageSize: 1}, pageOf("a"))
	c.Set(item.Query{PageSize: 2}, pageOf("b"))

	c.InvalidateAll()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(1), c.Stats().Invalidations)
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	q := item.Query{PageSize: 10}

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		page, _, err := c.Do(ctx, q, func(context.Context) (item.Page, error) {
			close(started)
			<-release
			return pageOf("stale"), nil
		})
		assert.NoError(t, err)
		assert.Equal(t, "stale", page.Data[0].Title, "caller still gets its result")
	}()

	<-started
	c.InvalidateAll()
	close(release)
	<-done

	_, ok := c.Get(q)
	assert.False(t, ok, "pre-invalidation load must not be cached")
}

func TestCache_CoalescesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	q := item.Query{PageSize: 10}

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (item.Page, error) {
		calls.Add(1)
		<-release
		return pageOf("x"), nil
	}

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Do(ctx, q, load)
			assert.NoError(t, err)
		}()
	}

	// give the goroutines time to join the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	_, ok := c.Get(q)
	assert.True(t, ok)
}

func TestNew_DefaultSize(t *testing.T) {
	c, err := New(0)
	require.NoError(t, err)
	for i := range DefaultSize + 10 {
		c.Set(item.Query{Page: i, PageSize: 1}, pageOf("a"))
	}
	assert.Equal(t, DefaultSize, c.Len())
}

func TestCache_InvalidateRacingWriteBack(t *testing.T) {
	ctx := context.Background()
	c := newCache(t)
	q := item.Query{PageSize: 10}

	// version stands in for the store; pages carry the version they read
	var version atomic.Int64
	load := func(context.Context) (item.Page, error) {
		return item.Page{Total: int(version.Load())}, nil
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_, _, err := c.Do(ctx, q, load)
				assert.NoError(t, err)
			}
		}()
	}

	stale := 0
	for range 5000 {
		v := version.Add(1)
		c.InvalidateAll()
		if page, ok := c.Get(q); ok && int64(page.Total) < v {
			stale++
		}
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, stale, "a page read before an invalidation was served after it")
	if page, ok := c.Get(q); ok {
		assert.Equal(t, int(version.Load()), page.Total)
	}
}

func TestCache_SharedLoadOutlivesCanceledCaller(t *testing.T) {
	c, err := New(8, WithLoadTimeout(time.Second))
	require.NoError(t, err)
	q := item.Query{PageSize: 10}

	started := make(chan struct{})
	release := make(chan struct{})
	var loadErr atomic.Value
	load := func(ctx context.Context) (item.Page, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			loadErr.Store(ctx.Err())
			return item.Page{}, ctx.Err()
		}
		return pageOf("shared"), nil
	}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstDone := make(chan error, 1)
	go func() {
		_, _, err := c.Do(firstCtx, q, load)
		firstDone <- err
	}()
	<-started

	secondDone := make(chan item.Page, 1)
	go func() {
		page, _, err := c.Do(context.Background(), q, load)
		assert.NoError(t, err)
		secondDone <- page
	}()

	// let the second caller join the in-flight load
	time.Sleep(50 * time.Millisecond)
	cancelFirst()
	require.ErrorIs(t, <-firstDone, context.Canceled, "the canceled caller returns at once")

	close(release)
	page := <-secondDone
	assert.Equal(t, "shared", page.Data[0].Title)
	assert.Nil(t, loadErr.Load(), "the shared load was not canceled")

	_, ok := c.Get(q)
	assert.True(t, ok)
}

func TestCache_LoadTimeout(t *testing.T) {
	c, err := New(8, WithLoadTimeout(20*time.Millisecond))
	require.NoError(t, err)

	_, _, err = c.Do(context.Background(), item.Query{PageSize: 1}, func(ctx context.Context) (item.Page, error) {
		<-ctx.Done()
		return item.Page{}, ctx.Err()
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
