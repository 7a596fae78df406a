package backend

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/devseed"
	"github.com/hay-kot/tabula/internal/store/memory"
)

func newLocal(t *testing.T, n int, opts ...Option) *Local {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Seed(devseed.Generate(n, devseed.NewRand(1))))
	return NewLocal(store, zerolog.Nop(), opts...)
}

func TestLocal_FetchScenario(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, 100)

	tests := []struct {
		page    int
		wantLen int
	}{
		{page: 0, wantLen: 10},
		{page: 9, wantLen: 10},
		{page: 10, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			got, err := l.Fetch(ctx, item.Query{Page: tt.page, PageSize: 10})
			require.NoError(t, err)
			assert.Len(t, got.Data, tt.wantLen)
			assert.Equal(t, 100, got.Total)
		})
	}
}

func TestLocal_FetchSearch(t *testing.T) {
	l := newLocal(t, 100)

	got, err := l.Fetch(context.Background(), item.Query{PageSize: 20, Search: "Item 5"})
	require.NoError(t, err)
	assert.Equal(t, 11, got.Total)
	assert.Len(t, got.Data, 11)
}

func TestLocal_FetchValidation(t *testing.T) {
	l := newLocal(t, 1)

	_, err := l.Fetch(context.Background(), item.Query{Page: 0, PageSize: 0})
	assert.ErrorIs(t, err, item.ErrValidation)

	_, err = l.Fetch(context.Background(), item.Query{Page: -1, PageSize: 10})
	assert.ErrorIs(t, err, item.ErrValidation)
}

func TestLocal_Mutations(t *testing.T) {
	ctx := context.Background()
	l := newLocal(t, 5)

	added, err := l.Add(ctx, item.Item{Title: " New Item 6 "})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "New Item 6", added.Title)
	assert.Equal(t, item.TypeA, added.Type)

	updated, err := l.Update(ctx, added.ID, item.Patch{}.SetAgreed(true))
	require.NoError(t, err)
	assert.True(t, updated.Agreed)
	assert.Equal(t, "New Item 6", updated.Title)

	_, err = l.Update(ctx, added.ID, item.Patch{}.SetTitle("  "))
	assert.ErrorIs(t, err, item.ErrValidation)

	deleted, err := l.Delete(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, deleted.ID)

	_, err = l.Delete(ctx, added.ID)
	assert.ErrorIs(t, err, item.ErrNotFound)

	_, err = l.Add(ctx, item.Item{Title: "x", Type: "Type Q"})
	assert.ErrorIs(t, err, item.ErrValidation)
}

func TestLocal_FailureInjection(t *testing.T) {
	ctx := context.Background()

	always := newLocal(t, 3, WithFaults(Faults{Rate: 1}))
	_, err := always.Fetch(ctx, item.Query{PageSize: 10})
	assert.ErrorIs(t, err, item.ErrTransient)

	// failed mutations must not touch the store
	_, err = always.Add(ctx, item.Item{Title: "nope"})
	assert.ErrorIs(t, err, item.ErrTransient)
	assert.Equal(t, 3, always.Store().Len())

	never := newLocal(t, 3, WithFaults(Faults{Rate: 0}), WithRand(rand.New(rand.NewPCG(1, 2))))
	_, err = never.Fetch(ctx, item.Query{PageSize: 10})
	assert.NoError(t, err)
}

func TestLocal_LatencyRespectsContext(t *testing.T) {
	l := newLocal(t, 1, WithFaults(Faults{Latency: time.Hour}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.Fetch(ctx, item.Query{PageSize: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestParseFaults(t *testing.T) {
	tests := []struct {
		in      string
		want    Faults
		wantErr bool
	}{
		{in: "", want: Faults{}},
		{in: "rate=0.25", want: Faults{Rate: 0.25}},
		{in: "rate=0.5, code=502", want: Faults{Rate: 0.5, Code: 502}},
		{in: "rate=2", wantErr: true},
		{in: "rate=-0.1", wantErr: true},
		{in: "rate=NaN", wantErr: true},
		{in: "rate=Inf", wantErr: true},
		{in: "code=404", wantErr: true},
		{in: "speed=1", wantErr: true},
		{in: "rate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFaults(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, 503, Faults{}.StatusCode())
	assert.Equal(t, 502, Faults{Code: 502}.StatusCode())
}
