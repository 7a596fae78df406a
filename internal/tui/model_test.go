package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/tabula/internal/backend"
	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/devseed"
	"github.com/hay-kot/tabula/internal/store/memory"
	"github.com/hay-kot/tabula/internal/table"
)

func newTestModel(t *testing.T, n int, opts ...backend.Option) (Model, *table.Coordinator) {
	t.Helper()

	store := memory.New()
	require.NoError(t, store.Seed(devseed.Generate(n, devseed.NewRand(3))))

	coord, err := table.New(backend.NewLocal(store, zerolog.Nop(), opts...), zerolog.Nop(), table.Options{
		PageSize:     10,
		FetchRetries: 0,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(coord.Close)

	m := New(coord, Options{})
	t.Cleanup(m.Close)

	_, _ = coord.Fetch(context.Background())
	return update(t, m, snapshotMsg{snap: coord.Snapshot()}), coord
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_AppliesSnapshots(t *testing.T) {
	m, coord := newTestModel(t, 30)

	assert.Len(t, m.table.Rows(), 10)
	assert.Equal(t, "1", m.table.Rows()[0][0])
	assert.Equal(t, "Item 1", m.table.Rows()[0][1])
	assert.Equal(t, 3, m.pager.TotalPages)

	stale := coord.Snapshot()
	stale.Version = 0
	stale.Items = nil
	m = update(t, m, snapshotMsg{snap: stale})
	assert.Len(t, m.table.Rows(), 10, "older snapshots are ignored")
}

func TestModel_Paging(t *testing.T) {
	m, coord := newTestModel(t, 30)

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Nil(t, cmd, "no previous page on the first page")

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	done := cmd().(opDoneMsg)
	require.NoError(t, done.err)

	snap := coord.Snapshot()
	assert.Equal(t, 1, snap.Query.Page)

	m = update(t, m, snapshotMsg{snap: snap})
	assert.Equal(t, "11", m.table.Rows()[0][0])
	assert.Equal(t, 1, m.pager.Page)
}

func TestModel_PageSizeCycle(t *testing.T) {
	m, coord := newTestModel(t, 30)

	_, cmd := press(t, m, runes("+"))
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(opDoneMsg).err)
	assert.Equal(t, 25, coord.Snapshot().Query.PageSize)

	m = update(t, m, snapshotMsg{snap: coord.Snapshot()})
	_, cmd = press(t, m, runes("-"))
	require.NotNil(t, cmd)
	require.NoError(t, cmd().(opDoneMsg).err)
	assert.Equal(t, 10, coord.Snapshot().Query.PageSize)
}

func TestModel_Search(t *testing.T) {
	m, coord := newTestModel(t, 30)

	m, _ = press(t, m, runes("/"))
	require.Equal(t, stateSearching, m.state)

	m, _ = press(t, m, runes("Item 2"))
	assert.Equal(t, "Item 2", m.search.Value())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateNormal, m.state)
	require.NotNil(t, cmd)
	cmd()

	snap := coord.Snapshot()
	assert.Equal(t, "Item 2", snap.Query.Search)
	assert.Equal(t, 11, snap.Total) // Item 2, Item 20-29
}

func TestModel_ToggleAgreed(t *testing.T) {
	m, coord := newTestModel(t, 5)
	before := m.snap.Items[0]

	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	done := cmd().(opDoneMsg)
	require.NoError(t, done.err)

	assert.Equal(t, !before.Agreed, coord.Snapshot().Items[0].Agreed)
	assert.Equal(t, before.Title, coord.Snapshot().Items[0].Title)
}

func TestModel_DeleteFlow(t *testing.T) {
	m, coord := newTestModel(t, 5)
	target := m.snap.Items[0]

	m, _ = press(t, m, runes("d"))
	require.Equal(t, stateConfirming, m.state)
	assert.Equal(t, target.ID, m.pendingDelete.ID)
	assert.Contains(t, m.View(), "Delete item")

	t.Run("enter on cancel keeps the item", func(t *testing.T) {
		m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
		assert.Equal(t, stateNormal, m.state)
	})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	require.True(t, m.modal.ConfirmSelected())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	done := cmd().(opDoneMsg)
	require.NoError(t, done.err)
	assert.Equal(t, "delete", done.op)
	assert.Equal(t, 4, coord.Snapshot().Total)

	next, _ := m.Update(done)
	assert.Contains(t, next.(Model).notice, "Deleted")
}

func TestModel_ErrorBanner(t *testing.T) {
	m, _ := newTestModel(t, 5, backend.WithFaults(backend.Faults{Rate: 1}))

	assert.Equal(t, table.StatusError, m.snap.Status)
	assert.Contains(t, m.View(), "press r to retry")
}

func TestModel_AddOpensForm(t *testing.T) {
	m, _ := newTestModel(t, 5)

	m, _ = press(t, m, runes("a"))
	require.Equal(t, stateEditing, m.state)
	require.NotNil(t, m.form)
	assert.True(t, m.form.IsNew())
	assert.Equal(t, "New Item 6", m.form.Item().Title)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.form)
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t, 5)

	m, _ = press(t, m, runes("?"))
	require.Equal(t, stateHelp, m.state)
	assert.NotEmpty(t, m.helpView)

	m, _ = press(t, m, runes("x"))
	assert.Equal(t, stateNormal, m.state)
}

func TestNextPageSize(t *testing.T) {
	sizes := []int{5, 10, 25, 50}

	tests := []struct {
		current, dir, want int
	}{
		{10, 1, 25},
		{10, -1, 5},
		{50, 1, 50},
		{5, -1, 5},
		{20, 1, 25},
		{20, -1, 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPageSize(sizes, tt.current, tt.dir), "current=%d dir=%d", tt.current, tt.dir)
	}
}

func TestNextType(t *testing.T) {
	assert.Equal(t, item.TypeB, nextType(item.TypeA))
	assert.Equal(t, item.TypeC, nextType(item.TypeB))
	assert.Equal(t, item.TypeA, nextType(item.TypeC))
}
