package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/table"
)

const (
	opTimeout     = 30 * time.Second
	noticeTimeout = 3 * time.Second
)

// snapshotMsg carries a coordinator state change into the update loop.
type snapshotMsg struct {
	snap table.Snapshot
}

// opDoneMsg reports the outcome of a coordinator call started by a key press.
type opDoneMsg struct {
	op   string
	item item.Item
	err  error
}

// clearNoticeMsg hides the status notice if it is still the one identified by seq.
type clearNoticeMsg struct {
	seq int
}

// subscribe registers a coordinator subscriber feeding a single-slot channel.
// When the model falls behind, older snapshots are dropped in favor of the
// latest one.
func subscribe(coord *table.Coordinator) (<-chan table.Snapshot, func()) {
	ch := make(chan table.Snapshot, 1)
	cancel := coord.Subscribe(func(s table.Snapshot) {
		for {
			select {
			case ch <- s:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	})
	return ch, cancel
}

// listenForSnapshots waits for the next snapshot. The update loop re-issues
// it after each message.
func listenForSnapshots(ch <-chan table.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{snap: snap}
	}
}

// runOp runs fn against the coordinator off the update loop.
func runOp(op string, fn func(ctx context.Context) (item.Item, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		it, err := fn(ctx)
		return opDoneMsg{op: op, item: it, err: err}
	}
}

// runFetch wraps a coordinator call that only changes state.
func runFetch(op string, fn func(ctx context.Context) error) tea.Cmd {
	return runOp(op, func(ctx context.Context) (item.Item, error) {
		return item.Item{}, fn(ctx)
	})
}

func scheduleClearNotice(seq int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}
