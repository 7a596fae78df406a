package table

import (
	"slices"

	"github.com/hay-kot/tabula/internal/core/item"
)

// Status is the fetch state of a coordinator.
type Status int

const (
	StatusIdle Status = iota
	StatusFetching
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFetching:
		return "fetching"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the coordinator state.
type Snapshot struct {
	Query  item.Query
	Items  []item.Item
	Total  int
	Status Status
	// Err is the failure of the latest fetch when Status is StatusError.
	Err error
	// Version increases with every state change. Observers can drop
	// snapshots older than one they already applied.
	Version uint64
}

// LastPage is the highest page index holding items at the current page size.
func (s Snapshot) LastPage() int {
	return item.LastPage(s.Total, s.Query.PageSize)
}

// HasNext reports whether a page after the current one holds items.
func (s Snapshot) HasNext() bool {
	return s.Query.Page < s.LastPage()
}

// HasPrev reports whether the current page is past the first.
func (s Snapshot) HasPrev() bool {
	return s.Query.Page > 0
}

func (s Snapshot) clone() Snapshot {
	s.Items = slices.Clone(s.Items)
	return s
}
