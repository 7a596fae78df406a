package item

import (
	"fmt"
	"slices"
)

// Query identifies one paginated view. Two queries are equal iff all fields
// are equal, so Query can be used directly as a map key.
type Query struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Search   string `json:"search"`
}

func (q Query) String() string {
	return fmt.Sprintf("page=%d size=%d search=%q", q.Page, q.PageSize, q.Search)
}

// Offset is the index of the first item on the page.
func (q Query) Offset() int {
	return q.Page * q.PageSize
}

// Page is the result of a Query. Total counts every item matching the search,
// independent of pagination.
type Page struct {
	Data  []Item `json:"data"`
	Total int    `json:"total"`
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	return Page{Data: slices.Clone(p.Data), Total: p.Total}
}

// LastPage returns the index of the last page that holds items for the given
// page size, or 0 when there are none.
func LastPage(total, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return (total - 1) / pageSize
}

// Filter returns the items matching search, preserving order.
func Filter(items []Item, search string) []Item {
	if search == "" {
		return slices.Clone(items)
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Matches(search) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate slices items into the requested page. Out of range pages yield an
// empty slice rather than an error. Total is always len(items).
func Paginate(items []Item, page, pageSize int) ([]Item, int) {
	total := len(items)
	if pageSize < 1 {
		return []Item{}, total
	}
	page = max(page, 0)

	start := page * pageSize
	if start >= total {
		return []Item{}, total
	}
	end := min(start+pageSize, total)

	return slices.Clone(items[start:end]), total
}
