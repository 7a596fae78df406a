package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hay-kot/tabula/internal/core/item"
)

// WriteItems renders items as an aligned table with a header row.
func WriteItems(w io.Writer, items []item.Item) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tAGREED\tTYPE")
	for _, it := range items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Title, yesNo(it.Agreed), it.Type)
	}
	return tw.Flush()
}

// WriteItem renders a single item as key/value lines.
func WriteItem(w io.Writer, it item.Item) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "id\t%s\n", it.ID)
	_, _ = fmt.Fprintf(tw, "title\t%s\n", it.Title)
	_, _ = fmt.Fprintf(tw, "agreed\t%s\n", yesNo(it.Agreed))
	_, _ = fmt.Fprintf(tw, "type\t%s\n", it.Type)
	return tw.Flush()
}

// PageSummary describes where q sits within total results, e.g.
// "page 2 of 10 (100 items)".
func PageSummary(q item.Query, total int) string {
	pages := item.LastPage(total, q.PageSize) + 1
	if total == 0 {
		pages = 1
	}
	noun := "items"
	if total == 1 {
		noun = "item"
	}
	s := fmt.Sprintf("page %d of %d (%d %s)", q.Page+1, pages, total, noun)
	if q.Search != "" {
		s += fmt.Sprintf(" matching %q", q.Search)
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
