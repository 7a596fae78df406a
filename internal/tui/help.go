package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# tabula

Browse, search and edit items page by page.

| Key | Action |
|-----|--------|
| ↑ ↓ / k j | move the cursor |
| ← → / h l | previous / next page |
| / | search titles (esc to leave, enter to apply now) |
| + - | cycle rows per page |
| a | add an item |
| e, enter | edit the selected item |
| space | toggle agreed |
| t | cycle the type |
| d | delete the selected item |
| r | retry after an error, otherwise refresh |
| ? | toggle this help |
| q | quit |

Search is applied once typing pauses, and always starts from the first page.
`

// renderHelp renders the help page for the given width. It falls back to the
// raw markdown if rendering fails.
func renderHelp(width int) string {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return helpMarkdown
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return strings.TrimRight(out, "\n")
}
