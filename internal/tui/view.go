package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/tabula/internal/printer"
	"github.com/hay-kot/tabula/internal/styles"
	"github.com/hay-kot/tabula/internal/table"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case stateHelp:
		return m.helpView + "\n\n" + statusStyle.Render("press any key to close")
	case stateEditing:
		if m.form != nil {
			return m.place(modalStyle.Render(m.form.View()))
		}
	case stateConfirming:
		return m.modal.Overlay(m.mainView(), m.width, m.height)
	}

	return m.mainView()
}

func (m Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) mainView() string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render(strings.TrimPrefix(styles.Banner, "\n")))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.pagerLine())
	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// statusLine shows, in order of priority: the fetch error banner, the
// loading spinner, the last mutation error, a notice, or an empty hint.
func (m Model) statusLine() string {
	switch {
	case m.snap.Status == table.StatusError:
		msg := "failed to load items"
		if m.snap.Err != nil {
			msg = m.snap.Err.Error()
		}
		return errorBannerStyle.Render(fmt.Sprintf("%s %s  press r to retry", "✘", msg))
	case m.snap.Status == table.StatusFetching:
		return statusStyle.Render(m.spinner.View() + " loading...")
	case m.opErr != nil:
		return errorBannerStyle.Render("✘ " + m.opErr.Error())
	case m.notice != "":
		return noticeStyle.Render(iconCheck + " " + m.notice)
	case len(m.snap.Items) == 0 && m.snap.Query.Search != "":
		return statusStyle.Render(fmt.Sprintf("No items match %q", m.snap.Query.Search))
	case len(m.snap.Items) == 0:
		return statusStyle.Render("No items")
	}
	return ""
}

func (m Model) pagerLine() string {
	summary := printer.PageSummary(m.snap.Query, m.snap.Total)
	perPage := fmt.Sprintf("%d per page", m.snap.Query.PageSize)
	return statusStyle.Render(m.pager.View() + "  " + summary + " " + iconDot + " " + perPage)
}
