package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/styles"
	"github.com/hay-kot/tabula/internal/table"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateSearching
	stateEditing
	stateConfirming
	stateHelp
)

// Key constants for event handling.
const (
	keyEnter = "enter"
	keyEsc   = "esc"
	keyCtrlC = "ctrl+c"
)

// chromeHeight is the number of lines around the table: banner (4) + search
// (2) + table header (2) + status (1) + pager (1) + help (1).
const chromeHeight = 11

// Options configures the TUI behavior.
type Options struct {
	// PageSizes are cycled with +/-. Defaults to 5, 10, 25, 50.
	PageSizes []int
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	coord       *table.Coordinator
	updates     <-chan table.Snapshot
	unsubscribe func()

	keys    keyMap
	table   btable.Model
	search  textinput.Model
	spinner spinner.Model
	pager   paginator.Model
	help    help.Model

	state         UIState
	snap          table.Snapshot
	form          *ItemForm
	modal         Modal
	pendingDelete item.Item
	pageSizes     []int
	helpView      string

	notice    string
	noticeSeq int
	opErr     error

	width    int
	height   int
	quitting bool
}

// New creates a new TUI model bound to coord. Call Close once the program
// exits to drop the coordinator subscription.
func New(coord *table.Coordinator, opts Options) Model {
	pageSizes := slices.Clone(opts.PageSizes)
	if len(pageSizes) == 0 {
		pageSizes = []int{5, 10, 25, 50}
	}
	slices.Sort(pageSizes)

	t := btable.New(
		btable.WithColumns(columns(80)),
		btable.WithFocused(true),
		btable.WithHeight(10),
	)
	ts := btable.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorGray).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(styles.ColorBg).
		Background(styles.ColorBlue).
		Bold(false)
	t.SetStyles(ts)

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.PromptStyle = searchPromptStyle
	ti.Placeholder = "type to filter titles"
	ti.CharLimit = 120

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	p := paginator.New()
	p.Type = paginator.Dots
	p.ActiveDot = lipgloss.NewStyle().Foreground(styles.ColorBlue).Render(iconDot)
	p.InactiveDot = lipgloss.NewStyle().Foreground(styles.ColorGray).Render(iconDot)

	h := help.New()
	helpStyle := lipgloss.NewStyle().Foreground(styles.ColorGray)
	h.Styles.ShortKey = helpStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	h.ShortSeparator = " " + iconDot + " "

	updates, unsubscribe := subscribe(coord)

	m := Model{
		coord:       coord,
		updates:     updates,
		unsubscribe: unsubscribe,
		keys:        defaultKeyMap(),
		table:       t,
		search:      ti,
		spinner:     s,
		pager:       p,
		help:        h,
		state:       stateNormal,
		pageSizes:   pageSizes,
	}
	m.applySnapshot(coord.Snapshot())
	return m
}

// Close drops the coordinator subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init starts the snapshot listener and loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		listenForSnapshots(m.updates),
		m.spinner.Tick,
		runFetch("load", func(ctx context.Context) error {
			_, err := m.coord.Fetch(ctx)
			return err
		}),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, listenForSnapshots(m.updates)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Route all other messages to the form while editing
	if m.state == stateEditing && m.form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// applySnapshot renders s unless a newer snapshot was already applied.
func (m *Model) applySnapshot(s table.Snapshot) {
	if s.Version < m.snap.Version {
		return
	}
	m.snap = s

	offset := s.Query.Offset()
	rows := make([]btable.Row, len(s.Items))
	for i, it := range s.Items {
		agreed := ""
		if it.Agreed {
			agreed = agreedStyle.Render(iconCheck)
		}
		rows[i] = btable.Row{strconv.Itoa(offset + i + 1), it.Title, agreed, string(it.Type)}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}

	m.pager.PerPage = max(s.Query.PageSize, 1)
	m.pager.TotalPages = 1
	m.pager.SetTotalPages(s.Total)
	m.pager.Page = min(s.Query.Page, max(m.pager.TotalPages-1, 0))
}

func (m *Model) resize() {
	m.table.SetColumns(columns(m.width))
	m.table.SetWidth(m.width)
	m.table.SetHeight(max(m.height-chromeHeight, 3))
	m.search.Width = max(m.width-12, 10)
	m.help.Width = m.width
}

func columns(width int) []btable.Column {
	const (
		numW    = 5
		agreedW = 6
		typeW   = 8
		padding = 2 * 4
	)
	titleW := max(width-numW-agreedW-typeW-padding-2, 10)
	return []btable.Column{
		{Title: "#", Width: numW},
		{Title: "Title", Width: titleW},
		{Title: "Agreed", Width: agreedW},
		{Title: "Type", Width: typeW},
	}
}

func (m Model) selectedItem() (item.Item, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.snap.Items) {
		return item.Item{}, false
	}
	return m.snap.Items[idx], true
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// fetch failures are shown from the snapshot status
		if msg.op == "load" || msg.op == "page" || msg.op == "refresh" {
			if !errors.Is(msg.err, item.ErrValidation) {
				return m, nil
			}
		}
		m.opErr = msg.err
		return m, nil
	}

	m.opErr = nil
	switch msg.op {
	case "add":
		return m.setNotice(fmt.Sprintf("Added %q", msg.item.Title))
	case "update":
		return m.setNotice(fmt.Sprintf("Saved %q", msg.item.Title))
	case "delete":
		return m.setNotice(fmt.Sprintf("Deleted %q", msg.item.Title))
	}
	return m, nil
}

func (m Model) setNotice(text string) (tea.Model, tea.Cmd) {
	m.noticeSeq++
	m.notice = text
	return m, scheduleClearNotice(m.noticeSeq)
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch m.state {
	case stateEditing:
		return m.handleFormKey(msg, keyStr)
	case stateConfirming:
		return m.handleConfirmModalKey(keyStr)
	case stateHelp:
		return m.handleHelpKey(keyStr)
	case stateSearching:
		return m.handleSearchKey(msg, keyStr)
	}
	return m.handleNormalKey(msg, keyStr)
}

// handleFormKey handles keys when the add/edit form is shown.
func (m Model) handleFormKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case keyEsc:
		m.state = stateNormal
		m.form = nil
		return m, nil
	}
	return m.updateForm(msg)
}

// updateForm routes any message to the form and handles completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.form.Form().Update(msg)
	if f, ok := model.(*huh.Form); ok {
		m.form.form = f
	}

	switch m.form.Form().State {
	case huh.StateCompleted:
		form := m.form
		m.state = stateNormal
		m.form = nil
		return m, m.submitForm(form)
	case huh.StateAborted:
		m.state = stateNormal
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m Model) submitForm(f *ItemForm) tea.Cmd {
	if f.IsNew() {
		it := f.Item()
		return runOp("add", func(ctx context.Context) (item.Item, error) {
			return m.coord.AddItem(ctx, it)
		})
	}

	patch := f.Patch()
	if patch.IsEmpty() {
		return nil
	}
	id := f.ID()
	return runOp("update", func(ctx context.Context) (item.Item, error) {
		return m.coord.UpdateItem(ctx, id, patch)
	})
}

// handleConfirmModalKey handles keys when the delete confirmation is shown.
func (m Model) handleConfirmModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case keyEnter:
		m.state = stateNormal
		target := m.pendingDelete
		m.pendingDelete = item.Item{}
		if !m.modal.ConfirmSelected() {
			return m, nil
		}
		return m, runOp("delete", func(ctx context.Context) (item.Item, error) {
			return m.coord.DeleteItem(ctx, target.ID)
		})
	case keyEsc, "n":
		m.state = stateNormal
		m.pendingDelete = item.Item{}
		return m, nil
	case "left", "right", "h", "l", "tab":
		m.modal.ToggleSelection()
		return m, nil
	}
	return m, nil
}

func (m Model) handleHelpKey(keyStr string) (tea.Model, tea.Cmd) {
	if keyStr == keyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	m.state = stateNormal
	return m, nil
}

// handleSearchKey feeds the search box. Every edit is debounced by the
// coordinator; enter applies the pending search at once.
func (m Model) handleSearchKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case keyEsc:
		m.state = stateNormal
		m.search.Blur()
		return m, nil
	case keyEnter:
		m.state = stateNormal
		m.search.Blur()
		coord := m.coord
		return m, func() tea.Msg {
			coord.FlushSearch()
			return nil
		}
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.coord.SetSearch(after)
	}
	return m, cmd
}

// handleNormalKey handles keys in normal state.
func (m Model) handleNormalKey(msg tea.KeyMsg, keyStr string) (tea.Model, tea.Cmd) {
	m.opErr = nil
	q := m.snap.Query

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.helpView = renderHelp(m.width)
		m.state = stateHelp
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.state = stateSearching
		cmd := m.search.Focus()
		return m, cmd

	case keyStr == keyEsc && m.search.Value() != "":
		m.search.SetValue("")
		return m, runFetch("page", func(ctx context.Context) error {
			return m.coord.ApplySearch(ctx, "")
		})

	case key.Matches(msg, m.keys.PrevPage):
		if !m.snap.HasPrev() {
			return m, nil
		}
		return m, m.setPage(q.Page - 1)

	case key.Matches(msg, m.keys.NextPage):
		if !m.snap.HasNext() {
			return m, nil
		}
		return m, m.setPage(q.Page + 1)

	case key.Matches(msg, m.keys.Smaller), key.Matches(msg, m.keys.Larger):
		dir := 1
		if key.Matches(msg, m.keys.Smaller) {
			dir = -1
		}
		size := nextPageSize(m.pageSizes, q.PageSize, dir)
		if size == q.PageSize {
			return m, nil
		}
		return m, runFetch("page", func(ctx context.Context) error {
			return m.coord.SetPageSize(ctx, size)
		})

	case key.Matches(msg, m.keys.Refresh):
		if m.snap.Status == table.StatusError {
			return m, runFetch("refresh", m.coord.Retry)
		}
		return m, runFetch("refresh", m.coord.Refresh)

	case key.Matches(msg, m.keys.Add):
		return m.openForm(item.Item{Title: fmt.Sprintf("New Item %d", m.snap.Total+1)})

	case key.Matches(msg, m.keys.Edit):
		if it, ok := m.selectedItem(); ok {
			return m.openForm(it)
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, runOp("update", func(ctx context.Context) (item.Item, error) {
			return m.coord.UpdateItem(ctx, it.ID, item.Patch{}.SetAgreed(!it.Agreed))
		})

	case key.Matches(msg, m.keys.Type):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		next := nextType(it.Type)
		return m, runOp("update", func(ctx context.Context) (item.Item, error) {
			return m.coord.UpdateItem(ctx, it.ID, item.Patch{}.SetType(next))
		})

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.pendingDelete = it
		m.modal = NewModal("Delete item", fmt.Sprintf("Delete %q? This cannot be undone.", it.Title))
		m.state = stateConfirming
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) setPage(n int) tea.Cmd {
	return runFetch("page", func(ctx context.Context) error {
		return m.coord.SetPage(ctx, n)
	})
}

func (m Model) openForm(it item.Item) (tea.Model, tea.Cmd) {
	m.form = NewItemForm(it)
	m.state = stateEditing
	cmd := m.form.Form().Init()
	return m, cmd
}

// nextPageSize returns the next size in sizes after current in direction
// dir, or current when there is none.
func nextPageSize(sizes []int, current, dir int) int {
	if dir > 0 {
		for _, s := range sizes {
			if s > current {
				return s
			}
		}
		return current
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] < current {
			return sizes[i]
		}
	}
	return current
}

func nextType(t item.Type) item.Type {
	i := slices.Index(item.Types, t)
	return item.Types[(i+1)%len(item.Types)]
}
