package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/notify"
)

// visibleColumns returns the columns matching the current filter.
func (m Model) visibleColumns() []columns.Column {
	return m.selector.Filter(m.columnFilter.Value())
}

// handleColumnsKey processes keyboard input for the column selector.
func (m Model) handleColumnsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.selector == nil {
		return m, nil
	}
	cols := m.visibleColumns()

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		cmd := m.columnFilter.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Escape):
		m.columnFilter.SetValue("")
		m.columnCursor = 0
	case key.Matches(msg, m.keys.ToggleAll):
		m.toggleVisible(cols)
	case key.Matches(msg, m.keys.OnlyProduct):
		m.quickColumns("product", productIDs...)
	case key.Matches(msg, m.keys.OnlyCompany):
		m.quickColumns("company", companyIDs...)
	case len(cols) == 0:
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.columnCursor < len(cols)-1 {
			m.columnCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.columnCursor > 0 {
			m.columnCursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.columnCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.columnCursor = len(cols) - 1
	case key.Matches(msg, m.keys.Toggle), key.Matches(msg, m.keys.Confirm):
		m.selector.Toggle(cols[min(m.columnCursor, len(cols)-1)].Name)
	}
	return m, nil
}

// toggleVisible checks every column in cols, or clears them all when they are
// already checked. Columns hidden by the filter keep their state.
func (m *Model) toggleVisible(cols []columns.Column) {
	if m.columnFilter.Value() == "" {
		if m.selector.SelectAllEnabled() {
			m.selector.SetAll(!m.selector.AllSelected())
		}
		return
	}
	on := false
	for _, c := range cols {
		if !m.selector.Checked(c.Name) {
			on = true
			break
		}
	}
	for _, c := range cols {
		m.selector.Set(c.Name, on)
	}
}

// Quick-search shortcuts, by control ID. Both spellings of the company
// columns occur in uploaded files.
var (
	productIDs = []string{"column-Product"}
	companyIDs = []string{
		"column-IndianCompany", "column-Indian-Company",
		"column-ForeignCompany", "column-Foreign-Company",
	}
)

// quickColumns checks exactly ids, warning when the file has none of them.
func (m *Model) quickColumns(what string, ids ...string) {
	if m.selector.CheckOnlyIDs(ids...) == 0 {
		m.toasts.Push(notify.Warning, "This file has no "+what+" column")
		return
	}
	m.columnFilter.SetValue("")
	m.columnCursor = 0
}

// handleColumnFilterKey edits the fuzzy filter. Enter keeps the filter,
// Escape clears it.
func (m Model) handleColumnFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		m.filtering = false
		m.columnFilter.Blur()
		return m, nil
	case "esc":
		m.filtering = false
		m.columnFilter.Blur()
		m.columnFilter.SetValue("")
		m.columnCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.columnFilter, cmd = m.columnFilter.Update(msg)
	m.columnCursor = 0
	return m, cmd
}

// renderColumns renders the column selector pane.
func (m Model) renderColumns() string {
	styles := m.theme.Styles()
	width := m.sideWidth() - 4
	height := m.columnsHeight()

	var lines []string
	title := "Columns"
	if m.selector != nil {
		title = fmt.Sprintf("Columns %d/%d", m.selector.CheckedCount(), m.selector.Len())
	}
	lines = append(lines, styles.AccentText.Bold(true).Render(title))

	if m.selector == nil || m.selector.Len() == 0 {
		lines = append(lines, styles.MutedText.Render("Select a file to choose columns"))
		return m.finishColumns(lines, height)
	}

	allBox := checkbox(m.selector.AllSelected())
	lines = append(lines, styles.MutedText.Render(allBox+" Select all (a)"))

	if m.filtering || m.columnFilter.Value() != "" {
		lines = append(lines, m.columnFilter.View())
	}

	cols := m.visibleColumns()
	if len(cols) == 0 {
		lines = append(lines, styles.FaintText.Render("No matching columns"))
		return m.finishColumns(lines, height)
	}

	rows := max(height-len(lines), 1)
	cursor := min(m.columnCursor, len(cols)-1)
	start, end := window(len(cols), cursor, rows)
	for i := start; i < end; i++ {
		c := cols[i]
		label := c.Label
		if c.Priority {
			label += " *"
		}
		line := format.PadRight(format.Truncate(checkbox(m.selector.Checked(c.Name))+" "+label, width), width)
		switch {
		case i == cursor && m.focus == paneColumns && !m.filtering:
			lines = append(lines, styles.Selected.Render(line))
		case m.selector.Checked(c.Name):
			lines = append(lines, styles.Text.Render(line))
		default:
			lines = append(lines, styles.MutedText.Render(line))
		}
	}
	return m.finishColumns(lines, height)
}

func (m Model) finishColumns(lines []string, height int) string {
	return m.paneStyle(paneColumns).
		Width(m.sideWidth() - 2).
		Height(height).
		MaxHeight(height + 2).
		Render(strings.Join(lines, "\n"))
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
