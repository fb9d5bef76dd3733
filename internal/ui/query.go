package ui

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/notify"
	"github.com/rowfinder/rowfinder/internal/search"
	"github.com/rowfinder/rowfinder/internal/suggest"
)

// handleQueryKey processes keyboard input while the query input is focused.
func (m Model) handleQueryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		cmd := m.setFocus(paneResults)
		return m, cmd
	case "shift+tab":
		cmd := m.setFocus(paneColumns)
		return m, cmd
	case "esc":
		if m.suggestions.Visible() {
			m.suggestions.Escape()
			m.debounce.Cancel()
			return m, nil
		}
		cmd := m.setFocus(paneResults)
		return m, cmd
	case "down":
		m.suggestions.Down()
		return m, nil
	case "up":
		m.suggestions.Up()
		return m, nil
	case "enter":
		m.debounce.Cancel()
		if value, ok := m.suggestions.Enter(); ok {
			m.query.SetValue(value)
			m.query.CursorEnd()
			return m, nil
		}
		m.suggestions.Hide()
		cmd := m.startSearch()
		return m, cmd
	}

	before := m.query.Value()
	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	if m.query.Value() == before {
		return m, cmd
	}

	if !m.snapshot.HasSelection() || !suggest.Eligible(m.query.Value()) {
		m.debounce.Cancel()
		m.suggestions.Hide()
		return m, cmd
	}
	return m, tea.Batch(cmd, m.debounce.Tick())
}

// startSearch validates the form and dispatches page 1. Validation failures
// are shown without touching the network.
func (m *Model) startSearch() tea.Cmd {
	fields := m.selector.Selected()
	if _, _, err := m.coordinator.Validate(m.query.Value(), fields); err != nil {
		m.banner = search.ErrorBanner(err)
		m.toasts.Push(notify.Warning, m.banner.Message)
		m.renderResults()
		return nil
	}
	m.searching = true
	return searchCmd(m.ctx, m.coordinator, m.query.Value(), fields)
}

func (m Model) handleSuggestDue(msg suggest.DueMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Due(msg.Seq) || m.focus != paneQuery || !m.snapshot.HasSelection() {
		return m, nil
	}
	text := m.query.Value()
	if !suggest.Eligible(text) {
		m.suggestions.Hide()
		return m, nil
	}
	return m, suggestCmd(m.ctx, m.source, text)
}

// handleSuggestions shows a lookup result unless the input moved on.
func (m Model) handleSuggestions(msg suggestionsMsg) (tea.Model, tea.Cmd) {
	if msg.query != m.query.Value() || m.focus != paneQuery {
		return m, nil
	}
	if msg.err != nil {
		log.Printf("suggestions failed: %v", msg.err)
		m.suggestions.Hide()
		return m, nil
	}
	m.suggestions.Show(strings.TrimSpace(msg.query), msg.items)
	return m, nil
}

// renderQuery renders the query input pane.
func (m Model) renderQuery() string {
	return m.paneStyle(paneQuery).
		Width(m.mainWidth() - 2).
		MaxHeight(3).
		Render(m.query.View())
}

// renderSuggestions renders the dropdown, or "" when hidden.
func (m Model) renderSuggestions(width int) string {
	if !m.suggestions.Visible() {
		return ""
	}
	styles := m.theme.Styles()
	items := m.suggestions.Items()
	idx := m.suggestions.Index()
	start, end := window(len(items), max(idx, 0), SuggestionRows)

	var lines []string
	for i := start; i < end; i++ {
		it := items[i]
		base := styles.Text
		if i == idx {
			base = styles.Selected
		}
		text := renderSegments(it.Parts, base, styles.Match.Inherit(base))
		if it.Suggestion.Field != "" {
			text += base.Render(" ") + styles.MutedText.Inherit(base).Render("("+it.Suggestion.Field+")")
		}
		lines = append(lines, text)
	}
	return styles.Dropdown.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderSegments styles highlighted parts.
func renderSegments(parts []format.Segment, base, match lipgloss.Style) string {
	var b strings.Builder
	for _, p := range parts {
		text := format.Oneline(p.Text)
		if p.Match {
			b.WriteString(match.Render(text))
		} else {
			b.WriteString(base.Render(text))
		}
	}
	return b.String()
}
