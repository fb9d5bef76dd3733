package ui

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/notify"
	"github.com/rowfinder/rowfinder/internal/pager"
	"github.com/rowfinder/rowfinder/internal/search"
)

// handleSearchDone applies a search or page response.
func (m Model) handleSearchDone(msg searchDoneMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, search.ErrStale) {
		return m, nil
	}
	m.searching = false

	if msg.err != nil {
		m.banner = search.ErrorBanner(msg.err)
		var vErr *search.ValidationError
		if errors.As(msg.err, &vErr) {
			m.toasts.Push(notify.Warning, vErr.Message)
		} else {
			log.Printf("search failed: %v", msg.err)
			m.toasts.Push(notify.Error, "Error performing search")
		}
		m.renderResults()
		return m, nil
	}

	m.outcome = msg.outcome
	m.banner = msg.outcome.Banner
	m.cards = search.BuildCards(msg.outcome.Page.Results, msg.outcome.Params.Terms)
	m.cardCursor = 0
	m.pagerCursor = currentControl(msg.outcome.Pagination)
	m.renderResults()
	m.results.GotoTop()
	return m, nil
}

// handleResultsKey processes keyboard input for the results pane.
func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	controls := m.outcome.Pagination
	page := m.outcome.Page

	switch {
	case key.Matches(msg, m.keys.Down):
		m.results.LineDown(1)
	case key.Matches(msg, m.keys.Up):
		m.results.LineUp(1)
	case key.Matches(msg, m.keys.Top):
		m.results.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.results.GotoBottom()
	case key.Matches(msg, m.keys.NextPage):
		if page.Page < page.TotalPages {
			return m.goToPage(page.Page + 1)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if page.Page > 1 {
			return m.goToPage(page.Page - 1)
		}
	case key.Matches(msg, m.keys.Left):
		m.pagerCursor = stepControl(controls, m.pagerCursor, -1)
	case key.Matches(msg, m.keys.Right):
		m.pagerCursor = stepControl(controls, m.pagerCursor, 1)
	case key.Matches(msg, m.keys.Confirm):
		if m.pagerCursor >= 0 && m.pagerCursor < len(controls) && controls[m.pagerCursor].Selectable() {
			return m.goToPage(controls[m.pagerCursor].Target)
		}
	case key.Matches(msg, m.keys.NextCard):
		if m.cardCursor < len(m.cards)-1 {
			m.cardCursor++
			m.renderResults()
			m.scrollToCard()
		}
	case key.Matches(msg, m.keys.PrevCard):
		if m.cardCursor > 0 {
			m.cardCursor--
			m.renderResults()
			m.scrollToCard()
		}
	case key.Matches(msg, m.keys.Copy):
		if m.cardCursor < len(m.cards) {
			card := m.cards[m.cardCursor]
			return m, copyCmd(card.TitleText(), cardText(card))
		}
	case key.Matches(msg, m.keys.Export):
		if len(m.outcome.Page.Results) == 0 {
			m.toasts.Push(notify.Warning, "Nothing to save; run a search first")
			return m, nil
		}
		m.export.open(m.outcome.Page.Page)
		m.overlay = overlayExport
		cmd := m.export.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) goToPage(page int) (tea.Model, tea.Cmd) {
	m.searching = true
	return m, pageCmd(m.ctx, m.coordinator, page)
}

// renderResults rebuilds the viewport content from the current cards.
func (m *Model) renderResults() {
	styles := m.theme.Styles()
	width := m.results.Width

	var b strings.Builder
	m.cardOffsets = m.cardOffsets[:0]
	line := 0
	for i, card := range m.cards {
		m.cardOffsets = append(m.cardOffsets, line)
		text := m.renderCard(card, i == m.cardCursor, width, styles)
		b.WriteString(text)
		b.WriteString("\n\n")
		line += lipgloss.Height(text) + 1
	}
	m.results.SetContent(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) scrollToCard() {
	if m.cardCursor >= len(m.cardOffsets) {
		return
	}
	off := m.cardOffsets[m.cardCursor]
	if off < m.results.YOffset || off >= m.results.YOffset+m.results.Height {
		m.results.SetYOffset(off)
	}
}

func (m Model) renderCard(card search.Card, selected bool, width int, styles Styles) string {
	var lines []string

	title := styles.Text.Bold(true)
	if !card.HasTitle {
		title = styles.MutedText.Italic(true)
	}
	marker := "  "
	if selected {
		marker = styles.AccentText.Render("▍ ")
	}
	lines = append(lines, marker+renderSegments(card.Title, title, styles.Match))

	for _, c := range card.Companies {
		lines = append(lines, "  "+styles.MutedText.Render(c.Label+": ")+renderSegments(c.Parts, styles.Text, styles.Match))
	}

	for _, g := range card.Groups {
		lines = append(lines, "  "+styles.AccentText.Render(g.Name))
		for _, f := range g.Fields {
			label := styles.MutedText.Render("    " + f.Column + ": ")
			value := renderSegments(f.Parts, styles.Text, styles.Match)
			lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(label+value))
		}
	}
	return strings.Join(lines, "\n")
}

// renderResultsPane renders the summary, dropdown, cards and pager.
func (m Model) renderResultsPane() string {
	styles := m.theme.Styles()
	width := m.mainWidth() - 4

	var summary string
	switch {
	case m.searching:
		summary = m.spinner.View() + styles.MutedText.Render(" Searching...")
	case !m.banner.IsZero():
		summary = styles.LevelStyle(m.banner.Level).Render(format.Truncate(m.banner.Message, width))
	case len(m.cards) > 0:
		p := m.outcome.Page
		summary = styles.Text.Render(fmt.Sprintf("Found %s", format.Plural(int(p.TotalCount), "result", "results")))
		if p.TotalPages > 1 {
			summary += styles.MutedText.Render(fmt.Sprintf("  ·  page %d of %d", p.Page, p.TotalPages))
		}
	case !m.snapshot.HasSelection():
		summary = styles.MutedText.Render("Select a file, pick columns and enter search terms")
	default:
		summary = styles.MutedText.Render("Enter search terms and press enter")
	}

	body := m.results.View()
	if dropdown := m.renderSuggestions(width); dropdown != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, dropdown, body)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		summary,
		lipgloss.NewStyle().Height(m.results.Height).MaxHeight(m.results.Height).Render(body),
		m.renderPager(),
	)
	return m.paneStyle(paneResults).Width(m.mainWidth() - 2).Render(content)
}

// renderPager renders the page controls, or an empty line.
func (m Model) renderPager() string {
	styles := m.theme.Styles()
	controls := m.outcome.Pagination
	if len(controls) == 0 {
		return ""
	}
	parts := make([]string, 0, len(controls))
	for i, c := range controls {
		label := " " + c.Label() + " "
		switch {
		case i == m.pagerCursor && m.focus == paneResults:
			parts = append(parts, styles.Selected.Render(label))
		case c.Current:
			parts = append(parts, styles.AccentText.Bold(true).Render(label))
		case c.Disabled || c.Kind == pager.Ellipsis:
			parts = append(parts, styles.FaintText.Render(label))
		default:
			parts = append(parts, styles.Text.Render(label))
		}
	}
	return strings.Join(parts, "")
}

// currentControl returns the index of the current page control or -1.
func currentControl(controls []pager.Control) int {
	for i, c := range controls {
		if c.Current {
			return i
		}
	}
	return -1
}

// stepControl moves from i by dir to the next control that is not an
// ellipsis, staying put at either end.
func stepControl(controls []pager.Control, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(controls); j += dir {
		if controls[j].Kind != pager.Ellipsis {
			return j
		}
	}
	return i
}

// cardText renders a card as plain text for the clipboard.
func cardText(card search.Card) string {
	var b strings.Builder
	b.WriteString(card.TitleText())
	b.WriteString("\n")
	for _, c := range card.Companies {
		fmt.Fprintf(&b, "%s: %s\n", c.Label, format.Plain(c.Parts))
	}
	for _, g := range card.Groups {
		fmt.Fprintf(&b, "\n%s\n", g.Name)
		for _, f := range g.Fields {
			fmt.Fprintf(&b, "  %s: %s\n", f.Column, f.Value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
