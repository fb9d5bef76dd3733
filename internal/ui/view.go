package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/format"
)

// Fixed chrome: header, upload strip, toast row and help line.
const chromeHeight = 4

// compactPaneHeight is the inner height of each side pane when stacked.
const compactPaneHeight = 4

func (m Model) compact() bool {
	return m.width < LayoutCompactWidth
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight, 8)
}

func (m Model) sideWidth() int {
	if m.compact() {
		return m.width
	}
	return SidebarWidth
}

func (m Model) mainWidth() int {
	if m.compact() {
		return m.width
	}
	return max(m.width-SidebarWidth, 20)
}

// filesHeight and columnsHeight are inner heights, without borders.
func (m Model) filesHeight() int {
	if m.compact() {
		return compactPaneHeight
	}
	return max(m.bodyHeight()/2-2, 3)
}

func (m Model) columnsHeight() int {
	if m.compact() {
		return compactPaneHeight
	}
	return max(m.bodyHeight()-m.bodyHeight()/2-2, 3)
}

// resultsSize returns the viewport size inside the results pane.
func (m Model) resultsSize() (int, int) {
	h := m.bodyHeight()
	if m.compact() {
		h -= 2 * (compactPaneHeight + 2)
	}
	// query pane, results borders, summary line, pager line
	h -= 3 + 2 + 1 + 1
	return max(m.mainWidth()-4, 10), max(h, 3)
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	styles := m.theme.Styles()
	if m.focus == p {
		return styles.PaneFocused
	}
	return styles.Pane
}

// renderHeader renders the top line: logo, backend and selected file.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{
		styles.Logo.Render("rowfinder"),
		styles.MutedText.Render(m.config.APIURL),
	}
	if m.snapshot.HasSelection() {
		parts = append(parts, styles.AccentText.Render("● "+format.Oneline(m.snapshot.SelectedName)))
	} else {
		parts = append(parts, styles.FaintText.Render("no file selected"))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, styles.DangerText.Render("offline"))
	}

	line := strings.Join(parts, styles.FaintText.Render("  │  "))
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(line)
}

// renderFooter renders the toast row and the short help line.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()

	var toasts []string
	for _, t := range m.toasts.Active() {
		toasts = append(toasts, styles.LevelStyle(t.Level).Render(format.Oneline(t.Message)))
	}
	row := lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(strings.Join(toasts, styles.FaintText.Render("  ·  ")))

	helpLine := lipgloss.NewStyle().MaxHeight(1).Render(m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, row, helpLine)
}

// window returns the [start, end) slice of n items that keeps cursor
// visible in size rows.
func window(n, cursor, size int) (int, int) {
	if size <= 0 || n <= size {
		return 0, n
	}
	start := cursor - size + 1
	if start < 0 {
		start = 0
	}
	if start > n-size {
		start = n - size
	}
	return start, start + size
}
