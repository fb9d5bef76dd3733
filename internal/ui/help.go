package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"tab/shift+tab", "Cycle panes"},
				{"/", "Edit search terms"},
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"esc", "Close dialog or dropdown"},
			},
		},
		{
			title: "Files",
			items: []helpItem{
				{"enter", "Select file"},
				{"d", "Delete file"},
				{"r", "Reload list"},
				{"u", "Upload CSV/XLSX"},
			},
		},
		{
			title: "Columns",
			items: []helpItem{
				{"space", "Toggle column"},
				{"a", "Select/clear all"},
				{"f", "Filter columns"},
				{"1", "Product only"},
				{"2", "Companies only"},
			},
		},
		{
			title: "Search",
			items: []helpItem{
				{"enter", "Search / accept suggestion"},
				{"up/down", "Move through suggestions"},
				{"n/p", "Next/previous page"},
				{"h/l enter", "Pick a page control"},
				{"[ ]", "Previous/next result"},
				{"c", "Copy result"},
				{"s", "Save page to file"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"L", "Client log"},
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"e/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 34)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(15)

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return m.centered(styles.Dialog.Width(46).Render(b.String()))
}

// centered centers content on the screen.
func (m Model) centered(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
