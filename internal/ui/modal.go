package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/export"
	"github.com/rowfinder/rowfinder/internal/format"
)

// confirmDialog asks before a destructive action. Confirm starts unselected
// so a stray enter cancels.
type confirmDialog struct {
	title    string
	message  string
	id       api.FileID
	name     string
	selected bool // true = confirm selected
}

func newConfirmDialog(title, message string, id api.FileID, name string) confirmDialog {
	return confirmDialog{title: title, message: message, id: id, name: name}
}

// update returns the dialog, whether it closed and whether it was confirmed.
func (d confirmDialog) update(msg tea.KeyMsg) (confirmDialog, bool, bool) {
	switch msg.String() {
	case "y", "Y":
		return d, true, true
	case "n", "N", "esc":
		return d, true, false
	case "enter":
		return d, true, d.selected
	case "tab", "left", "right", "h", "l":
		d.selected = !d.selected
	}
	return d, false, false
}

// View renders the dialog box.
func (d confirmDialog) View(theme Theme) string {
	styles := theme.Styles()

	title := styles.WarningText.Bold(true).Render(d.title)

	yes := lipgloss.NewStyle().Padding(0, 1)
	no := lipgloss.NewStyle().Padding(0, 1)
	if d.selected {
		yes = yes.Bold(true).Background(lipgloss.Color(theme.Success)).Foreground(lipgloss.Color(theme.Background))
		no = no.Foreground(lipgloss.Color(theme.Muted))
	} else {
		yes = yes.Foreground(lipgloss.Color(theme.Muted))
		no = no.Bold(true).Background(lipgloss.Color(theme.Danger)).Foreground(lipgloss.Color(theme.Background))
	}

	content := fmt.Sprintf("%s\n\n%s\n\n%s  %s\n\n%s",
		title, styles.Text.Render(d.message),
		yes.Render("Yes"), no.Render("No"),
		styles.MutedText.Render("y/n to confirm, esc to cancel"))

	return styles.Dialog.BorderForeground(lipgloss.Color(theme.Warning)).Width(54).Render(content)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d, closed, ok := m.confirm.update(msg)
	m.confirm = d
	if !closed {
		return m, nil
	}
	m.overlay = overlayNone
	if !ok {
		return m, nil
	}
	return m, deleteFileCmd(m.ctx, m.registry, d.id, d.name)
}

// exportDialog asks where to save the current page.
type exportDialog struct {
	input     textinput.Model
	formatIdx int // index into export.Formats
	page      int
}

func newExportDialog() exportDialog {
	in := textinput.New()
	in.Prompt = "save to: "
	return exportDialog{input: in}
}

func (d *exportDialog) open(page int) {
	d.page = page
	d.input.SetValue(d.defaultName())
	d.input.CursorEnd()
}

func (d exportDialog) current() export.Format {
	return export.Formats[d.formatIdx%len(export.Formats)]
}

func (d exportDialog) defaultName() string {
	return fmt.Sprintf("rowfinder-page-%d%s", max(d.page, 1), d.current().Extension())
}

// cycleFormat switches format, renaming the file when it still carries the
// previous format's extension.
func (d *exportDialog) cycleFormat() {
	prev := d.current()
	d.formatIdx = (d.formatIdx + 1) % len(export.Formats)
	path := d.input.Value()
	if strings.EqualFold(filepath.Ext(path), prev.Extension()) {
		d.input.SetValue(strings.TrimSuffix(path, filepath.Ext(path)) + d.current().Extension())
		d.input.CursorEnd()
	}
}

func (m Model) handleExportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.export.input.Blur()
		m.overlay = overlayNone
		return m, nil
	case "tab":
		m.export.cycleFormat()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.export.input.Value())
		if path == "" {
			return m, nil
		}
		m.export.input.Blur()
		m.overlay = overlayNone
		return m, exportCmd(path, m.export.current(), m.outcome.Page.Results)
	}
	var cmd tea.Cmd
	m.export.input, cmd = m.export.input.Update(msg)
	return m, cmd
}

func (m Model) renderExportDialog() string {
	styles := m.theme.Styles()

	formats := make([]string, 0, len(export.Formats))
	for _, f := range export.Formats {
		label := " " + strings.ToUpper(string(f)) + " "
		if f == m.export.current() {
			formats = append(formats, styles.Selected.Render(label))
		} else {
			formats = append(formats, styles.MutedText.Render(label))
		}
	}

	content := strings.Join([]string{
		styles.Text.Bold(true).Render(fmt.Sprintf("Save page %d (%s)", m.export.page,
			format.Plural(len(m.outcome.Page.Results), "row", "rows"))),
		"",
		m.export.input.View(),
		"",
		strings.Join(formats, " "),
		"",
		styles.MutedText.Render("tab format · enter save · esc cancel"),
	}, "\n")
	return m.centered(styles.Dialog.Width(min(m.width-8, 70)).Render(content))
}

// logState backs the client log overlay.
type logState struct {
	viewport viewport.Model
	err      error
	count    int
}

func (l *logState) set(msg logsMsg, theme Theme) {
	styles := theme.Styles()
	l.err = msg.err
	l.count = len(msg.lines)
	if msg.err != nil {
		l.viewport.SetContent(styles.DangerText.Render(msg.err.Error()))
		return
	}
	if len(msg.lines) == 0 {
		l.viewport.SetContent(styles.MutedText.Render("Log is empty"))
		return
	}
	var b strings.Builder
	for i, line := range msg.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case strings.Contains(line, "failed"):
			b.WriteString(styles.DangerText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
	}
	l.viewport.SetContent(b.String())
	l.viewport.GotoBottom()
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc", msg.String() == "L", msg.String() == "q":
		m.overlay = overlayNone
		return m, nil
	case msg.String() == "r":
		return m, tailLogCmd(m.config.LogFile)
	case msg.String() == "g":
		m.logs.viewport.GotoTop()
		return m, nil
	case msg.String() == "G":
		m.logs.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	return m, cmd
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Client log") +
		styles.MutedText.Render("  "+m.config.LogFile+"  ·  "+format.Plural(m.logs.count, "line", "lines"))
	hint := styles.MutedText.Render("r reload · g/G top/bottom · esc close")
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		styles.Pane.Render(m.logs.viewport.View()),
		hint,
	)
}
