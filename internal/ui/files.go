package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/registry"
)

// handleFilesKey processes keyboard input for the file list.
func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	files := m.snapshot.Files
	if len(files) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.fileCursor < len(files)-1 {
			m.fileCursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.fileCursor > 0 {
			m.fileCursor--
		}
	case key.Matches(msg, m.keys.Top):
		m.fileCursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.fileCursor = len(files) - 1
	case key.Matches(msg, m.keys.Confirm):
		f := files[m.fileCursor]
		m.selecting = f.ID
		return m, selectFileCmd(m.ctx, m.registry, f.ID)
	case key.Matches(msg, m.keys.Delete):
		f := files[m.fileCursor]
		m.confirm = newConfirmDialog("Delete file", registry.ConfirmPrompt(f.Filename), f.ID, f.Filename)
		m.overlay = overlayConfirm
	}
	return m, nil
}

// renderFiles renders the file list pane.
func (m Model) renderFiles() string {
	styles := m.theme.Styles()
	width := m.sideWidth() - 4

	var b strings.Builder
	title := "Files"
	if m.loadingFiles {
		title += " " + m.spinner.View()
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	b.WriteString("\n")

	files := m.snapshot.Files
	switch {
	case len(files) == 0 && m.snapshot.LastError != nil:
		b.WriteString(styles.DangerText.Render(registry.MsgLoadFailed))
	case len(files) == 0 && !m.loadingFiles:
		b.WriteString(styles.MutedText.Render(registry.MsgNoFiles))
	}

	start, end := window(len(files), m.fileCursor, max((m.filesHeight()-1)/2, 1))
	for i := start; i < end; i++ {
		f := files[i]
		marker := "  "
		if f.IsActive {
			marker = "● "
		}
		if f.ID == m.selecting {
			marker = m.spinner.View()
		}
		name := format.Truncate(marker+format.Oneline(f.Filename), width)
		line := format.PadRight(name, width)
		switch {
		case i == m.fileCursor && m.focus == paneFiles:
			b.WriteString(styles.Selected.Render(line))
		case f.IsActive:
			b.WriteString(styles.AccentText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
		meta := fmt.Sprintf("  %s · %s", format.Plural(int(f.RowCount), "row", "rows"), format.Date(f.UploadDate))
		b.WriteString(styles.FaintText.Render(format.Truncate(meta, width)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	if m.snapshot.IsOffline() {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(format.Truncate("offline: "+m.snapshot.LastError.Error(), width)))
	}

	return m.paneStyle(paneFiles).
		Width(m.sideWidth() - 2).
		Height(m.filesHeight()).
		MaxHeight(m.filesHeight() + 2).
		Render(b.String())
}
