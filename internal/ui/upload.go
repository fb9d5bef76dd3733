package ui

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/notify"
	"github.com/rowfinder/rowfinder/internal/prefs"
	"github.com/rowfinder/rowfinder/internal/preview"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/upload"
)

const (
	msgUploading      = "Uploading file..."
	msgUploadDone     = "Upload complete!"
	msgUploadFailed   = "Error uploading file"
	msgUploaded       = "File uploaded successfully"
	msgUploadInFlight = "An upload is already running"
)

// uploadState holds the upload dialog and the progress strip.
type uploadState struct {
	input textinput.Model
	dir   string

	previewPath string
	sample      preview.Sample
	previewErr  error
	dialogErr   string

	running    bool
	failed     bool
	barVisible bool
	fraction   float64 // negative while indeterminate
	text       string
	gen        int
}

func newUploadState(dir string) uploadState {
	in := textinput.New()
	in.Placeholder = "/path/to/file.csv"
	in.Prompt = "file: "
	in.ShowSuggestions = true
	return uploadState{input: in, dir: dir}
}

// setPreview stores a preview unless the path changed since it was requested.
func (u *uploadState) setPreview(msg previewMsg) {
	if msg.path != u.input.Value() {
		return
	}
	u.previewPath = msg.path
	u.sample = msg.sample
	u.previewErr = msg.err
}

func (u *uploadState) clearPreview() {
	u.previewPath = ""
	u.sample = preview.Sample{}
	u.previewErr = nil
}

// openUpload shows the dialog. Only one upload runs at a time.
func (m Model) openUpload() (tea.Model, tea.Cmd) {
	if m.upload.running {
		m.toasts.Push(notify.Warning, msgUploadInFlight)
		return m, nil
	}
	start := ""
	if m.upload.dir != "" {
		start = strings.TrimSuffix(m.upload.dir, string(filepath.Separator)) + string(filepath.Separator)
	}
	m.upload.input.SetValue(start)
	m.upload.input.CursorEnd()
	m.upload.input.SetSuggestions(pathCompletions(start))
	m.upload.input.Width = min(m.width-16, 70)
	m.upload.dialogErr = ""
	m.upload.clearPreview()
	m.overlay = overlayUpload
	cmd := m.upload.input.Focus()
	return m, cmd
}

// handleUploadKey processes keyboard input for the upload dialog.
func (m Model) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.upload.input.Blur()
		m.overlay = overlayNone
		return m, nil
	case "enter":
		resolved, err := upload.Validate(m.upload.input.Value())
		if err != nil {
			m.upload.dialogErr = err.Error()
			if errors.Is(err, upload.ErrNoFile) || errors.Is(err, upload.ErrUnsupportedType) {
				m.toasts.Push(notify.Warning, err.Error())
			}
			return m, nil
		}
		m.upload.input.Blur()
		m.overlay = overlayNone
		m.upload.dir = filepath.Dir(resolved)
		dir := m.upload.dir
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.LastUploadDir = dir }); err != nil {
			log.Printf("save upload dir failed: %v", err)
		}
		m.upload.gen++
		m.upload.running = true
		m.upload.failed = false
		m.upload.barVisible = true
		m.upload.fraction = 0
		m.upload.text = msgUploading
		return m, startUploadCmd(m.ctx, m.uploader, resolved)
	}

	before := m.upload.input.Value()
	var cmd tea.Cmd
	m.upload.input, cmd = m.upload.input.Update(msg)
	value := m.upload.input.Value()
	if value == before {
		return m, cmd
	}
	m.upload.dialogErr = ""
	m.upload.input.SetSuggestions(pathCompletions(value))
	if !upload.Supported(value) {
		m.upload.clearPreview()
		return m, cmd
	}
	return m, tea.Batch(cmd, previewCmd(value))
}

// handleUploadEvent updates the progress strip and keeps draining events.
func (m Model) handleUploadEvent(msg uploadEventMsg) (tea.Model, tea.Cmd) {
	e := msg.event
	next := waitUploadCmd(msg.events)

	switch e.Phase {
	case upload.Started:
		m.upload.fraction = -1
		m.upload.text = msgUploading
	case upload.Progressing:
		m.upload.fraction = e.Fraction
		m.upload.text = progressText(e.Progress)
	case upload.Completed:
		m.upload.running = false
		m.upload.fraction = 1
		m.upload.text = msgUploadDone
		m.upload.input.SetValue("")
		m.source.Flush()
		return m, tea.Batch(next, afterUploadCmd(m.ctx, m.registry, e.Result), hideProgressCmd(m.upload.gen))
	case upload.Failed:
		log.Printf("upload failed: %v", e.Err)
		m.upload.running = false
		m.upload.failed = true
		m.upload.fraction = 1
		cause := errors.Unwrap(e.Err)
		if cause == nil {
			cause = e.Err
		}
		m.upload.text = msgUploadFailed + ": " + api.Message(cause)
		m.toasts.Push(notify.Error, msgUploadFailed)
	}
	return m, next
}

// handleAfterUpload applies the reload and automatic select that follow a
// successful upload.
func (m Model) handleAfterUpload(msg afterUploadMsg) (tea.Model, tea.Cmd) {
	m.refreshSnapshot()
	switch {
	case errors.Is(msg.err, registry.ErrSuperseded):
	case msg.err != nil:
		log.Printf("select after upload failed: %v", msg.err)
		m.resetFileScope()
		m.toasts.Push(notify.Error, selectFailedText(msg.err))
	case msg.sel != nil:
		m.resetFileScope()
		m.selector = columns.NewSelector(msg.sel.Columns)
		m.fileCursor = fileIndex(m.snapshot.Files, msg.sel.ID)
	}
	m.toasts.Push(notify.Success, msgUploaded)
	return m, nil
}

func progressText(p api.Progress) string {
	if p.TotalRows > 0 {
		return fmt.Sprintf("Processing %s of %s rows", format.Number(p.ProcessedRows), format.Number(p.TotalRows))
	}
	return msgUploading
}

func fileIndex(files []api.File, id api.FileID) int {
	for i, f := range files {
		if f.ID == id {
			return i
		}
	}
	return 0
}

// pathCompletions lists directories and uploadable files extending value.
// Directories carry a trailing separator.
func pathCompletions(value string) []string {
	if value == "" {
		return nil
	}
	expanded := value
	if strings.HasPrefix(value, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = home + strings.TrimPrefix(value, "~")
		}
	}
	dir, prefix := filepath.Split(expanded)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	base := value[:len(value)-len(prefix)]
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || (strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".")) {
			continue
		}
		if e.IsDir() {
			out = append(out, base+name+string(filepath.Separator))
		} else if upload.Supported(name) {
			out = append(out, base+name)
		}
	}
	return out
}

// renderUploadStrip renders the progress bar line under the header.
func (m Model) renderUploadStrip() string {
	if !m.upload.barVisible {
		return ""
	}
	styles := m.theme.Styles()

	barWidth := min(max(m.width/3, 10), 40)
	color := m.theme.Accent
	textStyle := styles.MutedText
	switch {
	case m.upload.failed:
		color = m.theme.Danger
		textStyle = styles.DangerText
	case !m.upload.running:
		color = m.theme.Success
		textStyle = styles.SuccessText
	}

	var bar string
	if m.upload.fraction < 0 {
		bar = m.spinner.View()
	} else {
		bar = progress.New(
			progress.WithSolidFill(color),
			progress.WithWidth(barWidth),
		).ViewAs(m.upload.fraction)
	}
	line := bar + " " + textStyle.Render(m.upload.text)
	return lipgloss.NewStyle().Padding(0, 1).MaxHeight(1).Width(m.width).Render(line)
}

// renderUploadDialog renders the path prompt and the file preview.
func (m Model) renderUploadDialog() string {
	styles := m.theme.Styles()
	width := min(m.width-8, 90)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Upload CSV or XLSX"))
	b.WriteString("\n\n")
	b.WriteString(m.upload.input.View())
	b.WriteString("\n")

	if m.upload.dialogErr != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(m.upload.dialogErr))
		b.WriteString("\n")
	}

	inner := width - 6
	switch {
	case m.upload.previewErr != nil:
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(format.Truncate(m.upload.previewErr.Error(), inner)))
		b.WriteString("\n")
	case m.upload.previewPath != "" && strings.EqualFold(filepath.Ext(m.upload.previewPath), ".xlsx"):
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("Preview is not available for XLSX workbooks"))
		b.WriteString("\n")
	case len(m.upload.sample.Lines) > 0:
		b.WriteString("\n")
		if h := m.upload.sample.Header; len(h) > 0 {
			b.WriteString(styles.AccentText.Render(format.Truncate(format.Plural(len(h), "column", "columns")+": "+strings.Join(h, ", "), inner)))
			b.WriteString("\n")
		}
		for _, l := range m.upload.sample.Lines {
			b.WriteString(styles.FaintText.Render(format.Truncate(format.Oneline(l), inner)))
			b.WriteString("\n")
		}
		if m.upload.sample.Truncated {
			b.WriteString(styles.FaintText.Render("…"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("enter upload · tab complete path · esc cancel"))

	return m.centered(styles.Dialog.Width(width).Render(b.String()))
}
