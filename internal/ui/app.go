package ui

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/config"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/notify"
	"github.com/rowfinder/rowfinder/internal/prefs"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/search"
	"github.com/rowfinder/rowfinder/internal/state"
	"github.com/rowfinder/rowfinder/internal/suggest"
	"github.com/rowfinder/rowfinder/internal/upload"
)

// pane identifies a focusable region of the main screen.
type pane int

const (
	paneFiles pane = iota
	paneColumns
	paneQuery
	paneResults
	paneCount
)

// overlay identifies a dialog drawn over the main screen.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayUpload
	overlayConfirm
	overlayExport
	overlayLogs
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   api.Backend
	Store     *state.Store
	Config    config.Config
	ThemeName string
	PrefsPath string
	UploadDir string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	store       *state.Store
	registry    *registry.Registry
	coordinator *search.Coordinator
	uploader    *upload.Uploader
	source      *suggest.Source
	debounce    *suggest.Debouncer
	config      config.Config
	prefsPath   string

	// UI state
	keys    keyMap
	help    help.Model
	theme   Theme
	spinner spinner.Model
	width   int
	height  int
	ready   bool
	focus   pane
	overlay overlay

	// Data state
	snapshot state.Snapshot

	// Files
	fileCursor   int
	loadingFiles bool
	selecting    api.FileID

	// Columns
	selector     *columns.Selector
	columnCursor int
	columnFilter textinput.Model
	filtering    bool

	// Query
	query       textinput.Model
	suggestions suggest.List

	// Results
	results     viewport.Model
	outcome     search.Outcome
	cards       []search.Card
	cardOffsets []int
	cardCursor  int
	pagerCursor int
	banner      notify.Banner
	searching   bool

	// Dialogs
	upload  uploadState
	confirm confirmDialog
	export  exportDialog
	logs    logState

	toasts *notify.Center
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	cfg := opts.Config
	if cfg.APIURL == "" {
		cfg = config.Default()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	query := textinput.New()
	query.Placeholder = "Search terms, comma separated"
	query.Prompt = "› "

	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:          ctx,
		store:        store,
		registry:     registry.New(opts.Backend, store),
		coordinator:  search.NewCoordinator(opts.Backend, store, cfg.PageSize),
		uploader:     upload.NewUploader(opts.Backend, cfg.ProgressInterval),
		source:       suggest.NewSource(opts.Backend),
		debounce:     suggest.NewDebouncer(cfg.SuggestDebounce),
		config:       cfg,
		prefsPath:    prefsPath,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		theme:        GetTheme(themeName),
		spinner:      sp,
		focus:        paneFiles,
		columnFilter: filter,
		query:        query,
		results:      viewport.New(0, 0),
		upload:       newUploadState(opts.UploadDir),
		export:       newExportDialog(),
		toasts:       notify.NewCenter(notify.DefaultTTL),
		loadingFiles: true,
	}
	m.applyTheme()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadFilesCmd(m.ctx, m.registry),
		m.spinner.Tick,
		toastTickCmd(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastTickMsg:
		m.toasts.Expire(time.Time(msg))
		return m, toastTickCmd()

	case filesLoadedMsg:
		return m.handleFilesLoaded(msg)

	case fileSelectedMsg:
		return m.handleFileSelected(msg)

	case fileDeletedMsg:
		return m.handleFileDeleted(msg)

	case searchDoneMsg:
		return m.handleSearchDone(msg)

	case suggest.DueMsg:
		return m.handleSuggestDue(msg)

	case suggestionsMsg:
		return m.handleSuggestions(msg)

	case previewMsg:
		m.upload.setPreview(msg)
		return m, nil

	case uploadEventMsg:
		return m.handleUploadEvent(msg)

	case afterUploadMsg:
		return m.handleAfterUpload(msg)

	case hideProgressMsg:
		if msg.gen == m.upload.gen && !m.upload.running && !m.upload.failed {
			m.upload.barVisible = false
		}
		return m, nil

	case logsMsg:
		m.logs.set(msg, m.theme)
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			log.Printf("export failed: %v", msg.err)
			m.toasts.Push(notify.Error, "Export failed: "+msg.err.Error())
		} else {
			m.toasts.Push(notify.Success, "Saved "+format.Plural(msg.rows, "row", "rows")+" to "+msg.path)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			log.Printf("clipboard copy failed: %v", msg.err)
			m.toasts.Push(notify.Error, "Could not copy to clipboard")
		} else {
			m.toasts.Push(notify.Success, "Copied "+msg.title)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayUpload:
		return m.renderUploadDialog()
	case overlayConfirm:
		return m.centered(m.confirm.View(m.theme))
	case overlayExport:
		return m.renderExportDialog()
	case overlayLogs:
		return m.renderLogs()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayHelp:
		// Any key closes help
		m.overlay = overlayNone
		return m, nil
	case overlayUpload:
		return m.handleUploadKey(msg)
	case overlayConfirm:
		return m.handleConfirmKey(msg)
	case overlayExport:
		return m.handleExportKey(msg)
	case overlayLogs:
		return m.handleLogsKey(msg)
	}

	// Text inputs own the keyboard while focused.
	if m.focus == paneQuery {
		return m.handleQueryKey(msg)
	}
	if m.focus == paneColumns && m.filtering {
		return m.handleColumnFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		cmd := m.setFocus((m.focus + 1) % paneCount)
		return m, cmd
	case key.Matches(msg, m.keys.ShiftTab):
		cmd := m.setFocus((m.focus + paneCount - 1) % paneCount)
		return m, cmd
	case key.Matches(msg, m.keys.FocusQuery):
		cmd := m.setFocus(paneQuery)
		return m, cmd
	case key.Matches(msg, m.keys.Upload):
		return m.openUpload()
	case key.Matches(msg, m.keys.Reload):
		m.loadingFiles = true
		return m, loadFilesCmd(m.ctx, m.registry)
	case key.Matches(msg, m.keys.Logs):
		m.overlay = overlayLogs
		m.logs.viewport = viewport.New(m.width-4, m.height-4)
		return m, tailLogCmd(m.config.LogFile)
	}

	switch m.focus {
	case paneFiles:
		return m.handleFilesKey(msg)
	case paneColumns:
		return m.handleColumnsKey(msg)
	case paneResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

// setFocus moves focus to p. Leaving the query input hides suggestions.
func (m *Model) setFocus(p pane) tea.Cmd {
	if m.focus == paneQuery && p != paneQuery {
		m.query.Blur()
		m.suggestions.Hide()
		m.debounce.Cancel()
	}
	m.focus = p
	if p == paneQuery {
		return m.query.Focus()
	}
	return nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.applyTheme()
	name := m.theme.Name
	if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
		log.Printf("save theme preference failed: %v", err)
	}
	m.renderResults()
}

func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	m.spinner.Style = styles.AccentText
	m.query.PromptStyle = styles.AccentText
	m.query.TextStyle = styles.Text
	m.query.PlaceholderStyle = styles.FaintText
	m.columnFilter.PromptStyle = styles.AccentText
	m.columnFilter.PlaceholderStyle = styles.FaintText
	m.help.Styles.ShortKey = styles.AccentText
	m.help.Styles.ShortDesc = styles.MutedText
	m.help.Styles.ShortSeparator = styles.FaintText
}

func (m *Model) resize() {
	w, h := m.resultsSize()
	m.results.Width = w
	m.results.Height = h
	m.query.Width = max(m.mainWidth()-6, 10)
	m.columnFilter.Width = max(m.sideWidth()-8, 6)
	m.help.Width = m.width
	m.logs.viewport.Width = m.width - 4
	m.logs.viewport.Height = m.height - 4
	m.renderResults()
}

// handleFilesLoaded refreshes the list after Load.
func (m Model) handleFilesLoaded(msg filesLoadedMsg) (tea.Model, tea.Cmd) {
	m.loadingFiles = false
	m.refreshSnapshot()
	if msg.err != nil {
		log.Printf("load files failed: %v", msg.err)
		m.toasts.Push(notify.Error, registry.MsgLoadFailed)
	}
	return m, nil
}

// handleFileSelected applies a finished select. Failures clear every piece of
// file-scoped state, so nothing from the previous file survives.
// selectFailedText is the toast for a failed select, carrying the server's
// reason when there is one.
func selectFailedText(err error) string {
	if msg := api.Message(err); msg != "" {
		return registry.MsgSelectFailed + ": " + msg
	}
	return registry.MsgSelectFailed
}

func (m Model) handleFileSelected(msg fileSelectedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, registry.ErrSuperseded) {
		return m, nil
	}
	if m.selecting == msg.id {
		m.selecting = ""
	}
	m.refreshSnapshot()
	m.resetFileScope()

	if msg.err != nil {
		log.Printf("select file failed: %v", msg.err)
		m.toasts.Push(notify.Error, selectFailedText(msg.err))
		return m, nil
	}

	m.selector = columns.NewSelector(msg.sel.Columns)
	m.toasts.Push(notify.Success, registry.MsgSelected)
	return m, nil
}

func (m Model) handleFileDeleted(msg fileDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Printf("delete file failed: %v", msg.err)
		m.toasts.Push(notify.Error, registry.MsgDeleteFailed)
		return m, nil
	}
	m.source.Flush()
	m.refreshSnapshot()
	if !m.snapshot.HasSelection() {
		m.resetFileScope()
	}
	m.toasts.Push(notify.Success, registry.MsgDeleted)
	return m, nil
}

// resetFileScope drops columns, results and suggestions tied to the
// previously selected file.
func (m *Model) resetFileScope() {
	m.coordinator.Reset()
	m.selector = nil
	m.columnCursor = 0
	m.columnFilter.SetValue("")
	m.filtering = false
	m.suggestions.Clear()
	m.debounce.Cancel()
	m.outcome = search.Outcome{}
	m.cards = nil
	m.cardCursor = 0
	m.pagerCursor = 0
	m.banner = notify.Banner{}
	m.searching = false
	m.renderResults()
}

func (m *Model) refreshSnapshot() {
	m.snapshot = m.store.Snapshot()
	if m.fileCursor >= len(m.snapshot.Files) {
		m.fileCursor = max(len(m.snapshot.Files)-1, 0)
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	header := m.renderHeader()
	footer := m.renderFooter()

	side := lipgloss.JoinVertical(lipgloss.Left, m.renderFiles(), m.renderColumns())
	main := lipgloss.JoinVertical(lipgloss.Left, m.renderQuery(), m.renderResultsPane())

	var body string
	if m.width < LayoutCompactWidth {
		body = lipgloss.JoinVertical(lipgloss.Left, side, main)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderUploadStrip(), body, footer)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
