package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Upload     key.Binding
	Reload     key.Binding
	Logs       key.Binding
	FocusQuery key.Binding

	// Navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Left   key.Binding
	Right  key.Binding

	// Files
	Delete key.Binding

	// Columns
	Toggle      key.Binding
	ToggleAll   key.Binding
	Filter      key.Binding
	OnlyProduct key.Binding
	OnlyCompany key.Binding

	// Results
	NextPage key.Binding
	PrevPage key.Binding
	NextCard key.Binding
	PrevCard key.Binding
	Copy     key.Binding
	Export   key.Binding

	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close / cancel"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload a file"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload files"),
		),
		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Client log"),
		),
		FocusQuery: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Edit search terms"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous page control"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next page control"),
		),

		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Delete file"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" ", "space"),
			key.WithHelp("space", "Toggle column"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Select all columns"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Filter columns"),
		),
		OnlyProduct: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Search product only"),
		),
		OnlyCompany: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Search companies only"),
		),

		NextPage: key.NewBinding(
			key.WithKeys("n", "pgdown"),
			key.WithHelp("n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "pgup"),
			key.WithHelp("p", "Previous page"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next result"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous result"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy result"),
		),
		Export: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save page"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.FocusQuery, k.Upload, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.FocusQuery, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Confirm, k.Delete, k.Reload, k.Upload},
		{k.Toggle, k.ToggleAll, k.Filter, k.OnlyProduct, k.OnlyCompany},
		{k.NextPage, k.PrevPage, k.Left, k.Right, k.NextCard, k.PrevCard, k.Copy, k.Export},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
