// Package ui provides the interactive terminal interface for rowfinder.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea model. Network calls run as tea.Cmd
// goroutines and report back as messages, so the update loop is the only
// place view state changes. Shared state lives outside the model: the
// selected file in state.Store, the replayable query in search.Coordinator.
//
// # Package Structure
//
//   - app.go: Model, Options, Update/View and the Run entry point
//   - commands.go: messages and the commands that produce them
//   - files.go: file list pane (select, delete)
//   - columns_pane.go: column selector pane with fuzzy filter
//   - query.go: search input and the suggestion dropdown
//   - results.go: result cards, pagination controls, copy and export
//   - upload.go: upload dialog, file preview and progress strip
//   - modal.go: confirm, export and client log overlays
//   - view.go: layout arithmetic, header and footer
//   - keys.go, help.go, theme.go, layout.go: bindings, help overlay, colors, sizes
//
// # Panes
//
// Tab cycles Files → Columns → Search → Results. The search input owns the
// keyboard while focused; leaving it hides the suggestion dropdown.
//
// # Overlays
//
// Help, upload, delete confirmation, export and the client log are drawn
// over the main screen and capture all keys until closed.
package ui
