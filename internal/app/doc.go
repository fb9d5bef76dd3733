// Package app is the composition root for the rowfinder TUI.
//
// # Overview
//
// Run takes an already loaded config.Config, layers the user's saved
// preferences on top, points the standard logger at the log file and starts
// the Bubble Tea program. It returns when the user quits or the context is
// cancelled.
//
// # Startup
//
//  1. prefs.Load(): theme, last upload directory, page size override
//  2. tea.LogToFile(): log output goes to config log_file, never the terminal
//  3. api.NewClient(): HTTP client with request and upload timeouts
//  4. state.Store{}: shared file list and selection
//  5. ui.Run(): blocks until exit
//
// The TUI starts even when the backend is down; the file pane shows the
// load error and r retries.
//
// # Errors
//
// Only setup failures are returned: an unusable log path or an invalid API
// URL. Everything after startup is reported inside the TUI.
package app
