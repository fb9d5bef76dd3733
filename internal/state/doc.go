// Package state holds rowfinder's shared application state.
//
// # Overview
//
// Store keeps the file list returned by the backend and the single selected
// file. Bubble Tea commands run on their own goroutines, so every access goes
// through an RWMutex and readers get copies.
//
//	Commands (registry):           View (ui):
//	┌────────────────────┐        ┌──────────────────┐
//	│ ListFiles()        │        │                  │
//	│ store.Update()     │───────→│ store.Snapshot() │
//	│ BeginSelect()      │(mutex) │ store.Files()    │
//	│ CommitSelect(gen)  │        │      ↓           │
//	└────────────────────┘        │  render          │
//	                              └──────────────────┘
//
// # Selection
//
// The selected file ID is the only source of truth for "which file is being
// searched". Each select request takes a generation from BeginSelect; its
// outcome is applied with CommitSelect or FailSelect only if no newer select
// was issued in the meantime. A failed select clears the selection rather
// than restoring the previous one.
//
// Files() and Snapshot() rewrite IsActive so exactly the selected file is
// active, whatever the server last reported. AdoptActive lets one-shot CLI
// commands start from the server's active file.
package state
