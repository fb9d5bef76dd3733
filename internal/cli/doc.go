// Package cli defines the rowfinder command tree.
//
// The bare command starts the TUI through app.Run. Subcommands are one-shot
// and scriptable: they build a fresh registry per run, print to stdout and
// report failures as a non-zero exit with the server's error text.
//
//	rowfinder files [--format table|json|yaml]
//	rowfinder select ID
//	rowfinder delete ID [--yes]
//	rowfinder columns
//	rowfinder upload PATH [--no-select]
//	rowfinder progress [--follow]
//	rowfinder search TERMS... [--fields a,b] [--file ID] [--page N] [--format table|csv|json|yaml]
//	rowfinder suggest TEXT
//
// Logging is silent unless --verbose is set, in which case it goes to
// stderr so stdout stays parseable.
package cli
