// Package upload sends CSV and XLSX files to the backend.
//
// # Flow
//
//	Validate(path) ──→ Started ──→ POST /api/upload/ ───────────→ Completed | Failed
//	                       │                                  ↑
//	                       └─→ poll /api/upload-progress/ ────┘ (cancelled when the POST returns)
//
// Uploader.Run reports an indeterminate Started event, then Progressing
// events from the poll loop, then exactly one terminal event. The poll loop
// ignores a leftover completed/error status from an earlier upload until it
// has seen in_progress.
//
// Watch is the poll loop on its own, used by `rowfinder progress --follow`.
// Poll errors are logged and retried with exponential backoff capped at 30s;
// the loop ends on a terminal status or context cancellation.
//
// Uploads are never retried automatically.
package upload
