// Package registry lists uploaded files and changes which one is selected.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/state"
)

// User-facing messages.
const (
	MsgSelected     = "File selected successfully"
	MsgSelectFailed = "Error selecting file"
	MsgDeleted      = "File deleted successfully"
	MsgDeleteFailed = "Error deleting file. Please try again."
	MsgLoadFailed   = "Error loading file list"
	MsgNoFiles      = "No files uploaded yet"
)

// ErrSuperseded is returned when a newer select was issued while this one was
// in flight; its outcome is discarded.
var ErrSuperseded = errors.New("file selection superseded")

// Backend is the slice of the API the registry uses.
type Backend interface {
	ListFiles(ctx context.Context) ([]api.File, error)
	SelectFile(ctx context.Context, id api.FileID) (api.SelectResult, error)
	DeleteFile(ctx context.Context, id api.FileID) error
}

// Selection is the result of a successful select.
type Selection struct {
	ID       api.FileID
	Filename string
	Columns  []string
}

// Registry coordinates file list operations with the shared store.
type Registry struct {
	backend Backend
	store   *state.Store
}

// New builds a Registry.
func New(backend Backend, store *state.Store) *Registry {
	return &Registry{backend: backend, store: store}
}

// Store exposes the state store the registry writes to.
func (r *Registry) Store() *state.Store {
	return r.store
}

// Load fetches the file list. A failure keeps the previous list, is recorded
// in the store for inline display and is returned for a notification.
func (r *Registry) Load(ctx context.Context) ([]api.File, error) {
	files, err := r.backend.ListFiles(ctx)
	if err != nil {
		r.store.Update(nil, err)
		return nil, fmt.Errorf("load files: %w", err)
	}
	r.store.SetFiles(files)
	return r.store.Files(), nil
}

// Select makes id the selected file. On failure the selection is cleared, not
// restored.
func (r *Registry) Select(ctx context.Context, id api.FileID) (Selection, error) {
	gen := r.store.BeginSelect()
	res, err := r.backend.SelectFile(ctx, id)
	if err != nil {
		if !r.store.FailSelect(gen) {
			return Selection{}, ErrSuperseded
		}
		return Selection{}, fmt.Errorf("select file %s: %w", id, err)
	}
	if !r.store.CommitSelect(gen, id, res.Filename) {
		return Selection{}, ErrSuperseded
	}
	sel := Selection{
		ID:       id,
		Filename: res.Filename,
		Columns:  columns.Parse(res.Columns, res.RawColumns),
	}
	if sel.Filename == "" {
		if f, ok := r.store.SelectedFile(); ok {
			sel.Filename = f.Filename
		}
	}
	return sel, nil
}

// Delete removes a file and reloads the list. Callers must confirm with the
// user first. Deleting the selected file clears the selection.
func (r *Registry) Delete(ctx context.Context, id api.FileID) error {
	if err := r.backend.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	if r.store.SelectedFileID() == id {
		r.store.ClearSelection()
	}
	if _, err := r.Load(ctx); err != nil {
		log.Printf("reload after delete failed: %v", err)
	}
	return nil
}

// AfterUpload reloads the list and selects the uploaded file when the
// server returned its ID. The returned selection is nil when nothing was
// selected.
func (r *Registry) AfterUpload(ctx context.Context, res api.UploadResult) (*Selection, error) {
	if _, err := r.Load(ctx); err != nil {
		log.Printf("reload after upload failed: %v", err)
	}
	if res.FileID == "" {
		return nil, nil
	}
	sel, err := r.Select(ctx, res.FileID)
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

// ConfirmPrompt is the question shown before deleting name.
func ConfirmPrompt(name string) string {
	return fmt.Sprintf("Are you sure you want to delete %q?", name)
}
