package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/state"
)

type fakeBackend struct {
	mu        sync.Mutex
	files     []api.File
	listErr   error
	selectFn  func(ctx context.Context, id api.FileID) (api.SelectResult, error)
	deleteErr error
	deleted   []api.FileID
	listCalls int
}

func (f *fakeBackend) ListFiles(ctx context.Context) ([]api.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.File(nil), f.files...), nil
}

func (f *fakeBackend) SelectFile(ctx context.Context, id api.FileID) (api.SelectResult, error) {
	if f.selectFn != nil {
		return f.selectFn(ctx, id)
	}
	return api.SelectResult{Filename: "f" + string(id) + ".csv", Columns: []string{"City", "Product"}}, nil
}

func (f *fakeBackend) DeleteFile(ctx context.Context, id api.FileID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	kept := f.files[:0]
	for _, file := range f.files {
		if file.ID != id {
			kept = append(kept, file)
		}
	}
	f.files = kept
	return nil
}

func newFixture() (*fakeBackend, *state.Store, *Registry) {
	backend := &fakeBackend{files: []api.File{
		{ID: "1", Filename: "a.csv"},
		{ID: "2", Filename: "b.csv"},
	}}
	store := &state.Store{}
	return backend, store, New(backend, store)
}

func TestLoad_StoresFiles(t *testing.T) {
	_, store, reg := newFixture()

	files, err := reg.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(files) != 2 || len(store.Files()) != 2 {
		t.Fatalf("files = %#v, store = %#v", files, store.Files())
	}
}

func TestLoad_FailsSoftKeepingPreviousList(t *testing.T) {
	backend, store, reg := newFixture()
	if _, err := reg.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	backend.listErr = errors.New("connection refused")
	_, err := reg.Load(context.Background())
	if err == nil {
		t.Fatalf("Load returned nil error, want failure")
	}
	snap := store.Snapshot()
	if len(snap.Files) != 2 {
		t.Fatalf("list cleared on failure: %#v", snap.Files)
	}
	if snap.LastError == nil {
		t.Fatalf("LastError not recorded")
	}
}

func TestSelect_CommitsAndParsesColumns(t *testing.T) {
	_, store, reg := newFixture()
	_, _ = reg.Load(context.Background())

	sel, err := reg.Select(context.Background(), "2")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if sel.ID != "2" || sel.Filename != "f2.csv" {
		t.Fatalf("Selection = %#v", sel)
	}
	if len(sel.Columns) != 2 {
		t.Fatalf("Columns = %#v, want 2", sel.Columns)
	}
	if store.SelectedFileID() != "2" {
		t.Fatalf("SelectedFileID = %q, want 2", store.SelectedFileID())
	}
	for _, f := range store.Files() {
		if f.IsActive != (f.ID == "2") {
			t.Fatalf("file %s IsActive = %v", f.ID, f.IsActive)
		}
	}
}

func TestSelect_DelimitedColumns(t *testing.T) {
	backend, _, reg := newFixture()
	backend.selectFn = func(ctx context.Context, id api.FileID) (api.SelectResult, error) {
		return api.SelectResult{Filename: "x.csv", RawColumns: "Product; City;;"}, nil
	}
	sel, err := reg.Select(context.Background(), "1")
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(sel.Columns) != 2 || sel.Columns[1] != "City" {
		t.Fatalf("Columns = %#v", sel.Columns)
	}
}

func TestSelect_FailureClearsSelection(t *testing.T) {
	backend, store, reg := newFixture()
	if _, err := reg.Select(context.Background(), "1"); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	backend.selectFn = func(ctx context.Context, id api.FileID) (api.SelectResult, error) {
		return api.SelectResult{}, &api.APIError{Status: 404, Message: "File not found"}
	}
	_, err := reg.Select(context.Background(), "2")
	if err == nil {
		t.Fatalf("Select returned nil error, want failure")
	}
	if api.Message(err) != "File not found" {
		t.Fatalf("Message = %q, want File not found", api.Message(err))
	}
	if got := store.SelectedFileID(); got != "" {
		t.Fatalf("SelectedFileID = %q, want cleared (previous selection must not be restored)", got)
	}
}

func TestSelect_StaleResponseIsSuperseded(t *testing.T) {
	backend, store, reg := newFixture()
	release := make(chan struct{})
	started := make(chan struct{})
	backend.selectFn = func(ctx context.Context, id api.FileID) (api.SelectResult, error) {
		if id == "1" {
			close(started)
			<-release
		}
		return api.SelectResult{Filename: string(id)}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := reg.Select(context.Background(), "1")
		done <- err
	}()
	<-started

	if _, err := reg.Select(context.Background(), "2"); err != nil {
		t.Fatalf("Select(2) returned error: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Select(1) error = %v, want ErrSuperseded", err)
	}
	if store.SelectedFileID() != "2" {
		t.Fatalf("SelectedFileID = %q, want 2", store.SelectedFileID())
	}
}

func TestDelete_ReloadsAndClearsSelectedFile(t *testing.T) {
	backend, store, reg := newFixture()
	_, _ = reg.Load(context.Background())
	if _, err := reg.Select(context.Background(), "1"); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if err := reg.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if store.SelectedFileID() != "" {
		t.Fatalf("SelectedFileID = %q, want cleared", store.SelectedFileID())
	}
	if files := store.Files(); len(files) != 1 || files[0].ID != "2" {
		t.Fatalf("files after delete = %#v", files)
	}
	if backend.listCalls != 2 {
		t.Fatalf("listCalls = %d, want 2", backend.listCalls)
	}
}

func TestDelete_OtherFileKeepsSelection(t *testing.T) {
	_, store, reg := newFixture()
	_, _ = reg.Select(context.Background(), "1")
	if err := reg.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if store.SelectedFileID() != "1" {
		t.Fatalf("SelectedFileID = %q, want 1", store.SelectedFileID())
	}
}

func TestDelete_ErrorLeavesListStale(t *testing.T) {
	backend, store, reg := newFixture()
	_, _ = reg.Load(context.Background())
	backend.deleteErr = errors.New("boom")

	if err := reg.Delete(context.Background(), "1"); err == nil {
		t.Fatalf("Delete returned nil error")
	}
	if len(store.Files()) != 2 {
		t.Fatalf("list changed after failed delete")
	}
	if backend.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1 (no reload on failure)", backend.listCalls)
	}
}

func TestAfterUpload(t *testing.T) {
	backend, store, reg := newFixture()
	backend.files = append(backend.files, api.File{ID: "3", Filename: "new.csv"})

	sel, err := reg.AfterUpload(context.Background(), api.UploadResult{FileID: "3"})
	if err != nil {
		t.Fatalf("AfterUpload returned error: %v", err)
	}
	if sel == nil || sel.ID != "3" {
		t.Fatalf("selection = %#v, want file 3", sel)
	}
	if store.SelectedFileID() != "3" || len(store.Files()) != 3 {
		t.Fatalf("store = %#v", store.Snapshot())
	}

	sel, err = reg.AfterUpload(context.Background(), api.UploadResult{})
	if err != nil || sel != nil {
		t.Fatalf("AfterUpload without id = %#v, %v; want nil, nil", sel, err)
	}
}

func TestConfirmPrompt(t *testing.T) {
	if got := ConfirmPrompt("sales.csv"); got != `Are you sure you want to delete "sales.csv"?` {
		t.Fatalf("ConfirmPrompt = %q", got)
	}
}
