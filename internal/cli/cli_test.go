package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/app"
	"github.com/rowfinder/rowfinder/internal/config"
)

type fakeBackend struct {
	files    []api.File
	columns  []string
	page     api.SearchPage
	progress api.Progress
	upload   api.UploadResult
	sugs     []api.Suggestion

	selected []api.FileID
	deleted  []api.FileID
	searches []api.SearchRequest
}

func (f *fakeBackend) ListFiles(context.Context) ([]api.File, error) {
	return append([]api.File(nil), f.files...), nil
}

func (f *fakeBackend) SelectFile(_ context.Context, id api.FileID) (api.SelectResult, error) {
	f.selected = append(f.selected, id)
	for _, file := range f.files {
		if file.ID == id {
			return api.SelectResult{Filename: file.Filename, Columns: f.columns}, nil
		}
	}
	return api.SelectResult{}, &api.APIError{Status: 404, Message: "File not found"}
}

func (f *fakeBackend) DeleteFile(_ context.Context, id api.FileID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ActiveColumns(context.Context) (api.ColumnsInfo, error) {
	return api.ColumnsInfo{Columns: f.columns, CurrentFile: "imports.csv"}, nil
}

func (f *fakeBackend) Upload(context.Context, string) (api.UploadResult, error) {
	return f.upload, nil
}

func (f *fakeBackend) UploadProgress(context.Context) (api.Progress, error) {
	return f.progress, nil
}

func (f *fakeBackend) Search(_ context.Context, req api.SearchRequest) (api.SearchPage, error) {
	f.searches = append(f.searches, req)
	page := f.page
	page.Page = req.Page
	return page, nil
}

func (f *fakeBackend) Suggestions(context.Context, string) ([]api.Suggestion, error) {
	return f.sugs, nil
}

func newFake() *fakeBackend {
	return &fakeBackend{
		files: []api.File{
			{ID: "1", Filename: "imports.csv", RowCount: 1200, IsActive: true},
			{ID: "2", Filename: "exports.csv", RowCount: 5},
		},
		columns: []string{"Product", "ForeignCompany", "City"},
		page: api.SearchPage{
			Results: []api.Row{
				{{Column: "Product", Value: "Steel pipe"}, {Column: "City", Value: "Pune"}},
			},
			TotalCount: 21,
			TotalPages: 2,
		},
		progress: api.Progress{Status: api.ProgressIdle},
	}
}

// execute runs the command tree against backend and returns stdout.
func execute(t *testing.T, backend *fakeBackend, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand(Options{
		Version:    "test",
		NewBackend: func(config.Config) (api.Backend, error) { return backend, nil },
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestFilesTable(t *testing.T) {
	out, _, err := execute(t, newFake(), "", "files")
	if err != nil {
		t.Fatalf("files error = %v", err)
	}
	for _, want := range []string{"imports.csv", "exports.csv", "1,200", "●"} {
		if !strings.Contains(out, want) {
			t.Fatalf("files output missing %q:\n%s", want, out)
		}
	}
}

func TestFilesEmpty(t *testing.T) {
	backend := newFake()
	backend.files = nil
	out, _, err := execute(t, backend, "", "files")
	if err != nil {
		t.Fatalf("files error = %v", err)
	}
	if strings.TrimSpace(out) != "No files uploaded yet" {
		t.Fatalf("files output = %q", out)
	}
}

func TestFilesJSON(t *testing.T) {
	out, _, err := execute(t, newFake(), "", "files", "--format", "json")
	if err != nil {
		t.Fatalf("files error = %v", err)
	}
	if !strings.Contains(out, `"filename": "imports.csv"`) || !strings.Contains(out, `"row_count": 1200`) {
		t.Fatalf("json output = %s", out)
	}
}

func TestSelectPrintsColumnCount(t *testing.T) {
	backend := newFake()
	out, _, err := execute(t, backend, "", "select", "2")
	if err != nil {
		t.Fatalf("select error = %v", err)
	}
	if !strings.Contains(out, "File selected successfully") || !strings.Contains(out, "exports.csv: 3 columns") {
		t.Fatalf("select output = %q", out)
	}
}

func TestSelectUnknownFileShowsServerMessage(t *testing.T) {
	_, _, err := execute(t, newFake(), "", "select", "9")
	if err == nil || !strings.Contains(err.Error(), "File not found") {
		t.Fatalf("select error = %v, want server message", err)
	}
}

func TestDeletePromptsForConfirmation(t *testing.T) {
	backend := newFake()
	out, _, err := execute(t, backend, "n\n", "delete", "1")
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("deleted = %v after answering no", backend.deleted)
	}
	if !strings.Contains(out, `Are you sure you want to delete "imports.csv"?`) {
		t.Fatalf("prompt missing: %q", out)
	}

	out, _, err = execute(t, backend, "yes\n", "delete", "1")
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if len(backend.deleted) != 1 || !strings.Contains(out, "File deleted successfully") {
		t.Fatalf("deleted = %v output = %q", backend.deleted, out)
	}
}

func TestDeleteYesSkipsPrompt(t *testing.T) {
	backend := newFake()
	out, _, err := execute(t, backend, "", "delete", "2", "--yes")
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if strings.Contains(out, "Are you sure") {
		t.Fatalf("prompted despite --yes: %q", out)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "2" {
		t.Fatalf("deleted = %v, want [2]", backend.deleted)
	}
}

func TestSearchUsesActiveFileAndDefaultFields(t *testing.T) {
	backend := newFake()
	out, _, err := execute(t, backend, "", "search", "steel pipe", "copper")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	if len(backend.searches) != 1 {
		t.Fatalf("searches = %d, want 1", len(backend.searches))
	}
	req := backend.searches[0]
	if req.FileID != "1" {
		t.Fatalf("FileID = %q, want active file 1", req.FileID)
	}
	if got := strings.Join(req.Terms, "|"); got != "steel pipe|copper" {
		t.Fatalf("Terms = %q", got)
	}
	if got := strings.Join(req.Fields, "|"); got != "Foreign Company|Product" {
		t.Fatalf("Fields = %q, want priority columns", got)
	}
	if !strings.Contains(out, "Steel pipe") || !strings.Contains(out, "Found 21 results · page 1 of 2") {
		t.Fatalf("search output = %s", out)
	}
}

func TestSearchExplicitFileFieldsAndPage(t *testing.T) {
	backend := newFake()
	out, status, err := execute(t, backend, "", "search", "steel",
		"--file", "2", "--fields", "City,ForeignCompany", "--page", "2", "--format", "csv")
	if err != nil {
		t.Fatalf("search error = %v", err)
	}
	req := backend.searches[0]
	if req.FileID != "2" || req.Page != 2 {
		t.Fatalf("request = %#v", req)
	}
	if got := strings.Join(req.Fields, "|"); got != "City|Foreign Company" {
		t.Fatalf("Fields = %q", got)
	}
	if !strings.HasPrefix(out, "Product,City\n") {
		t.Fatalf("csv output = %q", out)
	}
	if !strings.Contains(status, "page 2 of 2") {
		t.Fatalf("status = %q", status)
	}
}

func TestSearchWithoutActiveFile(t *testing.T) {
	backend := newFake()
	backend.files[0].IsActive = false
	_, _, err := execute(t, backend, "", "search", "steel")
	if err == nil || err.Error() != "Please select a file before searching." {
		t.Fatalf("search error = %v", err)
	}
	if len(backend.searches) != 0 {
		t.Fatalf("searched without a file")
	}
}

func TestUploadSelectsNewFile(t *testing.T) {
	backend := newFake()
	backend.upload = api.UploadResult{FileID: "2", RowsProcessed: 5}
	path := filepath.Join(t.TempDir(), "exports.csv")
	writeFile(t, path, "Product,City\nSteel,Pune\n")

	out, _, err := execute(t, backend, "", "upload", path)
	if err != nil {
		t.Fatalf("upload error = %v", err)
	}
	if !strings.Contains(out, "File uploaded successfully") || !strings.Contains(out, "Selected 2") {
		t.Fatalf("upload output = %q", out)
	}
	if len(backend.selected) != 1 || backend.selected[0] != "2" {
		t.Fatalf("selected = %v, want [2]", backend.selected)
	}

	backend.selected = nil
	if _, _, err := execute(t, backend, "", "upload", path, "--no-select"); err != nil {
		t.Fatalf("upload --no-select error = %v", err)
	}
	if len(backend.selected) != 0 {
		t.Fatalf("selected = %v with --no-select", backend.selected)
	}
}

func TestUploadRejectsUnsupportedFile(t *testing.T) {
	backend := newFake()
	path := filepath.Join(t.TempDir(), "notes.txt")
	writeFile(t, path, "hello")
	if _, _, err := execute(t, backend, "", "upload", path); err == nil {
		t.Fatalf("upload of .txt succeeded")
	}
}

func TestProgressIdle(t *testing.T) {
	out, _, err := execute(t, newFake(), "", "progress", "--follow")
	if err != nil {
		t.Fatalf("progress error = %v", err)
	}
	if strings.TrimSpace(out) != "idle" {
		t.Fatalf("progress output = %q, want idle", out)
	}
}

func TestProgressLine(t *testing.T) {
	tests := []struct {
		p    api.Progress
		want string
	}{
		{api.Progress{Status: api.ProgressInProgress, ProcessedRows: 500, TotalRows: 2000, CurrentFile: "a.csv"}, "in_progress 500/2,000 rows a.csv"},
		{api.Progress{Status: api.ProgressInProgress}, "in_progress"},
		{api.Progress{Status: api.ProgressError, Error: "bad header"}, "error bad header"},
		{api.Progress{Status: api.ProgressCompleted, ProcessedRows: 10}, "completed 10 rows"},
	}
	for _, tt := range tests {
		if got := progressLine(tt.p); got != tt.want {
			t.Fatalf("progressLine(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	backend := newFake()
	backend.sugs = []api.Suggestion{{Value: "Steel pipe", Field: "Product"}, {Value: "Steelworks"}}
	out, _, err := execute(t, backend, "", "suggest", "st")
	if err != nil {
		t.Fatalf("suggest error = %v", err)
	}
	if out != "Steel pipe (Product)\nSteelworks\n" {
		t.Fatalf("suggest output = %q", out)
	}

	if _, _, err := execute(t, backend, "", "suggest", "s"); err == nil {
		t.Fatalf("one-character suggest succeeded")
	}
}

func TestColumnsMarksDefaults(t *testing.T) {
	out, _, err := execute(t, newFake(), "", "columns")
	if err != nil {
		t.Fatalf("columns error = %v", err)
	}
	if !strings.Contains(out, "Foreign Company") || !strings.Contains(out, "*") {
		t.Fatalf("columns output = %s", out)
	}
}

func TestRootRunsTUIWithConfig(t *testing.T) {
	var got app.Options
	root := NewRootCommand(Options{
		Version: "1.0.0",
		RunTUI: func(_ context.Context, opts app.Options) error {
			got = opts
			return nil
		},
	})
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.toml"), "--api", "http://backend:9000"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("root error = %v", err)
	}
	if got.Config.APIURL != "http://backend:9000" {
		t.Fatalf("APIURL = %q, want --api override", got.Config.APIURL)
	}
	if got.Version != "1.0.0" {
		t.Fatalf("Version = %q", got.Version)
	}
}

func TestExecuteReportsErrors(t *testing.T) {
	var stderr bytes.Buffer
	code := Execute(context.Background(), Options{
		NewBackend: func(config.Config) (api.Backend, error) { return nil, errors.New("no backend") },
	}, []string{"--config", filepath.Join(t.TempDir(), "c.toml"), "files"}, &stderr)
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "rowfinder: no backend") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestConfirmAnswers(t *testing.T) {
	tests := map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "": false, "maybe\n": false}
	for in, want := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(in), &out, "Delete?")
		if err != nil {
			t.Fatalf("confirm(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("confirm(%q) = %v, want %v", in, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}
