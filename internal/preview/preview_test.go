package preview

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHead(t *testing.T) {
	path := write(t, "rows.csv", "\ufeffProduct,\"HS Code\", City\r\nWidget,8471,Pune\r\nGadget,8517,Delhi\r\n")

	tests := []struct {
		name      string
		n         int
		lines     []string
		truncated bool
	}{
		{"zero", 0, nil, false},
		{"one", 1, []string{`Product,"HS Code", City`}, true},
		{"exact", 3, []string{`Product,"HS Code", City`, "Widget,8471,Pune", "Gadget,8517,Delhi"}, false},
		{"more than file", 10, []string{`Product,"HS Code", City`, "Widget,8471,Pune", "Gadget,8517,Delhi"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Head(path, tt.n)
			if err != nil {
				t.Fatalf("Head() error = %v", err)
			}
			if !reflect.DeepEqual(got.Lines, tt.lines) {
				t.Errorf("Head().Lines = %q, want %q", got.Lines, tt.lines)
			}
			if got.Truncated != tt.truncated {
				t.Errorf("Head().Truncated = %v, want %v", got.Truncated, tt.truncated)
			}
		})
	}

	got, err := Head(path, 2)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	want := []string{"Product", "HS Code", "City"}
	if !reflect.DeepEqual(got.Header, want) {
		t.Fatalf("Head().Header = %q, want %q", got.Header, want)
	}
}

func TestHead_XLSXIsSkipped(t *testing.T) {
	path := write(t, "book.xlsx", "PK\x03\x04binary")
	got, err := Head(path, 5)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if len(got.Lines) != 0 || got.Header != nil {
		t.Fatalf("Head(xlsx) = %#v, want empty", got)
	}
}

func TestHead_MissingFile(t *testing.T) {
	_, err := Head(filepath.Join(t.TempDir(), "nope.csv"), 3)
	if err == nil || !strings.Contains(err.Error(), "open preview") {
		t.Fatalf("Head() error = %v, want open preview error", err)
	}
}

func TestTail(t *testing.T) {
	var b strings.Builder
	for _, l := range []string{"line 1", "line 2", "line 3", "line 4", "line 5"} {
		b.WriteString(l + "\n")
	}
	path := write(t, "rowfinder.log", b.String())

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero lines", 0, nil},
		{"fewer than file", 2, []string{"line 4", "line 5"}},
		{"exact", 5, []string{"line 1", "line 2", "line 3", "line 4", "line 5"}},
		{"more than file", 10, []string{"line 1", "line 2", "line 3", "line 4", "line 5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tail(path, tt.maxLines)
			if err != nil {
				t.Fatalf("Tail() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tail() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTail_MissingFile(t *testing.T) {
	got, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Tail() = %v, want nil", got)
	}
}
