package app

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rowfinder/rowfinder/internal/config"
	"github.com/rowfinder/rowfinder/internal/prefs"
)

func TestApplyPrefs(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		want     int
	}{
		{"unset keeps config", 0, 20},
		{"override", 50, 50},
		{"capped", 10000, config.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := applyPrefs(config.Default(), prefs.Prefs{PageSize: tt.pageSize})
			if cfg.PageSize != tt.want {
				t.Errorf("PageSize = %d, want %d", cfg.PageSize, tt.want)
			}
		})
	}
}

func TestOpenLogCreatesDirectory(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "state", "rowfinder", "rowfinder.log")

	closer, err := openLog(path)
	if err != nil {
		t.Fatalf("openLog() error = %v", err)
	}
	log.Printf("search failed: boom")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "search failed: boom") {
		t.Fatalf("log = %q, want logged line", data)
	}
}

func TestVersionOrDev(t *testing.T) {
	if got := versionOrDev(""); got != "dev" {
		t.Fatalf("versionOrDev(\"\") = %q, want dev", got)
	}
	if got := versionOrDev("1.2.0"); got != "1.2.0" {
		t.Fatalf("versionOrDev(1.2.0) = %q", got)
	}
}
