package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/config"
	"github.com/rowfinder/rowfinder/internal/prefs"
	"github.com/rowfinder/rowfinder/internal/state"
	"github.com/rowfinder/rowfinder/internal/ui"
)

// Options configure the rowfinder TUI.
type Options struct {
	Config    config.Config
	PrefsPath string // empty uses default ~/.config/rowfinder/prefs.toml
	Version   string
}

// Run boots the rowfinder TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	userPrefs := prefs.Load(opts.PrefsPath)
	cfg := applyPrefs(opts.Config, userPrefs)

	logFile, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	client, err := api.NewClient(cfg.APIURL, api.Options{
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		Version:        opts.Version,
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	log.Printf("rowfinder %s starting against %s", versionOrDev(opts.Version), client.BaseURL())
	if !prefs.Exists(opts.PrefsPath) {
		log.Printf("no preferences file yet, using defaults")
	}

	uiOpts := ui.Options{
		Context:   ctx,
		Backend:   client,
		Store:     &state.Store{},
		Config:    cfg,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
		UploadDir: userPrefs.LastUploadDir,
	}
	return ui.Run(uiOpts)
}

// applyPrefs lets a saved page size override the config file.
func applyPrefs(cfg config.Config, p prefs.Prefs) config.Config {
	if p.PageSize > 0 {
		cfg.PageSize = min(p.PageSize, config.MaxPageSize)
	}
	return cfg
}

// openLog sends the standard logger to path. The terminal belongs to the
// TUI, so nothing may be written to stderr while it runs.
func openLog(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := tea.LogToFile(path, "rowfinder")
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func versionOrDev(v string) string {
	if v == "" {
		return "dev"
	}
	return v
}
