package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/app"
	"github.com/rowfinder/rowfinder/internal/config"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/state"
)

// Options configure the command tree.
type Options struct {
	Version string
	// NewBackend builds the API client. Nil uses api.NewClient.
	NewBackend func(cfg config.Config) (api.Backend, error)
	// RunTUI starts the interactive UI. Nil uses app.Run.
	RunTUI func(ctx context.Context, opts app.Options) error
}

// env carries the global flags and builds what each command needs.
type env struct {
	opts       Options
	configPath string
	prefsPath  string
	apiURL     string
	verbose    bool
}

// config loads the config file and applies --api.
func (e *env) config() (config.Config, error) {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg.WithAPIURL(e.apiURL), nil
}

func (e *env) backend() (api.Backend, config.Config, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, config.Config{}, err
	}
	if e.opts.NewBackend != nil {
		b, err := e.opts.NewBackend(cfg)
		return b, cfg, err
	}
	client, err := api.NewClient(cfg.APIURL, api.Options{
		RequestTimeout: cfg.RequestTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		Version:        e.opts.Version,
	})
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("init api client: %w", err)
	}
	return client, cfg, nil
}

// registry returns a registry over a fresh store. One-shot commands start
// with no selection.
func (e *env) registry() (*registry.Registry, api.Backend, config.Config, error) {
	backend, cfg, err := e.backend()
	if err != nil {
		return nil, nil, config.Config{}, err
	}
	return registry.New(backend, &state.Store{}), backend, cfg, nil
}

// NewRootCommand builds the rowfinder command tree. Without a subcommand it
// starts the TUI.
func NewRootCommand(opts Options) *cobra.Command {
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:   "rowfinder",
		Short: "Search rows of uploaded CSV files",
		Long: `rowfinder is a terminal client for the CSV upload and search backend.

Run without arguments for the interactive interface, or use a subcommand
for scripting:

  rowfinder files
  rowfinder upload ./imports.csv
  rowfinder search "steel pipe" --fields Product,City --format csv`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if e.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := e.config()
			if err != nil {
				return err
			}
			run := e.opts.RunTUI
			if run == nil {
				run = app.Run
			}
			return run(cmd.Context(), app.Options{
				Config:    cfg,
				PrefsPath: e.prefsPath,
				Version:   e.opts.Version,
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&e.configPath, "config", "", "config file (default ~/.config/rowfinder/config.toml)")
	flags.StringVar(&e.apiURL, "api", "", "backend URL, overrides api_url")
	flags.BoolVarP(&e.verbose, "verbose", "v", false, "log requests and failures to stderr")
	root.Flags().StringVar(&e.prefsPath, "prefs", "", "preferences file (default ~/.config/rowfinder/prefs.toml)")

	root.AddCommand(
		newFilesCmd(e),
		newSelectCmd(e),
		newDeleteCmd(e),
		newColumnsCmd(e),
		newUploadCmd(e),
		newProgressCmd(e),
		newSearchCmd(e),
		newSuggestCmd(e),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, opts Options, args []string, stderr io.Writer) int {
	root := NewRootCommand(opts)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "rowfinder: %v\n", err)
		return 1
	}
	return 0
}
