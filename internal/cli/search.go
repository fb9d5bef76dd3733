package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/export"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/search"
	"github.com/rowfinder/rowfinder/internal/suggest"
)

// maxCellWidth keeps table output readable for wide text columns.
const maxCellWidth = 40

func newSearchCmd(e *env) *cobra.Command {
	var (
		fields []string
		fileID string
		page   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "search TERMS...",
		Short: "Search the active file",
		Long: `Search rows of the active file. Terms are comma separated; separate
arguments are joined with commas, so "steel pipe" is one term and
steel pipe are two.

Without --fields the default columns (Product and the company columns)
are searched. Without --file the backend's active file is used.

Examples:
  rowfinder search steel
  rowfinder search "steel pipe, copper" --fields Product,City
  rowfinder search steel --page 2 --format csv > page2.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, backend, cfg, err := e.registry()
			if err != nil {
				return err
			}
			if err := resolveFile(ctx, reg, api.FileID(fileID)); err != nil {
				return err
			}
			if len(fields) == 0 {
				if fields, err = defaultFields(ctx, backend); err != nil {
					return err
				}
			} else {
				for i, f := range fields {
					fields[i] = columns.FieldName(strings.TrimSpace(f))
				}
			}

			coordinator := search.NewCoordinator(backend, reg.Store(), cfg.PageSize)
			out, err := coordinator.SearchPage(ctx, strings.Join(args, ","), fields, page)
			if err != nil {
				return errors.New(search.ErrorBanner(err).Message)
			}
			return writeResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), output, out)
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "columns to search, comma separated")
	cmd.Flags().StringVar(&fileID, "file", "", "file ID to select before searching")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().StringVarP(&output, "format", "o", "table", "output format: table, csv, json or yaml")
	return cmd
}

// resolveFile selects id, or adopts the backend's active file when id is
// empty.
func resolveFile(ctx context.Context, reg *registry.Registry, id api.FileID) error {
	if id != "" {
		if _, err := reg.Select(ctx, id); err != nil {
			return fmt.Errorf("%s: %s", registry.MsgSelectFailed, api.Message(err))
		}
		return nil
	}
	if _, err := reg.Load(ctx); err != nil {
		return fmt.Errorf("%s: %s", registry.MsgLoadFailed, api.Message(err))
	}
	if _, ok := reg.Store().AdoptActive(); !ok {
		return errors.New(search.ErrNoFile.Message)
	}
	return nil
}

// defaultFields returns the pre-checked columns of the active file.
func defaultFields(ctx context.Context, backend api.Backend) ([]string, error) {
	info, err := backend.ActiveColumns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load columns: %s", api.Message(err))
	}
	fields := columns.NewSelector(columns.Parse(info.Columns, info.RawColumns)).Selected()
	if len(fields) == 0 {
		return nil, errors.New(search.ErrNoFields.Message)
	}
	return fields, nil
}

func writeResults(out, status io.Writer, output string, o search.Outcome) error {
	p := o.Page
	if output == "table" {
		if o.Empty() {
			fmt.Fprintln(out, o.Banner.Message)
			return nil
		}
		cols := export.Columns(p.Results)
		rows := make([][]string, 0, len(p.Results))
		for _, r := range p.Results {
			row := make([]string, len(cols))
			for i, c := range cols {
				v, _ := r.Get(c)
				row[i] = format.Truncate(format.Oneline(v), maxCellWidth)
			}
			rows = append(rows, row)
		}
		fmt.Fprintln(out, renderTable(cols, rows))
		fmt.Fprintln(out, summary(p))
		return nil
	}

	f, err := export.ParseFormat(output)
	if err != nil {
		return err
	}
	fmt.Fprintln(status, summary(p))
	return export.Write(out, f, p.Results)
}

func summary(p api.SearchPage) string {
	s := "Found " + format.Plural(int(p.TotalCount), "result", "results")
	if p.TotalPages > 1 {
		s += fmt.Sprintf(" · page %d of %d", p.Page, p.TotalPages)
	}
	return s
}

func newSuggestCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Show autocomplete suggestions for TEXT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := e.backend()
			if err != nil {
				return err
			}
			if !suggest.Eligible(args[0]) {
				return fmt.Errorf("enter at least %d characters", suggest.MinQueryLen)
			}
			items, err := suggest.NewSource(backend).Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load suggestions: %s", api.Message(err))
			}
			out := cmd.OutOrStdout()
			for _, s := range items {
				fmt.Fprintln(out, s.Display())
			}
			return nil
		},
	}
}
