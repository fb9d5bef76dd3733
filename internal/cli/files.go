package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/columns"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/registry"
)

// fileRecord is the json/yaml shape of a listed file.
type fileRecord struct {
	ID         string `json:"id" yaml:"id"`
	Filename   string `json:"filename" yaml:"filename"`
	UploadDate string `json:"upload_date" yaml:"upload_date"`
	RowCount   int64  `json:"row_count" yaml:"row_count"`
	Active     bool   `json:"active" yaml:"active"`
}

func newFilesCmd(e *env) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, _, err := e.registry()
			if err != nil {
				return err
			}
			files, err := reg.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", registry.MsgLoadFailed, api.Message(err))
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 && output == "table" {
				fmt.Fprintln(out, registry.MsgNoFiles)
				return nil
			}

			switch output {
			case "table":
				rows := make([][]string, 0, len(files))
				for _, f := range files {
					active := ""
					if f.IsActive {
						active = "●"
					}
					rows = append(rows, []string{
						string(f.ID), f.Filename, format.Number(f.RowCount), format.Date(f.UploadDate), active,
					})
				}
				fmt.Fprintln(out, renderTable([]string{"ID", "FILE", "ROWS", "UPLOADED", "ACTIVE"}, rows))
				return nil
			case "json", "yaml":
				records := make([]fileRecord, 0, len(files))
				for _, f := range files {
					records = append(records, fileRecord{
						ID:         string(f.ID),
						Filename:   f.Filename,
						UploadDate: format.Date(f.UploadDate),
						RowCount:   f.RowCount,
						Active:     f.IsActive,
					})
				}
				return encode(out, output, records)
			default:
				return fmt.Errorf("unknown format %q (want table, json or yaml)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "format", "o", "table", "output format: table, json or yaml")
	return cmd
}

func newSelectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Make a file the active search target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, _, err := e.registry()
			if err != nil {
				return err
			}
			sel, err := reg.Select(cmd.Context(), api.FileID(args[0]))
			if err != nil {
				return fmt.Errorf("%s: %s", registry.MsgSelectFailed, api.Message(err))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, registry.MsgSelected)
			name := sel.Filename
			if name == "" {
				name = string(sel.ID)
			}
			fmt.Fprintf(out, "%s: %s\n", name, format.Plural(len(sel.Columns), "column", "columns"))
			return nil
		},
	}
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, _, err := e.registry()
			if err != nil {
				return err
			}
			id := api.FileID(args[0])
			name := string(id)
			if files, err := reg.Load(cmd.Context()); err == nil {
				for _, f := range files {
					if f.ID == id {
						name = f.Filename
						break
					}
				}
			}

			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), registry.ConfirmPrompt(name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			if err := reg.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete failed: %s", api.Message(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), registry.MsgDeleted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// confirm asks prompt on out and reads a y/n answer from in. Anything but
// y or yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func newColumnsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "List the searchable columns of the active file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := e.backend()
			if err != nil {
				return err
			}
			info, err := backend.ActiveColumns(cmd.Context())
			if err != nil {
				return fmt.Errorf("load columns: %s", api.Message(err))
			}
			out := cmd.OutOrStdout()
			if info.CurrentFile != "" {
				fmt.Fprintf(out, "%s\n\n", info.CurrentFile)
			}
			selector := columns.NewSelector(columns.Parse(info.Columns, info.RawColumns))
			if selector.Len() == 0 {
				fmt.Fprintln(out, "No columns")
				return nil
			}
			rows := make([][]string, 0, selector.Len())
			for _, c := range selector.Columns() {
				mark := ""
				if c.Priority {
					mark = "*"
				}
				rows = append(rows, []string{c.Name, c.Label, columns.FieldName(c.Name), mark})
			}
			fmt.Fprintln(out, renderTable([]string{"COLUMN", "LABEL", "FIELD", "DEFAULT"}, rows))
			return nil
		},
	}
}
