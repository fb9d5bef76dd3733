package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/format"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/upload"
)

func newUploadCmd(e *env) *cobra.Command {
	var noSelect bool

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a CSV or XLSX file",
		Long: `Upload a CSV or XLSX file and wait for the backend to index it.

Progress is printed to stderr. The uploaded file becomes the active file
unless --no-select is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := upload.Validate(args[0]); err != nil {
				return err
			}
			reg, backend, cfg, err := e.registry()
			if err != nil {
				return err
			}

			progress := cmd.ErrOrStderr()
			uploader := upload.NewUploader(backend, cfg.ProgressInterval)
			res, err := uploader.Run(cmd.Context(), args[0], func(ev upload.Event) {
				reportUpload(progress, ev)
			})
			if err != nil {
				return fmt.Errorf("upload failed: %s", api.Message(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "File uploaded successfully")
			if res.RowsProcessed > 0 {
				fmt.Fprintf(out, "%s rows processed\n", format.Number(res.RowsProcessed))
			}
			if noSelect {
				return nil
			}
			sel, err := reg.AfterUpload(cmd.Context(), res)
			if err != nil {
				return fmt.Errorf("%s: %s", registry.MsgSelectFailed, api.Message(err))
			}
			if sel != nil {
				fmt.Fprintf(out, "Selected %s (%s)\n", sel.ID, format.Plural(len(sel.Columns), "column", "columns"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSelect, "no-select", false, "do not make the uploaded file active")
	return cmd
}

func reportUpload(w io.Writer, ev upload.Event) {
	switch ev.Phase {
	case upload.Started:
		fmt.Fprintln(w, "Uploading file...")
	case upload.Progressing:
		if ev.Progress.TotalRows > 0 {
			fmt.Fprintf(w, "Processing %s of %s rows (%.0f%%)\n",
				format.Number(ev.Progress.ProcessedRows), format.Number(ev.Progress.TotalRows), ev.Fraction*100)
		}
	case upload.Completed:
		fmt.Fprintln(w, "Upload complete!")
	}
}

func newProgressCmd(e *env) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the backend's upload progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cfg, err := e.backend()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			p, err := backend.UploadProgress(cmd.Context())
			if err != nil {
				return fmt.Errorf("load progress: %s", api.Message(err))
			}
			fmt.Fprintln(out, progressLine(p))
			if !follow || p.Status != api.ProgressInProgress {
				return nil
			}

			last := progressLine(p)
			_, err = upload.Watch(cmd.Context(), backend, cfg.ProgressInterval, func(p api.Progress) {
				if line := progressLine(p); line != last {
					fmt.Fprintln(out, line)
					last = line
				}
			})
			return err
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep polling until the upload finishes")
	return cmd
}

func progressLine(p api.Progress) string {
	return strings.TrimSpace(progressText(p))
}

func progressText(p api.Progress) string {
	switch p.Status {
	case api.ProgressInProgress:
		if p.TotalRows > 0 {
			return fmt.Sprintf("in_progress %s/%s rows %s", format.Number(p.ProcessedRows), format.Number(p.TotalRows), p.CurrentFile)
		}
		return "in_progress " + p.CurrentFile
	case api.ProgressError:
		return "error " + p.Error
	case api.ProgressCompleted:
		return fmt.Sprintf("completed %s rows %s", format.Number(p.ProcessedRows), p.CurrentFile)
	default:
		return string(p.Status)
	}
}
