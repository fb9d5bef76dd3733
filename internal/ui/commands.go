package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rowfinder/rowfinder/internal/api"
	"github.com/rowfinder/rowfinder/internal/export"
	"github.com/rowfinder/rowfinder/internal/preview"
	"github.com/rowfinder/rowfinder/internal/registry"
	"github.com/rowfinder/rowfinder/internal/search"
	"github.com/rowfinder/rowfinder/internal/suggest"
	"github.com/rowfinder/rowfinder/internal/upload"
)

// Messages

type filesLoadedMsg struct {
	err error
}

type fileSelectedMsg struct {
	id  api.FileID
	sel registry.Selection
	err error
}

type fileDeletedMsg struct {
	id   api.FileID
	name string
	err  error
}

type searchDoneMsg struct {
	outcome search.Outcome
	err     error
}

type suggestionsMsg struct {
	query string
	items []api.Suggestion
	err   error
}

type uploadEventMsg struct {
	event  upload.Event
	events <-chan upload.Event
}

type afterUploadMsg struct {
	sel *registry.Selection
	err error
}

type hideProgressMsg struct {
	gen int
}

type toastTickMsg time.Time

type previewMsg struct {
	path   string
	sample preview.Sample
	err    error
}

type logsMsg struct {
	lines []string
	err   error
}

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

type copiedMsg struct {
	title string
	err   error
}

// Commands

func loadFilesCmd(ctx context.Context, reg *registry.Registry) tea.Cmd {
	return func() tea.Msg {
		_, err := reg.Load(ctx)
		return filesLoadedMsg{err: err}
	}
}

func selectFileCmd(ctx context.Context, reg *registry.Registry, id api.FileID) tea.Cmd {
	return func() tea.Msg {
		sel, err := reg.Select(ctx, id)
		return fileSelectedMsg{id: id, sel: sel, err: err}
	}
}

func deleteFileCmd(ctx context.Context, reg *registry.Registry, id api.FileID, name string) tea.Cmd {
	return func() tea.Msg {
		return fileDeletedMsg{id: id, name: name, err: reg.Delete(ctx, id)}
	}
}

func searchCmd(ctx context.Context, c *search.Coordinator, text string, fields []string) tea.Cmd {
	return func() tea.Msg {
		out, err := c.Search(ctx, text, fields)
		return searchDoneMsg{outcome: out, err: err}
	}
}

func pageCmd(ctx context.Context, c *search.Coordinator, page int) tea.Cmd {
	return func() tea.Msg {
		out, err := c.GoToPage(ctx, page)
		return searchDoneMsg{outcome: out, err: err}
	}
}

func suggestCmd(ctx context.Context, src *suggest.Source, text string) tea.Cmd {
	return func() tea.Msg {
		items, err := src.Lookup(ctx, text)
		return suggestionsMsg{query: text, items: items, err: err}
	}
}

// startUploadCmd runs the upload in the background and relays its events
// through a channel that waitUploadCmd drains one message at a time.
func startUploadCmd(ctx context.Context, up *upload.Uploader, path string) tea.Cmd {
	return func() tea.Msg {
		events := make(chan upload.Event, 8)
		go func() {
			defer close(events)
			terminal := false
			_, err := up.Run(ctx, path, func(e upload.Event) {
				if e.Phase == upload.Completed || e.Phase == upload.Failed {
					terminal = true
				}
				events <- e
			})
			if err != nil && !terminal {
				events <- upload.Event{Phase: upload.Failed, Err: err}
			}
		}()
		return waitUploadCmd(events)()
	}
}

func waitUploadCmd(events <-chan upload.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return nil
		}
		return uploadEventMsg{event: e, events: events}
	}
}

func afterUploadCmd(ctx context.Context, reg *registry.Registry, res api.UploadResult) tea.Cmd {
	return func() tea.Msg {
		sel, err := reg.AfterUpload(ctx, res)
		return afterUploadMsg{sel: sel, err: err}
	}
}

func hideProgressCmd(gen int) tea.Cmd {
	return tea.Tick(ProgressHideDelay, func(time.Time) tea.Msg {
		return hideProgressMsg{gen: gen}
	})
}

func toastTickCmd() tea.Cmd {
	return tea.Tick(ToastTick, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

func previewCmd(path string) tea.Cmd {
	return func() tea.Msg {
		resolved, err := upload.Validate(path)
		if err != nil {
			return previewMsg{path: path, err: err}
		}
		sample, err := preview.Head(resolved, PreviewLines)
		return previewMsg{path: path, sample: sample, err: err}
	}
}

func tailLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := preview.Tail(path, LogTailLines)
		return logsMsg{lines: lines, err: err}
	}
}

func exportCmd(path string, f export.Format, rows []api.Row) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Create(path)
		if err != nil {
			return exportDoneMsg{path: path, err: fmt.Errorf("create export: %w", err)}
		}
		werr := export.Write(file, f, rows)
		cerr := file.Close()
		if werr == nil {
			werr = cerr
		}
		return exportDoneMsg{path: path, rows: len(rows), err: werr}
	}
}

func copyCmd(title, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{title: title, err: clipboard.WriteAll(text)}
	}
}
