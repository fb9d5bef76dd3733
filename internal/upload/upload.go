// Package upload validates local files and sends them to the backend while
// polling the server's progress tracker.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rowfinder/rowfinder/internal/api"
)

var (
	// ErrNoFile is returned when no path was given.
	ErrNoFile = errors.New("Please select a file first")
	// ErrUnsupportedType is returned for anything but .csv and .xlsx.
	ErrUnsupportedType = errors.New("Please upload a CSV or XLSX file")
)

// Extensions accepted by the backend.
var Extensions = []string{".csv", ".xlsx"}

const defaultInterval = 500 * time.Millisecond

// Backend is the slice of the API used for uploads.
type Backend interface {
	Upload(ctx context.Context, path string) (api.UploadResult, error)
	UploadProgress(ctx context.Context) (api.Progress, error)
}

// Phase marks where an upload is.
type Phase int

const (
	Started Phase = iota
	Progressing
	Completed
	Failed
)

// Event is reported while an upload runs.
type Event struct {
	Phase    Phase
	Fraction float64 // negative while progress is indeterminate
	Progress api.Progress
	Result   api.UploadResult
	Err      error
}

// Report receives upload events. It may be called from several goroutines
// but never concurrently with a terminal event.
type Report func(Event)

// Supported reports whether path has an accepted extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Validate checks that path names an existing, supported regular file and
// returns it cleaned and absolute.
func Validate(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrNoFile
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", abs)
	}
	if !Supported(abs) {
		return "", ErrUnsupportedType
	}
	return abs, nil
}

// Uploader sends files and relays progress.
type Uploader struct {
	backend  Backend
	interval time.Duration
}

// NewUploader builds an Uploader polling progress every interval.
func NewUploader(backend Backend, interval time.Duration) *Uploader {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Uploader{backend: backend, interval: interval}
}

// Run validates path, streams it to the backend and polls progress until the
// POST returns. Validation failures return before any event is reported.
// There is no retry.
func (u *Uploader) Run(ctx context.Context, path string, report Report) (api.UploadResult, error) {
	if report == nil {
		report = func(Event) {}
	}
	resolved, err := Validate(path)
	if err != nil {
		return api.UploadResult{}, err
	}

	report(Event{Phase: Started, Fraction: -1})

	pollCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = poll(pollCtx, u.backend, u.interval, true, func(p api.Progress) {
			fraction := -1.0
			if p.TotalRows > 0 || p.Status == api.ProgressCompleted {
				fraction = p.Fraction()
			}
			report(Event{Phase: Progressing, Fraction: fraction, Progress: p})
		})
	}()

	res, err := u.backend.Upload(ctx, resolved)
	stop()
	wg.Wait()

	if err != nil {
		err = fmt.Errorf("upload %s: %w", filepath.Base(resolved), err)
		report(Event{Phase: Failed, Err: err})
		return api.UploadResult{}, err
	}
	report(Event{Phase: Completed, Fraction: 1, Result: res})
	return res, nil
}
