package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/rowfinder/rowfinder/internal/api"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Files               []api.File
	SelectedID          api.FileID
	SelectedName        string
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive file-list failures
}

// HasSelection reports whether a file is selected.
func (s Snapshot) HasSelection() bool {
	return s.SelectedID != ""
}

// IsOffline returns true when the API has been unreachable for multiple loads.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the file list and the single selected file. Components read the
// selection through accessors rather than keeping their own copy.
type Store struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	selectGen uint64
}

// Update replaces the file list. When err is non-nil the previous list is
// kept but the error is recorded for visibility.
func (s *Store) Update(files []api.File, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Files = cloneFiles(files)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	if s.snapshot.SelectedID != "" {
		if f, ok := findFile(s.snapshot.Files, s.snapshot.SelectedID); ok {
			s.snapshot.SelectedName = f.Filename
		}
	}
}

// SetFiles stores a freshly loaded file list.
func (s *Store) SetFiles(files []api.File) {
	s.Update(files, nil)
}

// Files returns a copy of the list with IsActive mirroring the selection.
func (s *Store) Files() []api.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return mirrorActive(s.snapshot.Files, s.snapshot.SelectedID)
}

// SelectedFileID returns the selected file or "" when none is selected.
func (s *Store) SelectedFileID() api.FileID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.SelectedID
}

// SelectedFile returns the selected file's list entry when it is known.
func (s *Store) SelectedFile() (api.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.SelectedID == "" {
		return api.File{}, false
	}
	f, ok := findFile(s.snapshot.Files, s.snapshot.SelectedID)
	if !ok {
		return api.File{ID: s.snapshot.SelectedID, Filename: s.snapshot.SelectedName}, true
	}
	f.IsActive = true
	return f, true
}

// BeginSelect registers a new select request and returns its generation.
func (s *Store) BeginSelect() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectGen++
	return s.selectGen
}

// CommitSelect records id as selected if gen is still the newest select.
func (s *Store) CommitSelect(gen uint64, id api.FileID, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.selectGen {
		return false
	}
	s.snapshot.SelectedID = id
	s.snapshot.SelectedName = name
	if name == "" {
		if f, ok := findFile(s.snapshot.Files, id); ok {
			s.snapshot.SelectedName = f.Filename
		}
	}
	return true
}

// FailSelect clears the selection if gen is still the newest select. The
// previous selection is not restored.
func (s *Store) FailSelect(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.selectGen {
		return false
	}
	s.snapshot.SelectedID = ""
	s.snapshot.SelectedName = ""
	return true
}

// ClearSelection drops the selection unconditionally.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectGen++
	s.snapshot.SelectedID = ""
	s.snapshot.SelectedName = ""
}

// AdoptActive selects the file the server reports as active when nothing is
// selected locally. Used by one-shot CLI commands.
func (s *Store) AdoptActive() (api.FileID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.SelectedID != "" {
		return s.snapshot.SelectedID, true
	}
	for _, f := range s.snapshot.Files {
		if f.IsActive {
			s.snapshot.SelectedID = f.ID
			s.snapshot.SelectedName = f.Filename
			return f.ID, true
		}
	}
	return "", false
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Files = mirrorActive(s.snapshot.Files, s.snapshot.SelectedID)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func findFile(files []api.File, id api.FileID) (api.File, bool) {
	for _, f := range files {
		if f.ID == id {
			return f, true
		}
	}
	return api.File{}, false
}

func mirrorActive(files []api.File, selected api.FileID) []api.File {
	dup := cloneFiles(files)
	for i := range dup {
		dup[i].IsActive = selected != "" && dup[i].ID == selected
	}
	return dup
}

func cloneFiles(files []api.File) []api.File {
	if len(files) == 0 {
		return nil
	}
	dup := make([]api.File, len(files))
	copy(dup, files)
	return dup
}
