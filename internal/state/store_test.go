package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rowfinder/rowfinder/internal/api"
)

func sampleFiles() []api.File {
	return []api.File{
		{ID: "1", Filename: "a.csv", IsActive: true},
		{ID: "2", Filename: "b.csv"},
	}
}

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.SetFiles(sampleFiles())

	snap := s.Snapshot()
	if len(snap.Files) != 2 || snap.Files[0].Filename != "a.csv" {
		t.Fatalf("snapshot files = %#v, want 2 files", snap.Files)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Files[0].Filename = "mutated"
	if s.Snapshot().Files[0].Filename != "a.csv" {
		t.Fatalf("Snapshot should clone files")
	}
}

func TestStore_FilesMirrorSelection(t *testing.T) {
	var s Store
	s.SetFiles(sampleFiles())

	// Server says file 1 is active but nothing is selected locally.
	for _, f := range s.Files() {
		if f.IsActive {
			t.Fatalf("file %s active without a selection", f.ID)
		}
	}

	gen := s.BeginSelect()
	if !s.CommitSelect(gen, "2", "") {
		t.Fatalf("CommitSelect returned false for newest generation")
	}
	files := s.Files()
	if files[0].IsActive || !files[1].IsActive {
		t.Fatalf("IsActive = %v/%v, want false/true", files[0].IsActive, files[1].IsActive)
	}
	if s.SelectedFileID() != "2" {
		t.Fatalf("SelectedFileID = %q, want 2", s.SelectedFileID())
	}
	f, ok := s.SelectedFile()
	if !ok || f.Filename != "b.csv" || !f.IsActive {
		t.Fatalf("SelectedFile = %#v,%v", f, ok)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store
	s.SetFiles(sampleFiles())

	origErr := errors.New("boom")
	s.Update(nil, origErr)
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if len(snap.Files) != 2 {
		t.Fatalf("files changed on error: %#v", snap.Files)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapping %v", snap.LastError, origErr)
	}
	if !snap.IsOffline() {
		t.Fatalf("IsOffline = false after two failures")
	}

	s.SetFiles(sampleFiles())
	if snap := s.Snapshot(); snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("success did not reset error state: %#v", snap)
	}
}

func TestStore_StaleCommitIsIgnored(t *testing.T) {
	var s Store
	s.SetFiles(sampleFiles())

	older := s.BeginSelect()
	newer := s.BeginSelect()

	if !s.CommitSelect(newer, "2", "b.csv") {
		t.Fatalf("newest commit rejected")
	}
	if s.CommitSelect(older, "1", "a.csv") {
		t.Fatalf("stale commit accepted")
	}
	if s.FailSelect(older) {
		t.Fatalf("stale failure accepted")
	}
	if s.SelectedFileID() != "2" {
		t.Fatalf("SelectedFileID = %q, want 2", s.SelectedFileID())
	}
}

func TestStore_FailSelectClearsSelection(t *testing.T) {
	var s Store
	gen := s.BeginSelect()
	s.CommitSelect(gen, "1", "a.csv")

	gen = s.BeginSelect()
	if !s.FailSelect(gen) {
		t.Fatalf("FailSelect returned false for newest generation")
	}
	if s.SelectedFileID() != "" {
		t.Fatalf("SelectedFileID = %q, want empty after failed select", s.SelectedFileID())
	}
	if _, ok := s.SelectedFile(); ok {
		t.Fatalf("SelectedFile ok = true after failed select")
	}
}

func TestStore_ClearSelectionInvalidatesPendingSelect(t *testing.T) {
	var s Store
	gen := s.BeginSelect()
	s.ClearSelection()
	if s.CommitSelect(gen, "1", "a.csv") {
		t.Fatalf("select issued before ClearSelection committed")
	}
}

func TestStore_AdoptActive(t *testing.T) {
	var s Store
	if _, ok := s.AdoptActive(); ok {
		t.Fatalf("AdoptActive ok with no files")
	}
	s.SetFiles(sampleFiles())
	id, ok := s.AdoptActive()
	if !ok || id != "1" {
		t.Fatalf("AdoptActive = %q,%v want 1,true", id, ok)
	}
	if snap := s.Snapshot(); snap.SelectedName != "a.csv" || !snap.HasSelection() {
		t.Fatalf("snapshot = %#v", snap)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gen := s.BeginSelect()
			s.CommitSelect(gen, api.FileID("1"), "a.csv")
			s.SetFiles(sampleFiles())
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.Files()
			_ = s.SelectedFileID()
		}()
	}
	wg.Wait()
}
