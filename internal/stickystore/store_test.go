package stickystore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"rendersubmit/internal/jobsettings"
)

func TestLoadMissingFileReturnsEmptySnapshot(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "state", "sticky.json"), nil)

	snapshot, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !snapshot.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticky.json")
	store := New(path, nil)

	want := jobsettings.StickySettings{
		ParameterValues:   []jobsettings.ParameterValue{{Name: "Frames", Value: "1-10"}, {Name: "OutputFormat", Value: "JPEG"}},
		InputFilenames:    []string{"/assets/tex.png"},
		InputDirectories:  []string{},
		OutputDirectories: []string{"/renders"},
		ReferencedPaths:   []string{},
	}
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := New(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticky.json")
	if err := os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := New(path, nil).Load(context.Background())
	if !errors.Is(err, jobsettings.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
	var docErr *jobsettings.DocumentError
	if !errors.As(err, &docErr) || docErr.Path != path {
		t.Fatalf("expected document error for %s, got %v", path, err)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticky.json")
	store := New(path, nil)
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear on missing file: %v", err)
	}
	snapshot := jobsettings.StickySettings{ParameterValues: []jobsettings.ParameterValue{{Name: "Frames", Value: "3"}}}
	if err := store.Save(context.Background(), snapshot); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected sticky file removed, stat err=%v", err)
	}
}

func TestSaveReportsLockedWhenHeldElsewhere(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sticky.json")
	holder := flock.New(path + ".lock")
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	store := New(path, nil)
	store.lockTimeout = 100 * time.Millisecond

	err = store.Save(context.Background(), jobsettings.StickySettings{})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestDisabledStore(t *testing.T) {
	store := New("", nil)
	if err := store.Save(context.Background(), jobsettings.StickySettings{ParameterValues: []jobsettings.ParameterValue{{Name: "a", Value: "b"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snapshot, err := store.Load(context.Background())
	if err != nil || !snapshot.IsEmpty() {
		t.Fatalf("expected empty snapshot, got %+v err=%v", snapshot, err)
	}
}
