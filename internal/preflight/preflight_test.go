package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckStickySettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sticky.json")
	if result := CheckStickySettings(context.Background(), path); !result.Passed || !strings.Contains(result.Detail, "none saved") {
		t.Fatalf("missing sticky file should pass, got %+v", result)
	}

	if err := os.WriteFile(path, []byte(`{"parameterValues":[{"name":"Frames","value":"1"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckStickySettings(context.Background(), path); !result.Passed || !strings.Contains(result.Detail, "1 parameters") {
		t.Fatalf("valid sticky file should pass, got %+v", result)
	}

	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckStickySettings(context.Background(), path); result.Passed {
		t.Fatalf("malformed sticky file should fail, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.JobHistoryDir = filepath.Join(base, "jobs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StickySettingsFile = filepath.Join(base, "state", "sticky.json")
	cfg.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), &cfg)
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("expected %s to pass: %s", r.Name, r.Detail)
		}
	}

	cfg.Submission.StickyEnabled = false
	if got := len(RunAll(context.Background(), &cfg)); got != 5 {
		t.Fatalf("expected sticky check to be skipped, got %d results", got)
	}
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("nil config should yield no results")
	}
}

func TestCheckAdaptorContract(t *testing.T) {
	r := CheckAdaptorContract()
	if !r.Passed {
		t.Fatalf("expected embedded adaptor contract to pass: %s", r.Detail)
	}
	if r.Detail != "interface "+adaptor.InterfaceVersion {
		t.Fatalf("unexpected detail %q", r.Detail)
	}
}
