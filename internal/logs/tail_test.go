package logs_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rendersubmit/internal/logs"
	"rendersubmit/internal/testsupport"
)

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendersubmit.log")
	testsupport.WriteFile(t, path, "a\nb\nc\nd\ne\n")

	lines, err := logs.Tail(path, logs.TailOptions{Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if diff := cmp.Diff([]string{"d", "e"}, lines); diff != "" {
		t.Fatalf("unexpected lines:\n%s", diff)
	}

	lines, err = logs.Tail(path, logs.TailOptions{})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 5 {
		t.Fatalf("expected every line without a limit, got %v", lines)
	}
}

func TestTailFiltersBySubstring(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rendersubmit.log")
	content := strings.Join([]string{
		"INFO submission written submission_id=aaa",
		"WARN failed to save sticky settings submission_id=bbb",
		"DEBUG applied sticky settings submission_id=aaa",
		"INFO submission written submission_id=bbb",
	}, "\n")
	testsupport.WriteFile(t, path, content)

	lines, err := logs.Tail(path, logs.TailOptions{Limit: 10, Contains: "submission_id=bbb"})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{
		"WARN failed to save sticky settings submission_id=bbb",
		"INFO submission written submission_id=bbb",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("unexpected lines:\n%s", diff)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, err := logs.Tail(filepath.Join(t.TempDir(), "missing.log"), logs.TailOptions{Limit: 5})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
}

func TestTailRejectsDirectory(t *testing.T) {
	if _, err := logs.Tail(t.TempDir(), logs.TailOptions{}); err == nil {
		t.Fatal("expected error for directory path")
	}
}
