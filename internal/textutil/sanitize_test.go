package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  plain  ":       "plain",
		"a/b\\c:d*e":      "a-b-c-d-e",
		`what?"<x>|`:      "whatx",
		"":                "",
		"Product Shot 02": "Product Shot 02",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizePathSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Product Shot  02", "Product_Shot_02"},
		{"../escape", "-escape"},
		{"..", "job"},
		{"   ", "job"},
		{"cam:front", "cam-front"},
	}
	for _, tt := range tests {
		if got := SanitizePathSegment(tt.in, "job"); got != tt.want {
			t.Fatalf("SanitizePathSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
