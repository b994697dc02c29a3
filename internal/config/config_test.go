package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"

	"rendersubmit/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "rendersubmit", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	state := filepath.Join(tempHome, ".local", "share", "rendersubmit")
	if cfg.Paths.StateDir != state {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, state)
	}
	if cfg.Paths.StickySettingsFile != filepath.Join(state, "sticky_settings.json") {
		t.Fatalf("unexpected sticky settings file: %q", cfg.Paths.StickySettingsFile)
	}
	if cfg.Paths.JobHistoryDir != filepath.Join(state, "jobs") {
		t.Fatalf("unexpected job history dir: %q", cfg.Paths.JobHistoryDir)
	}
	if cfg.Paths.HistoryDB != filepath.Join(state, "history.db") {
		t.Fatalf("unexpected history db: %q", cfg.Paths.HistoryDB)
	}
	if diff := cmp.Diff([]string{"KeyShotFile", "CondaPackages", "CondaChannels"}, cfg.Submission.NonStickyParameters); diff != "" {
		t.Fatalf("unexpected non-sticky defaults:\n%s", diff)
	}
	if !cfg.Submission.StickyEnabled {
		t.Fatal("expected sticky settings enabled by default")
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Paths.JobHistoryDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "rendersubmit.toml")

	type payload struct {
		Paths struct {
			StateDir      string `toml:"state_dir"`
			JobHistoryDir string `toml:"job_history_dir"`
		} `toml:"paths"`
		Submission struct {
			NonSticky     []string `toml:"non_sticky_parameters"`
			OutputFormat  string   `toml:"default_output_format"`
			CondaPackages string   `toml:"conda_packages"`
		} `toml:"submission"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Paths.JobHistoryDir = filepath.Join(tempDir, "bundles")
	custom.Submission.NonSticky = []string{" KeyShotFile ", "Frames", "Frames", ""}
	custom.Submission.OutputFormat = "jpeg"
	custom.Submission.CondaPackages = " keyshot=2024.* "
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Paths.JobHistoryDir != filepath.Join(tempDir, "bundles") {
		t.Fatalf("unexpected job history dir: %q", cfg.Paths.JobHistoryDir)
	}
	if cfg.Paths.StickySettingsFile != filepath.Join(tempDir, "state", "sticky_settings.json") {
		t.Fatalf("unexpected sticky settings file: %q", cfg.Paths.StickySettingsFile)
	}
	if diff := cmp.Diff([]string{"KeyShotFile", "Frames"}, cfg.Submission.NonStickyParameters); diff != "" {
		t.Fatalf("unexpected non-sticky parameters:\n%s", diff)
	}
	if cfg.Submission.DefaultOutputFormat != "JPEG" {
		t.Fatalf("unexpected output format %q", cfg.Submission.DefaultOutputFormat)
	}
	if cfg.Submission.CondaPackages != "keyshot=2024.*" {
		t.Fatalf("unexpected conda packages %q", cfg.Submission.CondaPackages)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Logging.Format)
	}
	if !cfg.NonSticky().Contains("Frames") {
		t.Fatal("expected Frames in non-sticky policy")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("RENDERSUBMIT_STATE_DIR", filepath.Join(tempDir, "env-state"))
	t.Setenv("RENDERSUBMIT_NON_STICKY_PARAMETERS", "KeyShotFile,OutputFilePath")
	t.Setenv("RENDERSUBMIT_STICKY_ENABLED", "false")
	t.Setenv("RENDERSUBMIT_LOG_LEVEL", "debug")

	cfg, _, _, err := config.Load(filepath.Join(tempDir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "env-state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if diff := cmp.Diff([]string{"KeyShotFile", "OutputFilePath"}, cfg.Submission.NonStickyParameters); diff != "" {
		t.Fatalf("unexpected non-sticky parameters:\n%s", diff)
	}
	if cfg.Submission.StickyEnabled {
		t.Fatal("expected sticky settings disabled via env")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected log level %q", cfg.Logging.Level)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "scene file must stay non-sticky",
			body:    "[submission]\nnon_sticky_parameters = [\"CondaPackages\"]\n",
			wantErr: "must include KeyShotFile",
		},
		{
			name:    "unknown output format",
			body:    "[submission]\ndefault_output_format = \"GIF\"\n",
			wantErr: "want one of PNG, JPEG, EXR",
		},
		{
			name:    "unknown log format",
			body:    "[logging]\nformat = \"xml\"\n",
			wantErr: "logging.format",
		},
		{
			name:    "unknown key",
			body:    "[paths]\nstaging_dir = \"/tmp\"\n",
			wantErr: "parse config",
		},
		{
			name:    "sticky file collides with history db",
			body:    "[paths]\nsticky_settings_file = \"/tmp/same\"\nhistory_db = \"/tmp/same\"\n",
			wantErr: "must differ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config failed to load: exists=%v err=%v", exists, err)
	}
}
