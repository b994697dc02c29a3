package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and output locations.
type Paths struct {
	StateDir           string `toml:"state_dir" env:"RENDERSUBMIT_STATE_DIR"`
	StickySettingsFile string `toml:"sticky_settings_file" env:"RENDERSUBMIT_STICKY_SETTINGS_FILE"`
	JobHistoryDir      string `toml:"job_history_dir" env:"RENDERSUBMIT_JOB_HISTORY_DIR"`
	HistoryDB          string `toml:"history_db" env:"RENDERSUBMIT_HISTORY_DB"`
	LogDir             string `toml:"log_dir" env:"RENDERSUBMIT_LOG_DIR"`
}

// Submission contains the defaults and policies applied when resolving
// job settings.
type Submission struct {
	// NonStickyParameters are never restored from sticky settings.
	NonStickyParameters []string `toml:"non_sticky_parameters" env:"RENDERSUBMIT_NON_STICKY_PARAMETERS" envSeparator:","`
	// StickyEnabled toggles loading and saving sticky settings.
	StickyEnabled       bool   `toml:"sticky_enabled" env:"RENDERSUBMIT_STICKY_ENABLED"`
	DefaultOutputFormat string `toml:"default_output_format" env:"RENDERSUBMIT_DEFAULT_OUTPUT_FORMAT"`
	DefaultFrames       string `toml:"default_frames" env:"RENDERSUBMIT_DEFAULT_FRAMES"`
	CondaPackages       string `toml:"conda_packages" env:"RENDERSUBMIT_CONDA_PACKAGES"`
	CondaChannels       string `toml:"conda_channels" env:"RENDERSUBMIT_CONDA_CHANNELS"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"RENDERSUBMIT_LOG_FORMAT"`
	Level  string `toml:"level" env:"RENDERSUBMIT_LOG_LEVEL"`
}

// Config encapsulates all configuration values for rendersubmit.
//
// Configuration sections:
//   - Paths: state directory, sticky settings file, bundles, history database
//   - Submission: non-sticky policy and seed values for job parameters
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Submission Submission `toml:"submission"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/rendersubmit/config.toml")
}

// Load locates, parses, and validates a configuration file, then applies
// environment overrides. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("rendersubmit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, log, and job history directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.StateDir,
		c.Paths.LogDir,
		c.Paths.JobHistoryDir,
		filepath.Dir(c.Paths.StickySettingsFile),
		filepath.Dir(c.Paths.HistoryDB),
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
