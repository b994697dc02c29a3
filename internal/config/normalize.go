package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSubmission()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}

	derived := []struct {
		key      string
		value    *string
		fallback string
	}{
		{"paths.sticky_settings_file", &c.Paths.StickySettingsFile, defaultStickySettingsName},
		{"paths.job_history_dir", &c.Paths.JobHistoryDir, defaultJobHistoryName},
		{"paths.history_db", &c.Paths.HistoryDB, defaultHistoryDBName},
		{"paths.log_dir", &c.Paths.LogDir, defaultLogDirName},
	}
	for _, field := range derived {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = filepath.Join(c.Paths.StateDir, field.fallback)
		}
		if *field.value, err = expandPath(*field.value); err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeSubmission() {
	names := make([]string, 0, len(c.Submission.NonStickyParameters))
	seen := make(map[string]struct{}, len(c.Submission.NonStickyParameters))
	for _, name := range c.Submission.NonStickyParameters {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	c.Submission.NonStickyParameters = names

	c.Submission.DefaultOutputFormat = strings.ToUpper(strings.TrimSpace(c.Submission.DefaultOutputFormat))
	if c.Submission.DefaultOutputFormat == "" {
		c.Submission.DefaultOutputFormat = defaultOutputFormat
	}
	c.Submission.DefaultFrames = strings.TrimSpace(c.Submission.DefaultFrames)
	if c.Submission.DefaultFrames == "" {
		c.Submission.DefaultFrames = defaultFrames
	}
	c.Submission.CondaPackages = strings.TrimSpace(c.Submission.CondaPackages)
	c.Submission.CondaChannels = strings.TrimSpace(c.Submission.CondaChannels)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
