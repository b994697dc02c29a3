package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/jobsettings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSubmission(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if filepath.Clean(c.Paths.StickySettingsFile) == filepath.Clean(c.Paths.HistoryDB) {
		return fmt.Errorf("paths.sticky_settings_file and paths.history_db must differ (both %q)", c.Paths.HistoryDB)
	}
	return nil
}

func (c *Config) validateSubmission() error {
	if !c.NonSticky().Contains(jobsettings.ParamSceneFile) {
		return fmt.Errorf("submission.non_sticky_parameters must include %s", jobsettings.ParamSceneFile)
	}
	if !adaptor.IsOutputFormat(c.Submission.DefaultOutputFormat) {
		return fmt.Errorf("submission.default_output_format: unsupported value %q (want one of %s)",
			c.Submission.DefaultOutputFormat, strings.Join(adaptor.OutputFormats(), ", "))
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

// NonSticky returns the configured non-sticky parameter policy.
func (c *Config) NonSticky() jobsettings.NameSet {
	return jobsettings.NewNameSet(c.Submission.NonStickyParameters...)
}
