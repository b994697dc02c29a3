package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"rendersubmit/internal/config"
	"rendersubmit/internal/history"
	"rendersubmit/internal/jobbundle"
	"rendersubmit/internal/logging"
	"rendersubmit/internal/stickystore"
	"rendersubmit/internal/submission"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = &configLoadError{err: err}
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// logger builds a logger that writes to the command's stderr and the log file.
func (c *commandContext) logger(cmd *cobra.Command) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

func (c *commandContext) stickyStore(logger *slog.Logger) *stickystore.Store {
	return stickystore.New(c.config.Paths.StickySettingsFile, logger)
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withSubmitter opens every store a submission needs.
func (c *commandContext) withSubmitter(cmd *cobra.Command, fn func(*submission.Submitter) error) error {
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}
	return c.withHistory(func(store *history.Store) error {
		sub := submission.New(c.config,
			c.stickyStore(logger),
			jobbundle.NewWriter(c.config.Paths.JobHistoryDir, logger),
			store,
			logger)
		return fn(sub)
	})
}

// configLoadError marks failures to read or validate the configuration file.
type configLoadError struct {
	err error
}

func (e *configLoadError) Error() string     { return e.err.Error() }
func (e *configLoadError) Unwrap() error     { return e.err }
func (e *configLoadError) ErrorKind() string { return "configuration" }

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
