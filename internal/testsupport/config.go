package testsupport

import (
	"path/filepath"
	"testing"

	"rendersubmit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose paths all live in a per-test temp
// directory. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.StickySettingsFile = filepath.Join(base, "state", "sticky_settings.json")
	cfgVal.Paths.JobHistoryDir = filepath.Join(base, "jobs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "state", "history.db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithStickyDisabled turns off sticky settings persistence.
func WithStickyDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Submission.StickyEnabled = false
	}
}

// WithNonSticky overrides the non-sticky parameter names.
func WithNonSticky(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Submission.NonStickyParameters = append([]string(nil), names...)
	}
}

// WithConda sets the conda packages and channels added to new submissions.
func WithConda(packages, channels string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Submission.CondaPackages = packages
		b.cfg.Submission.CondaChannels = channels
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.JobHistoryDir)
}
