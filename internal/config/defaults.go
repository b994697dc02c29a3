package config

import "rendersubmit/internal/jobsettings"

const (
	defaultStateDir           = "~/.local/share/rendersubmit"
	defaultStickySettingsName = "sticky_settings.json"
	defaultJobHistoryName     = "jobs"
	defaultHistoryDBName      = "history.db"
	defaultLogDirName         = "logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultOutputFormat       = "PNG"
	defaultFrames             = "1"
	defaultStickyEnabled      = true
)

// Default returns a Config populated with repository defaults. Paths derived
// from the state directory stay empty until normalization fills them.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Submission: Submission{
			NonStickyParameters: append([]string(nil), jobsettings.DefaultNonStickyNames...),
			StickyEnabled:       defaultStickyEnabled,
			DefaultOutputFormat: defaultOutputFormat,
			DefaultFrames:       defaultFrames,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
