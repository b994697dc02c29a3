package preflight

import (
	"context"

	"rendersubmit/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The sticky settings check is skipped when sticky settings are disabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Job history directory", cfg.Paths.JobHistoryDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	if cfg.Submission.StickyEnabled {
		results = append(results, CheckStickySettings(ctx, cfg.Paths.StickySettingsFile))
	}
	results = append(results,
		CheckHistoryDatabase(cfg.Paths.HistoryDB),
		CheckAdaptorContract(),
	)
	return results
}
