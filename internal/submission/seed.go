package submission

import (
	"strings"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/config"
	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/scene"
)

// Seed builds the initial settings for a scene. Parameters follow the job
// template order; the conda parameters are only added when configured.
// Detected assets become auto-detected input filenames and every other path
// list starts empty.
func Seed(desc scene.Description, cfg *config.Config) *jobsettings.Settings {
	defaults := config.Default()
	if cfg == nil {
		cfg = &defaults
	}

	outputFormat := firstNonEmpty(desc.OutputFormat, cfg.Submission.DefaultOutputFormat, defaults.Submission.DefaultOutputFormat)
	if normalized, err := adaptor.NormalizeOutputFormat(outputFormat); err == nil {
		outputFormat = normalized
	}
	frames := firstNonEmpty(desc.Frames, cfg.Submission.DefaultFrames, defaults.Submission.DefaultFrames)

	params := []jobsettings.ParameterValue{
		{Name: jobsettings.ParamSceneFile, Value: strings.TrimSpace(desc.ScenePath)},
		{Name: jobsettings.ParamFrames, Value: frames},
		{Name: jobsettings.ParamOutputFilePath, Value: strings.TrimSpace(desc.OutputFilePath)},
		{Name: jobsettings.ParamOutputFormat, Value: outputFormat},
	}
	if pkgs := strings.TrimSpace(cfg.Submission.CondaPackages); pkgs != "" {
		params = append(params, jobsettings.ParameterValue{Name: jobsettings.ParamCondaPackages, Value: pkgs})
	}
	if channels := strings.TrimSpace(cfg.Submission.CondaChannels); channels != "" {
		params = append(params, jobsettings.ParameterValue{Name: jobsettings.ParamCondaChannels, Value: channels})
	}

	return &jobsettings.Settings{
		ParameterValues:            params,
		InputFilenames:             []string{},
		AutoDetectedInputFilenames: dedupe(desc.DetectedAssets),
		InputDirectories:           []string{},
		OutputDirectories:          []string{},
		ReferencedPaths:            []string{},
		NonSticky:                  cfg.NonSticky(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
