package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/submission"
)

// settingsView is the JSON shape of a resolved settings report.
type settingsView struct {
	ParameterValues            []parameterView `json:"parameter_values"`
	InputFilenames             []string        `json:"input_filenames"`
	AutoDetectedInputFilenames []string        `json:"auto_detected_input_filenames"`
	InputDirectories           []string        `json:"input_directories"`
	OutputDirectories          []string        `json:"output_directories"`
	ReferencedPaths            []string        `json:"referenced_paths"`
	StickyLoaded               bool            `json:"sticky_loaded"`
	StickyUnknown              []string        `json:"sticky_unknown,omitempty"`
	BundleApplied              bool            `json:"bundle_applied"`
	ExcludedFilenames          []string        `json:"excluded_filenames,omitempty"`
}

type parameterView struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Source    string `json:"source"`
	NonSticky bool   `json:"non_sticky"`
}

// newSettingsView records where each parameter value came from. Bundle
// parameters replace the whole list, so they win over sticky values.
func newSettingsView(res submission.Resolution) settingsView {
	s := res.Settings
	view := settingsView{
		InputFilenames:             s.InputFilenames,
		AutoDetectedInputFilenames: s.AutoDetectedInputFilenames,
		InputDirectories:           s.InputDirectories,
		OutputDirectories:          s.OutputDirectories,
		ReferencedPaths:            s.ReferencedPaths,
		StickyLoaded:               res.StickyLoaded,
		StickyUnknown:              res.Sticky.Unknown,
		BundleApplied:              res.Overlay.ParameterValuesApplied || res.Overlay.AssetReferencesApplied,
		ExcludedFilenames:          res.Overlay.ExcludedFilenames,
	}
	nonSticky := s.NonSticky
	if nonSticky == nil {
		nonSticky = jobsettings.DefaultNonSticky()
	}
	for _, pv := range s.ParameterValues {
		source := "scene"
		switch {
		case res.Overlay.ParameterValuesApplied:
			source = "bundle"
		case slices.Contains(res.Sticky.Updated, pv.Name):
			source = "sticky"
		}
		view.ParameterValues = append(view.ParameterValues, parameterView{
			Name:      pv.Name,
			Value:     pv.Value,
			Source:    source,
			NonSticky: nonSticky.Contains(pv.Name),
		})
	}
	return view
}

func renderSettingsView(w io.Writer, view settingsView) {
	rows := make([][]string, 0, len(view.ParameterValues))
	for _, pv := range view.ParameterValues {
		rows = append(rows, []string{pv.Name, displayValue(pv.Value), pv.Source, yesNo(!pv.NonSticky)})
	}
	fmt.Fprintln(w, renderTable([]string{"Parameter", "Value", "Source", "Sticky"}, rows, nil))

	var assets [][]string
	assets = append(assets, pathRows("Input files", view.InputFilenames)...)
	assets = append(assets, pathRows("Detected files", view.AutoDetectedInputFilenames)...)
	assets = append(assets, pathRows("Input directories", view.InputDirectories)...)
	assets = append(assets, pathRows("Output directories", view.OutputDirectories)...)
	assets = append(assets, pathRows("Referenced paths", view.ReferencedPaths)...)
	fmt.Fprintln(w, renderTable([]string{"Assets", "Path"}, assets, nil))

	if len(view.StickyUnknown) > 0 {
		fmt.Fprintf(w, "Ignored sticky parameters: %s\n", strings.Join(view.StickyUnknown, ", "))
	}
	if len(view.ExcludedFilenames) > 0 {
		fmt.Fprintf(w, "Bundle files already detected in scene: %s\n", strings.Join(view.ExcludedFilenames, ", "))
	}
}

func displayValue(value string) string {
	if value == "" {
		return "(empty)"
	}
	return value
}
