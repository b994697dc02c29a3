package jobsettings

import (
	"bytes"
	"encoding/json"
	"slices"
)

// StickySettings is the persisted "last used" preference snapshot.
type StickySettings struct {
	ParameterValues   []ParameterValue `json:"parameterValues"`
	InputFilenames    []string         `json:"inputFilenames"`
	InputDirectories  []string         `json:"inputDirectories"`
	OutputDirectories []string         `json:"outputDirectories"`
	ReferencedPaths   []string         `json:"referencedPaths"`
}

// IsEmpty reports whether applying the snapshot would change nothing.
func (s StickySettings) IsEmpty() bool {
	return len(s.ParameterValues) == 0 &&
		s.InputFilenames == nil &&
		s.InputDirectories == nil &&
		s.OutputDirectories == nil &&
		s.ReferencedPaths == nil
}

// StickyReport lists what ApplyStickySettings did with each sticky parameter.
type StickyReport struct {
	Updated []string
	// NonSticky names were present in the snapshot but excluded by policy.
	NonSticky []string
	// Unknown names have no matching parameter in the settings.
	Unknown []string
}

// DecodeStickySettings parses a sticky settings document. Blank input yields
// an empty snapshot.
func DecodeStickySettings(data []byte) (StickySettings, error) {
	var snapshot StickySettings
	if len(bytes.TrimSpace(data)) == 0 {
		return snapshot, nil
	}
	if err := decodeObject(data, &snapshot); err != nil {
		return StickySettings{}, malformed("", "decode sticky settings", err)
	}
	return snapshot, nil
}

// Encode serializes the snapshot as indented JSON.
func (s StickySettings) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// OutputStickySettings exports the persistable subset of the settings:
// parameters outside the non-sticky set in order, the explicit input
// filenames, and the directory and referenced path lists. Auto-detected
// filenames are never exported.
func (s *Settings) OutputStickySettings() StickySettings {
	excluded := s.nonSticky()
	params := make([]ParameterValue, 0, len(s.ParameterValues))
	for _, pv := range s.ParameterValues {
		if excluded.Contains(pv.Name) {
			continue
		}
		params = append(params, pv)
	}
	return StickySettings{
		ParameterValues:   params,
		InputFilenames:    copyList(s.InputFilenames),
		InputDirectories:  copyList(s.InputDirectories),
		OutputDirectories: copyList(s.OutputDirectories),
		ReferencedPaths:   copyList(s.ReferencedPaths),
	}
}

// ApplyStickySettings overlays a sticky snapshot. Values of existing,
// sticky-eligible parameters are overwritten in place; parameter order is
// kept and no parameter is ever added. Each path list present in the
// snapshot replaces the current list. AutoDetectedInputFilenames is never
// touched.
func (s *Settings) ApplyStickySettings(snapshot StickySettings) StickyReport {
	var report StickyReport
	excluded := s.nonSticky()
	for _, pv := range snapshot.ParameterValues {
		if excluded.Contains(pv.Name) {
			report.NonSticky = append(report.NonSticky, pv.Name)
			continue
		}
		idx := s.parameterIndex(pv.Name)
		if idx < 0 {
			report.Unknown = append(report.Unknown, pv.Name)
			continue
		}
		s.ParameterValues[idx].Value = pv.Value
		report.Updated = append(report.Updated, pv.Name)
	}

	if snapshot.InputFilenames != nil {
		s.InputFilenames = slices.Clone(snapshot.InputFilenames)
	}
	if snapshot.InputDirectories != nil {
		s.InputDirectories = slices.Clone(snapshot.InputDirectories)
	}
	if snapshot.OutputDirectories != nil {
		s.OutputDirectories = slices.Clone(snapshot.OutputDirectories)
	}
	if snapshot.ReferencedPaths != nil {
		s.ReferencedPaths = slices.Clone(snapshot.ReferencedPaths)
	}
	return report
}
