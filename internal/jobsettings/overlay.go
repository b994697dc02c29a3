package jobsettings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// File names a job history bundle uses for its settings documents.
const (
	ParameterValuesFile = "parameter_values.json"
	AssetReferencesFile = "asset_references.json"
	JobTemplateFile     = "template.json"
)

// OverlayReport records which bundle documents were found and applied.
type OverlayReport struct {
	ParameterValuesApplied bool
	AssetReferencesApplied bool
	// ExcludedFilenames were offered by the bundle but are auto-detected.
	ExcludedFilenames []string
}

// ApplySubmitterSettings overlays the settings stored in a job history bundle
// directory. Either document may be missing, and a missing or empty bundle
// directory is a no-op. A document that exists but cannot be decoded fails
// the whole call without modifying the settings.
//
// The parameter document replaces ParameterValues wholesale without
// non-sticky filtering. The asset document sets InputFilenames to
// (bundle filenames ∪ current explicit filenames) minus the auto-detected
// filenames, and replaces InputDirectories, OutputDirectories, and
// ReferencedPaths with the bundle lists that are present.
func (s *Settings) ApplySubmitterSettings(bundleDir string) (OverlayReport, error) {
	var report OverlayReport
	if strings.TrimSpace(bundleDir) == "" {
		return report, nil
	}

	params, hasParams, err := readParameterValues(filepath.Join(bundleDir, ParameterValuesFile))
	if err != nil {
		return report, err
	}
	assets, hasAssets, err := readAssetReferences(filepath.Join(bundleDir, AssetReferencesFile))
	if err != nil {
		return report, err
	}

	if hasParams {
		s.ParameterValues = copyParameters(params.ParameterValues)
		report.ParameterValuesApplied = true
	}
	if hasAssets {
		report.ExcludedFilenames = s.overlayAssetReferences(assets.AssetReferences)
		report.AssetReferencesApplied = true
	}
	return report, nil
}

func (s *Settings) overlayAssetReferences(refs AssetReferences) []string {
	// An absent filenames list still strips auto-detected names from the
	// explicit list.
	var excludedNames []string
	s.InputFilenames, excludedNames = unionMinus(refs.Inputs.Filenames, s.InputFilenames, s.AutoDetectedInputFilenames)
	if refs.Inputs.Directories != nil {
		s.InputDirectories = slices.Clone(refs.Inputs.Directories)
	}
	if refs.Outputs.Directories != nil {
		s.OutputDirectories = slices.Clone(refs.Outputs.Directories)
	}
	if refs.ReferencedPaths != nil {
		s.ReferencedPaths = slices.Clone(refs.ReferencedPaths)
	}
	return excludedNames
}

// unionMinus returns (a ∪ b) \ exclude in first-seen order, along with the
// members of a that were dropped because they are in exclude.
func unionMinus(a, b, exclude []string) ([]string, []string) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, path := range exclude {
		excluded[path] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	var dropped []string
	for _, list := range [][]string{a, b} {
		for _, path := range list {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			if _, ok := excluded[path]; ok {
				dropped = append(dropped, path)
				continue
			}
			out = append(out, path)
		}
	}
	return out, dropped
}

func readDocument(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

func readParameterValues(path string) (ParameterValuesDocument, bool, error) {
	data, ok, err := readDocument(path)
	if err != nil || !ok {
		return ParameterValuesDocument{}, false, err
	}
	doc, err := DecodeParameterValues(data)
	if err != nil {
		return ParameterValuesDocument{}, false, withPath(err, path)
	}
	return doc, true, nil
}

func readAssetReferences(path string) (AssetReferencesDocument, bool, error) {
	data, ok, err := readDocument(path)
	if err != nil || !ok {
		return AssetReferencesDocument{}, false, err
	}
	doc, err := DecodeAssetReferences(data)
	if err != nil {
		return AssetReferencesDocument{}, false, withPath(err, path)
	}
	return doc, true, nil
}

// DecodeParameterValues parses a parameter_values.json document. The
// parameterValues key is required, every entry needs a name, and names must
// be unique.
func DecodeParameterValues(data []byte) (ParameterValuesDocument, error) {
	var wire struct {
		ParameterValues *[]ParameterValue `json:"parameterValues"`
	}
	if err := decodeObject(data, &wire); err != nil {
		return ParameterValuesDocument{}, malformed("", "decode parameter values", err)
	}
	if wire.ParameterValues == nil {
		return ParameterValuesDocument{}, malformed("", "missing parameterValues", nil)
	}
	seen := make(map[string]struct{}, len(*wire.ParameterValues))
	for idx, pv := range *wire.ParameterValues {
		if strings.TrimSpace(pv.Name) == "" {
			return ParameterValuesDocument{}, malformed("", fmt.Sprintf("parameterValues[%d] has no name", idx), nil)
		}
		if _, dup := seen[pv.Name]; dup {
			return ParameterValuesDocument{}, malformed("", fmt.Sprintf("duplicate parameter %q", pv.Name), nil)
		}
		seen[pv.Name] = struct{}{}
	}
	return ParameterValuesDocument{ParameterValues: copyParameters(*wire.ParameterValues)}, nil
}

// DecodeAssetReferences parses an asset_references.json document. The
// assetReferences object is required; lists inside it are optional and stay
// nil when absent.
func DecodeAssetReferences(data []byte) (AssetReferencesDocument, error) {
	var wire struct {
		AssetReferences *AssetReferences `json:"assetReferences"`
	}
	if err := decodeObject(data, &wire); err != nil {
		return AssetReferencesDocument{}, malformed("", "decode asset references", err)
	}
	if wire.AssetReferences == nil {
		return AssetReferencesDocument{}, malformed("", "missing assetReferences", nil)
	}
	return AssetReferencesDocument{AssetReferences: *wire.AssetReferences}, nil
}

func decodeObject(data []byte, target any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("document is not a JSON object")
	}
	return json.Unmarshal(trimmed, target)
}

func withPath(err error, path string) error {
	var docErr *DocumentError
	if errors.As(err, &docErr) {
		docErr.Path = path
		return docErr
	}
	return fmt.Errorf("%s: %w", path, err)
}
