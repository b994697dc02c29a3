package jobsettings

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
)

// ParameterValuesDocument is the parameter_values.json shape.
type ParameterValuesDocument struct {
	ParameterValues []ParameterValue `json:"parameterValues"`
}

// AssetReferencesDocument is the asset_references.json shape.
type AssetReferencesDocument struct {
	AssetReferences AssetReferences `json:"assetReferences"`
}

// AssetReferences lists the files and directories a job reads and writes.
type AssetReferences struct {
	Inputs          AssetInputs  `json:"inputs"`
	Outputs         AssetOutputs `json:"outputs"`
	ReferencedPaths []string     `json:"referencedPaths"`
}

// AssetInputs lists input files and directories.
type AssetInputs struct {
	Filenames   []string `json:"filenames"`
	Directories []string `json:"directories"`
}

// AssetOutputs lists output directories.
type AssetOutputs struct {
	Directories []string `json:"directories"`
}

// JobTemplate is the job template written to template.json. Only Name is
// derived from the submission; the remaining fields are fixed skeleton
// content.
type JobTemplate struct {
	SpecificationVersion string          `json:"specificationVersion"`
	Name                 string          `json:"name"`
	ParameterDefinitions json.RawMessage `json:"parameterDefinitions"`
	JobEnvironments      json.RawMessage `json:"jobEnvironments,omitempty"`
	Steps                json.RawMessage `json:"steps"`
}

//go:embed job_template.json
var templateSkeleton []byte

var skeleton = mustDecodeSkeleton(templateSkeleton)

func mustDecodeSkeleton(data []byte) JobTemplate {
	var tmpl JobTemplate
	if err := json.Unmarshal(data, &tmpl); err != nil {
		panic(fmt.Sprintf("jobsettings: embedded job template: %v", err))
	}
	return tmpl
}

// ConstructJobTemplate returns the job template skeleton named name.
func ConstructJobTemplate(name string) JobTemplate {
	return JobTemplate{
		SpecificationVersion: skeleton.SpecificationVersion,
		Name:                 name,
		ParameterDefinitions: slices.Clone(skeleton.ParameterDefinitions),
		JobEnvironments:      slices.Clone(skeleton.JobEnvironments),
		Steps:                slices.Clone(skeleton.Steps),
	}
}

// ConstructParameterValues projects the parameter values in order.
func ConstructParameterValues(s *Settings) ParameterValuesDocument {
	return ParameterValuesDocument{ParameterValues: copyParameters(s.ParameterValues)}
}

// ConstructAssetReferences projects the asset references. Input filenames are
// the explicit filenames followed by the auto-detected ones, without
// deduplication.
func ConstructAssetReferences(s *Settings) AssetReferencesDocument {
	filenames := make([]string, 0, len(s.InputFilenames)+len(s.AutoDetectedInputFilenames))
	filenames = append(filenames, s.InputFilenames...)
	filenames = append(filenames, s.AutoDetectedInputFilenames...)
	return AssetReferencesDocument{
		AssetReferences: AssetReferences{
			Inputs: AssetInputs{
				Filenames:   filenames,
				Directories: copyList(s.InputDirectories),
			},
			Outputs: AssetOutputs{
				Directories: copyList(s.OutputDirectories),
			},
			ReferencedPaths: copyList(s.ReferencedPaths),
		},
	}
}
