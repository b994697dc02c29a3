package jobsettings

import (
	"slices"
	"sort"
	"strings"
)

// Parameter names seeded from the scene and referenced by the job template.
const (
	ParamSceneFile      = "KeyShotFile"
	ParamFrames         = "Frames"
	ParamOutputFilePath = "OutputFilePath"
	ParamOutputFormat   = "OutputFormat"
	ParamCondaPackages  = "CondaPackages"
	ParamCondaChannels  = "CondaChannels"
)

// DefaultNonStickyNames lists the parameters whose values belong to one scene
// or one environment and are never restored from sticky settings.
var DefaultNonStickyNames = []string{ParamSceneFile, ParamCondaPackages, ParamCondaChannels}

// ParameterValue is a single job parameter assignment.
type ParameterValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NameSet is a set of parameter names.
type NameSet map[string]struct{}

// NewNameSet builds a set from names, ignoring blanks.
func NewNameSet(names ...string) NameSet {
	set := make(NameSet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// DefaultNonSticky returns a fresh set holding DefaultNonStickyNames.
func DefaultNonSticky() NameSet {
	return NewNameSet(DefaultNonStickyNames...)
}

// Contains reports whether name is in the set.
func (s NameSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the members in sorted order.
func (s NameSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings is the submission configuration being resolved. It is owned by a
// single submission flow and mutated in place by ApplyStickySettings and
// ApplySubmitterSettings before the Construct functions read it.
//
// ParameterValues must not contain two entries with the same name; callers
// guarantee this at construction.
type Settings struct {
	ParameterValues []ParameterValue

	// InputFilenames holds explicitly added input files.
	InputFilenames []string
	// AutoDetectedInputFilenames holds files discovered from the scene. They
	// are rediscovered on every submission and never persisted as sticky.
	AutoDetectedInputFilenames []string

	InputDirectories  []string
	OutputDirectories []string
	ReferencedPaths   []string

	// NonSticky names the parameters excluded from sticky settings. A nil set
	// falls back to DefaultNonStickyNames.
	NonSticky NameSet
}

// Parameter returns the value of the named parameter.
func (s *Settings) Parameter(name string) (string, bool) {
	if idx := s.parameterIndex(name); idx >= 0 {
		return s.ParameterValues[idx].Value, true
	}
	return "", false
}

// ParameterNames returns parameter names in order.
func (s *Settings) ParameterNames() []string {
	names := make([]string, 0, len(s.ParameterValues))
	for _, pv := range s.ParameterValues {
		names = append(names, pv.Name)
	}
	return names
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	clone := &Settings{
		ParameterValues:            slices.Clone(s.ParameterValues),
		InputFilenames:             slices.Clone(s.InputFilenames),
		AutoDetectedInputFilenames: slices.Clone(s.AutoDetectedInputFilenames),
		InputDirectories:           slices.Clone(s.InputDirectories),
		OutputDirectories:          slices.Clone(s.OutputDirectories),
		ReferencedPaths:            slices.Clone(s.ReferencedPaths),
	}
	if s.NonSticky != nil {
		clone.NonSticky = make(NameSet, len(s.NonSticky))
		for name := range s.NonSticky {
			clone.NonSticky[name] = struct{}{}
		}
	}
	return clone
}

func (s *Settings) nonSticky() NameSet {
	if s.NonSticky == nil {
		return DefaultNonSticky()
	}
	return s.NonSticky
}

func (s *Settings) parameterIndex(name string) int {
	for idx := range s.ParameterValues {
		if s.ParameterValues[idx].Name == name {
			return idx
		}
	}
	return -1
}

// copyList returns a non-nil copy so encoded documents carry [] instead of null.
func copyList(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func copyParameters(values []ParameterValue) []ParameterValue {
	out := make([]ParameterValue, len(values))
	copy(out, values)
	return out
}
