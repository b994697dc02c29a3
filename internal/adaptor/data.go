package adaptor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rendersubmit/internal/jobsettings"
)

const renderOutputPrefix = "RENDER_OUTPUT_"

var outputFormats = []string{"PNG", "JPEG", "EXR", "TIFF8", "TIFF32", "PSD8", "PSD16", "PSD32"}

var outputFormatAliases = map[string]string{
	"JPG":  "JPEG",
	"TIF":  "TIFF8",
	"TIFF": "TIFF8",
	"PSD":  "PSD8",
}

var upper = cases.Upper(language.Und)

// OutputFormats lists the accepted output format names.
func OutputFormats() []string {
	return append([]string(nil), outputFormats...)
}

// IsOutputFormat reports whether name is an accepted output format name.
func IsOutputFormat(name string) bool {
	for _, f := range outputFormats {
		if f == name {
			return true
		}
	}
	return false
}

// NormalizeOutputFormat maps user input such as "jpg" or "RENDER_OUTPUT_PNG"
// to an accepted output format name.
func NormalizeOutputFormat(value string) (string, error) {
	name := upper.String(strings.TrimSpace(value))
	name = strings.TrimPrefix(name, renderOutputPrefix)
	if alias, ok := outputFormatAliases[name]; ok {
		name = alias
	}
	if !IsOutputFormat(name) {
		return "", fmt.Errorf("%w: unsupported output format %q", ErrInvalidData, value)
	}
	return name, nil
}

// InitData is the adaptor initialization payload.
type InitData struct {
	SceneFile      string `json:"scene_file"`
	OutputFilePath string `json:"output_file_path,omitempty"`
	OutputFormat   string `json:"output_format,omitempty"`
}

// RunData is the per-task adaptor payload.
type RunData struct {
	Frame int `json:"frame"`
}

// Validate checks the init data against the embedded schema.
func (d InitData) Validate() error {
	initSchema, _, err := resolvedSchemas()
	if err != nil {
		return err
	}
	return validate(initSchema, "init data", d)
}

// Validate checks the run data against the embedded schema.
func (d RunData) Validate() error {
	_, runSchema, err := resolvedSchemas()
	if err != nil {
		return err
	}
	return validate(runSchema, "run data", d)
}

// ValidateInitDataJSON validates a raw init data document.
func ValidateInitDataJSON(data []byte) error {
	initSchema, _, err := resolvedSchemas()
	if err != nil {
		return err
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("%w: decode init data: %v", ErrInvalidData, err)
	}
	return validate(initSchema, "init data", instance)
}

// InitDataFromSettings projects the scene, output path, and output format
// parameters into validated init data.
func InitDataFromSettings(s *jobsettings.Settings) (InitData, error) {
	var data InitData
	data.SceneFile, _ = s.Parameter(jobsettings.ParamSceneFile)
	if strings.TrimSpace(data.SceneFile) == "" {
		return InitData{}, fmt.Errorf("%w: %s is not set", ErrInvalidData, jobsettings.ParamSceneFile)
	}
	data.OutputFilePath, _ = s.Parameter(jobsettings.ParamOutputFilePath)
	if format, ok := s.Parameter(jobsettings.ParamOutputFormat); ok && strings.TrimSpace(format) != "" {
		name, err := NormalizeOutputFormat(format)
		if err != nil {
			return InitData{}, err
		}
		data.OutputFormat = renderOutputPrefix + name
	}
	if err := data.Validate(); err != nil {
		return InitData{}, err
	}
	return data, nil
}

// RunDataForFrames expands a frame expression into validated run data, one
// entry per frame.
func RunDataForFrames(expr string) ([]RunData, error) {
	frames, err := ParseFrames(expr)
	if err != nil {
		return nil, err
	}
	out := make([]RunData, 0, len(frames))
	for _, frame := range frames {
		rd := RunData{Frame: frame}
		if err := rd.Validate(); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, nil
}

// MaxFrames caps how many frames one expression may expand to.
const MaxFrames = 100000

// ParseFrames expands a frame expression such as "1-5", "1,3,7", or
// "1-10:2" into sorted, unique frame numbers. Expressions covering more than
// MaxFrames frames are rejected.
func ParseFrames(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("%w: empty frame expression", ErrInvalidData)
	}
	seen := map[int]struct{}{}
	var total uint64
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		start, end, step, err := parseFrameRange(part)
		if err != nil {
			return nil, fmt.Errorf("%w: frame expression %q: %v", ErrInvalidData, expr, err)
		}
		// Unsigned differences stay exact for any start <= end.
		span := (uint64(end) - uint64(start)) / uint64(step)
		if span >= MaxFrames || total+span+1 > MaxFrames {
			return nil, fmt.Errorf("%w: frame expression %q covers more than %d frames", ErrInvalidData, expr, MaxFrames)
		}
		total += span + 1
		for f := start; ; f += step {
			seen[f] = struct{}{}
			if uint64(end)-uint64(f) < uint64(step) {
				break
			}
		}
	}
	frames := make([]int, 0, len(seen))
	for f := range seen {
		frames = append(frames, f)
	}
	sort.Ints(frames)
	return frames, nil
}

func parseFrameRange(part string) (start, end, step int, err error) {
	if part == "" {
		return 0, 0, 0, fmt.Errorf("empty range")
	}
	step = 1
	if body, stepText, ok := strings.Cut(part, ":"); ok {
		if step, err = strconv.Atoi(strings.TrimSpace(stepText)); err != nil || step <= 0 {
			return 0, 0, 0, fmt.Errorf("invalid step in %q", part)
		}
		part = body
	}
	// A leading '-' belongs to a negative start frame.
	idx := strings.Index(part[1:], "-")
	if idx < 0 {
		if start, err = strconv.Atoi(strings.TrimSpace(part)); err != nil {
			return 0, 0, 0, fmt.Errorf("invalid frame %q", part)
		}
		if step != 1 {
			return 0, 0, 0, fmt.Errorf("step without range in %q", part)
		}
		return start, start, 1, nil
	}
	idx++
	if start, err = strconv.Atoi(strings.TrimSpace(part[:idx])); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range start in %q", part)
	}
	if end, err = strconv.Atoi(strings.TrimSpace(part[idx+1:])); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid range end in %q", part)
	}
	if end < start {
		return 0, 0, 0, fmt.Errorf("range end before start in %q", part)
	}
	return start, end, step, nil
}
