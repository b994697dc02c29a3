package jobbundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/logging"
	"rendersubmit/internal/textutil"
)

const (
	dateLayout   = "2006-01-02"
	maxSequence  = 999
	fallbackName = "job"
)

// Bundle holds the three documents of a job bundle.
type Bundle struct {
	Template        jobsettings.JobTemplate             `json:"template"`
	ParameterValues jobsettings.ParameterValuesDocument `json:"parameter_values"`
	AssetReferences jobsettings.AssetReferencesDocument `json:"asset_references"`
}

// Build constructs the bundle documents for settings.
func Build(name string, settings *jobsettings.Settings) Bundle {
	return Bundle{
		Template:        jobsettings.ConstructJobTemplate(name),
		ParameterValues: jobsettings.ConstructParameterValues(settings),
		AssetReferences: jobsettings.ConstructAssetReferences(settings),
	}
}

// Writer creates bundle directories under a job history root.
type Writer struct {
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// NewWriter returns a writer rooted at root.
func NewWriter(root string, logger *slog.Logger) *Writer {
	return &Writer{
		root:   root,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "jobbundle"),
	}
}

// Root returns the job history root directory.
func (w *Writer) Root() string {
	return w.root
}

// Write stores bundle in a new directory and returns its path. A partially
// written directory is removed on failure.
func (w *Writer) Write(ctx context.Context, bundle Bundle) (string, error) {
	if strings.TrimSpace(w.root) == "" {
		return "", errors.New("job history directory is not configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create job history directory: %w", err)
	}

	dir, err := w.allocate(bundle.Template.Name)
	if err != nil {
		return "", err
	}

	files := []struct {
		name string
		doc  any
	}{
		{jobsettings.JobTemplateFile, bundle.Template},
		{jobsettings.ParameterValuesFile, bundle.ParameterValues},
		{jobsettings.AssetReferencesFile, bundle.AssetReferences},
	}
	for _, file := range files {
		if err := writeJSON(filepath.Join(dir, file.name), file.doc); err != nil {
			_ = os.RemoveAll(dir)
			return "", err
		}
	}

	w.logger.Debug("wrote job bundle",
		logging.String(logging.FieldBundleDir, dir),
		logging.Int("parameter_count", len(bundle.ParameterValues.ParameterValues)),
		logging.Int("input_count", len(bundle.AssetReferences.AssetReferences.Inputs.Filenames)))
	return dir, nil
}

// allocate creates the next free "<date>-<seq>-<name>" directory for today.
func (w *Writer) allocate(jobName string) (string, error) {
	date := w.now().Format(dateLayout)
	name := textutil.SanitizePathSegment(jobName, fallbackName)

	seq, err := nextSequence(w.root, date)
	if err != nil {
		return "", err
	}
	for ; seq <= maxSequence; seq++ {
		dir := filepath.Join(w.root, fmt.Sprintf("%s-%02d-%s", date, seq, name))
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("create bundle directory: %w", err)
		}
	}
	return "", fmt.Errorf("no free bundle sequence left for %s", date)
}

// nextSequence returns one past the highest sequence used on date.
func nextSequence(root, date string) (int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("list job history directory: %w", err)
	}
	prefix := date + "-"
	highest := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		rest := strings.TrimPrefix(entry.Name(), prefix)
		digits, _, _ := strings.Cut(rest, "-")
		if n, err := strconv.Atoi(digits); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1, nil
}

func writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Read loads a bundle directory written by Write.
func Read(dir string) (Bundle, error) {
	var bundle Bundle

	data, err := os.ReadFile(filepath.Join(dir, jobsettings.JobTemplateFile))
	if err != nil {
		return Bundle{}, fmt.Errorf("read job template: %w", err)
	}
	if err := json.Unmarshal(data, &bundle.Template); err != nil {
		return Bundle{}, fmt.Errorf("decode job template: %w", err)
	}

	data, err = os.ReadFile(filepath.Join(dir, jobsettings.ParameterValuesFile))
	if err != nil {
		return Bundle{}, fmt.Errorf("read parameter values: %w", err)
	}
	if bundle.ParameterValues, err = jobsettings.DecodeParameterValues(data); err != nil {
		return Bundle{}, err
	}

	data, err = os.ReadFile(filepath.Join(dir, jobsettings.AssetReferencesFile))
	if err != nil {
		return Bundle{}, fmt.Errorf("read asset references: %w", err)
	}
	if bundle.AssetReferences, err = jobsettings.DecodeAssetReferences(data); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}
