package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/config"
	"rendersubmit/internal/history"
	"rendersubmit/internal/jobbundle"
	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/logging"
	"rendersubmit/internal/scene"
	"rendersubmit/internal/stickystore"
	"rendersubmit/internal/textutil"
)

// WorkDirName is the directory under the state dir that holds unpacked
// package archives, one subdirectory per submission.
const WorkDirName = "work"

// Options control a single resolution or submission.
type Options struct {
	// BundleDir is a previous job bundle whose settings are overlaid last.
	BundleDir string
	// JobName overrides the scene-derived job name.
	JobName string
	// SaveScene allows saving a scene with unsaved changes before submitting.
	SaveScene bool
	// SkipSticky ignores stored sticky settings and does not update them.
	SkipSticky bool
	// PackageArchive is a scene package to submit instead of the scene file.
	PackageArchive string
	// PackageScene asks the host to package the open scene and submits the
	// packaged copy. PackageArchive takes precedence.
	PackageScene bool
}

// Resolution is the outcome of settings resolution.
type Resolution struct {
	Settings     *jobsettings.Settings
	StickyLoaded bool
	Sticky       jobsettings.StickyReport
	Overlay      jobsettings.OverlayReport
}

// Result describes a completed submission.
type Result struct {
	ID              string                              `json:"id"`
	JobName         string                              `json:"job_name"`
	BundleDir       string                              `json:"bundle_dir"`
	InitData        adaptor.InitData                    `json:"init_data"`
	ParameterValues jobsettings.ParameterValuesDocument `json:"parameter_values"`
	AssetReferences jobsettings.AssetReferencesDocument `json:"asset_references"`
	StickySaved     bool                                `json:"sticky_saved"`
	CreatedAt       time.Time                           `json:"created_at"`
}

// Submitter wires the stores a submission touches.
type Submitter struct {
	cfg     *config.Config
	sticky  *stickystore.Store
	bundles *jobbundle.Writer
	history *history.Store
	logger  *slog.Logger

	newID func() string
	now   func() time.Time
}

// New returns a Submitter. history may be nil, in which case submissions
// are not recorded.
func New(cfg *config.Config, sticky *stickystore.Store, bundles *jobbundle.Writer, hist *history.Store, logger *slog.Logger) *Submitter {
	return &Submitter{
		cfg:     cfg,
		sticky:  sticky,
		bundles: bundles,
		history: hist,
		logger:  logging.NewComponentLogger(logger, "submission"),
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

func (s *Submitter) stickyEnabled(opts Options) bool {
	return s.sticky != nil && s.cfg.Submission.StickyEnabled && !opts.SkipSticky
}

// Resolve seeds settings from desc and applies the sticky settings and the
// optional bundle overlay, in that order. It writes nothing.
func (s *Submitter) Resolve(ctx context.Context, desc scene.Description, opts Options) (Resolution, error) {
	logger := logging.WithContext(ctx, s.logger)
	res := Resolution{Settings: Seed(desc, s.cfg)}

	if s.stickyEnabled(opts) {
		snapshot, err := s.sticky.Load(ctx)
		if err != nil {
			if errors.Is(err, stickystore.ErrLocked) {
				return Resolution{}, withKind("conflict", err)
			}
			return Resolution{}, fmt.Errorf("load sticky settings: %w", err)
		}
		res.StickyLoaded = !snapshot.IsEmpty()
		res.Sticky = res.Settings.ApplyStickySettings(snapshot)
		logger.Debug("applied sticky settings",
			logging.Strings("updated", res.Sticky.Updated),
			logging.Strings("non_sticky", res.Sticky.NonSticky),
			logging.Strings("unknown", res.Sticky.Unknown))
	}

	if dir := strings.TrimSpace(opts.BundleDir); dir != "" {
		overlay, err := res.Settings.ApplySubmitterSettings(dir)
		if err != nil {
			return Resolution{}, fmt.Errorf("apply job bundle settings: %w", err)
		}
		res.Overlay = overlay
		if !overlay.ParameterValuesApplied && !overlay.AssetReferencesApplied {
			logging.WarnWithContext(logger, "job bundle has no settings documents", "bundle_overlay_empty",
				logging.String(logging.FieldBundleDir, dir),
				logging.String(logging.FieldErrorHint, "pass a directory written by a previous submission"),
				logging.String(logging.FieldImpact, "sticky and scene settings were used unchanged"))
		}
		if len(overlay.ExcludedFilenames) > 0 {
			logger.Debug("bundle filenames already auto-detected",
				logging.Strings("excluded", overlay.ExcludedFilenames))
		}
	}

	return res, nil
}

// Submit runs the full submission flow against the open scene.
func (s *Submitter) Submit(ctx context.Context, session scene.Session, opts Options) (result Result, err error) {
	id := s.newID()
	ctx = logging.WithSubmissionID(ctx, id)
	logger := logging.WithContext(ctx, s.logger)

	if !session.Paused() {
		if err := session.Pause(); err != nil {
			return Result{}, fmt.Errorf("pause rendering: %w", err)
		}
		defer func() {
			if resumeErr := session.Resume(); resumeErr != nil {
				logging.WarnWithContext(logger, "failed to resume rendering", "resume_failed",
					logging.Error(resumeErr),
					logging.String(logging.FieldErrorHint, "resume real-time rendering in the host"),
					logging.String(logging.FieldImpact, "viewport stays paused"))
				if err == nil {
					err = fmt.Errorf("resume rendering: %w", resumeErr)
				}
			}
		}()
	}

	// Rendering stays paused while the scene is saved.
	if session.SceneChanged() {
		if !opts.SaveScene {
			return Result{}, ErrUnsavedScene
		}
		if err := session.Save(); err != nil {
			return Result{}, fmt.Errorf("save scene: %w", err)
		}
		logger.Info("saved scene before submitting")
	}

	desc := session.Describe()
	switch archive := strings.TrimSpace(opts.PackageArchive); {
	case archive != "":
		if desc, err = s.unpackScene(desc, archive, id); err != nil {
			return Result{}, err
		}
	case opts.PackageScene:
		if desc, err = s.packageScene(session, desc, id); err != nil {
			return Result{}, err
		}
	}

	res, err := s.Resolve(ctx, desc, opts)
	if err != nil {
		return Result{}, err
	}
	settings := res.Settings

	initData, err := adaptor.InitDataFromSettings(settings)
	if err != nil {
		return Result{}, withKind("validation", err)
	}
	if frames, ok := settings.Parameter(jobsettings.ParamFrames); ok {
		if _, err := adaptor.RunDataForFrames(frames); err != nil {
			return Result{}, withKind("validation", err)
		}
	}

	jobName := firstNonEmpty(opts.JobName, desc.Name(), "job")
	bundle := jobbundle.Build(jobName, settings)
	dir, err := s.bundles.Write(ctx, bundle)
	if err != nil {
		return Result{}, fmt.Errorf("write job bundle: %w", err)
	}
	ctx = logging.WithBundleDir(ctx, dir)
	logger = logging.WithContext(ctx, s.logger)

	result = Result{
		ID:              id,
		JobName:         jobName,
		BundleDir:       dir,
		InitData:        initData,
		ParameterValues: bundle.ParameterValues,
		AssetReferences: bundle.AssetReferences,
		CreatedAt:       s.now(),
	}

	if s.stickyEnabled(opts) {
		if err := s.sticky.Save(ctx, settings.OutputStickySettings()); err != nil {
			logging.WarnWithContext(logger, "failed to save sticky settings", "sticky_save_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check permissions on "+s.sticky.Path()),
				logging.String(logging.FieldImpact, "next submission will not restore these settings"))
		} else {
			result.StickySaved = true
		}
	}

	if s.history != nil {
		rec := history.Record{
			ID:             id,
			JobName:        jobName,
			SceneFile:      initData.SceneFile,
			BundleDir:      dir,
			ParameterCount: len(bundle.ParameterValues.ParameterValues),
			InputCount:     len(bundle.AssetReferences.AssetReferences.Inputs.Filenames),
			CreatedAt:      result.CreatedAt,
		}
		if err := s.history.Record(ctx, rec); err != nil {
			logging.WarnWithContext(logger, "failed to record submission history", "history_record_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check "+s.history.Path()),
				logging.String(logging.FieldImpact, "submission is missing from history list"))
		}
	}

	logger.Info("submission written",
		logging.String("job_name", jobName),
		logging.String(logging.FieldScene, initData.SceneFile),
		logging.Int("parameter_count", len(bundle.ParameterValues.ParameterValues)),
		logging.Int("input_count", len(bundle.AssetReferences.AssetReferences.Inputs.Filenames)))
	return result, nil
}

// unpackScene swaps the scene file for the one inside a package archive and
// adds the packaged assets to the detected assets.
func (s *Submitter) unpackScene(desc scene.Description, archive, id string) (scene.Description, error) {
	workDir, err := s.workDir(id)
	if err != nil {
		return desc, err
	}
	pkg, err := scene.UnpackPackage(archive, workDir)
	if err != nil {
		return desc, withKind("validation", fmt.Errorf("unpack scene package: %w", err))
	}
	return withPackage(desc, pkg), nil
}

// packageScene asks the host to package the open scene and submits the
// unpacked copy.
func (s *Submitter) packageScene(session scene.Session, desc scene.Description, id string) (scene.Description, error) {
	packager, ok := session.(scene.Packager)
	if !ok {
		return desc, withKind("validation", ErrPackagingUnsupported)
	}
	workDir, err := s.workDir(id)
	if err != nil {
		return desc, err
	}
	name := firstNonEmpty(textutil.SanitizeFileName(desc.Name()), "scene") + scene.PackageFileExt
	pkg, err := scene.PackageScene(packager, workDir, name)
	if err != nil {
		return desc, fmt.Errorf("package scene: %w", err)
	}
	return withPackage(desc, pkg), nil
}

func (s *Submitter) workDir(id string) (string, error) {
	workDir := filepath.Join(s.cfg.Paths.StateDir, WorkDirName, id)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return workDir, nil
}

func withPackage(desc scene.Description, pkg scene.Package) scene.Description {
	desc.ScenePath = pkg.SceneFile
	desc.DetectedAssets = append(append([]string(nil), desc.DetectedAssets...), pkg.InputFiles...)
	return desc
}
