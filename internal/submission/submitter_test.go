package submission

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"rendersubmit/internal/config"
	"rendersubmit/internal/history"
	"rendersubmit/internal/jobbundle"
	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/scene"
	"rendersubmit/internal/stickystore"
	"rendersubmit/internal/testsupport"
)

type fakeSession struct {
	desc      scene.Description
	changed   bool
	paused    bool
	saveErr   error
	calls     []string
	pausedNow bool
}

func (f *fakeSession) Describe() scene.Description {
	f.calls = append(f.calls, "describe")
	return f.desc
}

func (f *fakeSession) SceneChanged() bool { return f.changed }

func (f *fakeSession) Save() error {
	f.calls = append(f.calls, "save")
	if f.saveErr != nil {
		return f.saveErr
	}
	f.changed = false
	return nil
}

func (f *fakeSession) Paused() bool { return f.paused }

func (f *fakeSession) Pause() error {
	f.calls = append(f.calls, "pause")
	f.pausedNow = true
	return nil
}

func (f *fakeSession) Resume() error {
	f.calls = append(f.calls, "resume")
	f.pausedNow = false
	return nil
}

func newSubmitter(t *testing.T, cfg *config.Config) (*Submitter, *history.Store) {
	t.Helper()
	hist := testsupport.MustOpenHistory(t, cfg)
	sub := New(cfg,
		stickystore.New(cfg.Paths.StickySettingsFile, nil),
		jobbundle.NewWriter(cfg.Paths.JobHistoryDir, nil),
		hist, nil)
	sub.newID = func() string { return "sub-0001" }
	sub.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }
	return sub, hist
}

func bikeScene() scene.Description {
	return scene.Description{
		ScenePath:      "/scenes/bike.bip",
		OutputFilePath: "/renders/bike",
		OutputFormat:   "jpg",
		Frames:         "1-3",
		DetectedAssets: []string{"/assets/tex.png", "/assets/tex.png", " "},
	}
}

func TestSeedOrdersParametersAndAssets(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithConda("keyshot=2024.*", "deadline-cloud"))
	settings := Seed(bikeScene(), cfg)

	want := []jobsettings.ParameterValue{
		{Name: "KeyShotFile", Value: "/scenes/bike.bip"},
		{Name: "Frames", Value: "1-3"},
		{Name: "OutputFilePath", Value: "/renders/bike"},
		{Name: "OutputFormat", Value: "JPEG"},
		{Name: "CondaPackages", Value: "keyshot=2024.*"},
		{Name: "CondaChannels", Value: "deadline-cloud"},
	}
	if diff := cmp.Diff(want, settings.ParameterValues); diff != "" {
		t.Fatalf("parameter mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/assets/tex.png"}, settings.AutoDetectedInputFilenames); diff != "" {
		t.Fatalf("auto-detected mismatch:\n%s", diff)
	}
	if settings.InputFilenames == nil || len(settings.InputFilenames) != 0 {
		t.Fatalf("expected empty explicit filenames, got %#v", settings.InputFilenames)
	}
}

func TestSeedFallsBackToConfiguredDefaults(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Submission.DefaultFrames = "10"
	cfg.Submission.DefaultOutputFormat = "EXR"

	settings := Seed(scene.Description{ScenePath: "/s.bip"}, cfg)
	if v, _ := settings.Parameter("Frames"); v != "10" {
		t.Fatalf("unexpected frames %q", v)
	}
	if v, _ := settings.Parameter("OutputFormat"); v != "EXR" {
		t.Fatalf("unexpected output format %q", v)
	}
	if _, ok := settings.Parameter("CondaPackages"); ok {
		t.Fatal("conda packages must only be seeded when configured")
	}
}

func TestResolveAppliesStickyThenBundle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)
	ctx := context.Background()

	sticky := jobsettings.StickySettings{
		ParameterValues: []jobsettings.ParameterValue{
			{Name: "KeyShotFile", Value: "/elsewhere/old.bip"},
			{Name: "Frames", Value: "5"},
			{Name: "OutputFormat", Value: "EXR"},
			{Name: "Retired", Value: "x"},
		},
		InputFilenames: []string{"/assets/extra.hdr"},
	}
	if err := sub.sticky.Save(ctx, sticky); err != nil {
		t.Fatalf("save sticky: %v", err)
	}

	bundleDir := t.TempDir()
	testsupport.WriteJSON(t, filepath.Join(bundleDir, jobsettings.ParameterValuesFile), map[string]any{
		"parameterValues": []map[string]string{
			{"name": "KeyShotFile", "value": "/scenes/bike.bip"},
			{"name": "Frames", "value": "7"},
		},
	})

	res, err := sub.Resolve(ctx, bikeScene(), Options{BundleDir: bundleDir})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.StickyLoaded {
		t.Fatal("expected sticky settings to be loaded")
	}
	if diff := cmp.Diff([]string{"Frames", "OutputFormat"}, res.Sticky.Updated); diff != "" {
		t.Fatalf("sticky updated mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"KeyShotFile"}, res.Sticky.NonSticky); diff != "" {
		t.Fatalf("sticky non-sticky mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Retired"}, res.Sticky.Unknown); diff != "" {
		t.Fatalf("sticky unknown mismatch:\n%s", diff)
	}
	if !res.Overlay.ParameterValuesApplied || res.Overlay.AssetReferencesApplied {
		t.Fatalf("unexpected overlay report %+v", res.Overlay)
	}

	want := []jobsettings.ParameterValue{
		{Name: "KeyShotFile", Value: "/scenes/bike.bip"},
		{Name: "Frames", Value: "7"},
	}
	if diff := cmp.Diff(want, res.Settings.ParameterValues); diff != "" {
		t.Fatalf("bundle parameters must replace the list:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/assets/extra.hdr"}, res.Settings.InputFilenames); diff != "" {
		t.Fatalf("sticky filenames mismatch:\n%s", diff)
	}
}

func TestResolveMalformedStickyIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)
	testsupport.WriteFile(t, cfg.Paths.StickySettingsFile, "{not json")

	_, err := sub.Resolve(context.Background(), bikeScene(), Options{})
	if !errors.Is(err, jobsettings.ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
	if ErrorKind(err) != "configuration" {
		t.Fatalf("unexpected error kind %q", ErrorKind(err))
	}

	if _, err := sub.Resolve(context.Background(), bikeScene(), Options{SkipSticky: true}); err != nil {
		t.Fatalf("SkipSticky should bypass the sticky file: %v", err)
	}
}

func TestSubmitWritesBundleStickyAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, hist := newSubmitter(t, cfg)
	ctx := context.Background()
	session := &fakeSession{desc: bikeScene()}

	result, err := sub.Submit(ctx, session, Options{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.ID != "sub-0001" || result.JobName != "bike" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.InitData.OutputFormat != "RENDER_OUTPUT_JPEG" || result.InitData.SceneFile != "/scenes/bike.bip" {
		t.Fatalf("unexpected init data %+v", result.InitData)
	}
	if diff := cmp.Diff([]string{"pause", "describe", "resume"}, session.calls); diff != "" {
		t.Fatalf("session call mismatch:\n%s", diff)
	}

	bundle, err := jobbundle.Read(result.BundleDir)
	if err != nil {
		t.Fatalf("read bundle: %v", err)
	}
	if diff := cmp.Diff(result.ParameterValues, bundle.ParameterValues); diff != "" {
		t.Fatalf("bundle parameters mismatch:\n%s", diff)
	}

	saved, err := sub.sticky.Load(ctx)
	if err != nil {
		t.Fatalf("load sticky: %v", err)
	}
	for _, pv := range saved.ParameterValues {
		if pv.Name == "KeyShotFile" {
			t.Fatal("non-sticky parameter leaked into sticky settings")
		}
	}
	if !result.StickySaved {
		t.Fatal("expected sticky settings saved")
	}

	rec, err := hist.Get(ctx, "sub-0001")
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if rec.BundleDir != result.BundleDir || rec.ParameterCount != 4 || rec.InputCount != 1 {
		t.Fatalf("unexpected history record %+v", rec)
	}
}

func TestSubmitRefusesUnsavedScene(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)
	session := &fakeSession{desc: bikeScene(), changed: true}

	_, err := sub.Submit(context.Background(), session, Options{})
	if !errors.Is(err, ErrUnsavedScene) || ErrorKind(err) != "validation" {
		t.Fatalf("expected unsaved scene validation error, got %v", err)
	}
	if diff := cmp.Diff([]string{"pause", "resume"}, session.calls); diff != "" {
		t.Fatalf("unexpected calls for refused scene:\n%s", diff)
	}

	session.calls = nil
	if _, err := sub.Submit(context.Background(), session, Options{SaveScene: true}); err != nil {
		t.Fatalf("Submit with save: %v", err)
	}
	if diff := cmp.Diff([]string{"pause", "save", "describe", "resume"}, session.calls); diff != "" {
		t.Fatalf("expected the scene to be saved while paused:\n%s", diff)
	}
}

func TestSubmitLeavesPausedSceneAlone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)
	session := &fakeSession{desc: bikeScene(), paused: true}

	if _, err := sub.Submit(context.Background(), session, Options{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	for _, call := range session.calls {
		if call == "pause" || call == "resume" {
			t.Fatalf("already paused scene must not be toggled, calls=%v", session.calls)
		}
	}
}

func TestSubmitResumesOnFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)
	desc := bikeScene()
	desc.Frames = "9-1"
	session := &fakeSession{desc: desc}

	_, err := sub.Submit(context.Background(), session, Options{SkipSticky: true})
	if ErrorKind(err) != "validation" {
		t.Fatalf("expected validation error, got %v", err)
	}
	if session.pausedNow {
		t.Fatal("rendering must be resumed after a failed submission")
	}
	entries, _ := os.ReadDir(cfg.Paths.JobHistoryDir)
	if len(entries) != 0 {
		t.Fatalf("no bundle should be written on failure, found %d", len(entries))
	}
}

func TestSubmitSkipStickyDoesNotPersist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)

	result, err := sub.Submit(context.Background(), &fakeSession{desc: bikeScene()}, Options{SkipSticky: true, JobName: "Custom Name"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.StickySaved {
		t.Fatal("sticky settings must not be saved with SkipSticky")
	}
	if _, err := os.Stat(cfg.Paths.StickySettingsFile); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("sticky file should not exist, stat err=%v", err)
	}
	if !strings.HasSuffix(filepath.Base(result.BundleDir), "-01-Custom_Name") || filepath.Dir(result.BundleDir) != cfg.Paths.JobHistoryDir {
		t.Fatalf("unexpected bundle dir %q", result.BundleDir)
	}
	if result.JobName != "Custom Name" {
		t.Fatalf("unexpected job name %q", result.JobName)
	}
}

func TestSubmitFromPackageArchive(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStickyDisabled())
	sub, _ := newSubmitter(t, cfg)

	archive := filepath.Join(t.TempDir(), "bike.ksp")
	writeZip(t, archive, []string{"bike.bip", "textures/paint.png"})

	result, err := sub.Submit(context.Background(), &fakeSession{desc: bikeScene()}, Options{PackageArchive: archive})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	unpack := filepath.Join(cfg.Paths.StateDir, WorkDirName, "sub-0001", scene.UnpackDirName)
	if result.InitData.SceneFile != filepath.Join(unpack, "bike.bip") {
		t.Fatalf("unexpected scene file %q", result.InitData.SceneFile)
	}
	want := []string{"/assets/tex.png", filepath.Join(unpack, "textures", "paint.png")}
	if diff := cmp.Diff(want, result.AssetReferences.AssetReferences.Inputs.Filenames); diff != "" {
		t.Fatalf("input filenames mismatch:\n%s", diff)
	}
}

type packagingSession struct {
	fakeSession
	t     *testing.T
	files []string
}

func (p *packagingSession) SavePackage(path string) error {
	p.calls = append(p.calls, "package")
	writeZip(p.t, path, p.files)
	return nil
}

func writeZip(t *testing.T, path string, names []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(name)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSubmitPackagesSceneThroughHost(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStickyDisabled())
	sub, _ := newSubmitter(t, cfg)
	session := &packagingSession{
		fakeSession: fakeSession{desc: bikeScene()},
		t:           t,
		files:       []string{"bike.bip", "assets/paint.png"},
	}

	result, err := sub.Submit(context.Background(), session, Options{PackageScene: true})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	workDir := filepath.Join(cfg.Paths.StateDir, WorkDirName, "sub-0001")
	if _, err := os.Stat(filepath.Join(workDir, "ksp", "bike"+scene.PackageFileExt)); err != nil {
		t.Fatalf("expected package archive: %v", err)
	}
	unpack := filepath.Join(workDir, scene.UnpackDirName)
	if result.InitData.SceneFile != filepath.Join(unpack, "bike.bip") {
		t.Fatalf("unexpected scene file %q", result.InitData.SceneFile)
	}
	want := []string{"/assets/tex.png", filepath.Join(unpack, "assets", "paint.png")}
	if diff := cmp.Diff(want, result.AssetReferences.AssetReferences.Inputs.Filenames); diff != "" {
		t.Fatalf("input filenames mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pause", "describe", "package", "resume"}, session.calls); diff != "" {
		t.Fatalf("unexpected calls:\n%s", diff)
	}
}

func TestSubmitPackageSceneUnsupported(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	sub, _ := newSubmitter(t, cfg)

	_, err := sub.Submit(context.Background(), &fakeSession{desc: bikeScene()}, Options{PackageScene: true})
	if !errors.Is(err, ErrPackagingUnsupported) || ErrorKind(err) != "validation" {
		t.Fatalf("expected unsupported packaging validation error, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	if ErrorKind(nil) != "" {
		t.Fatal("nil error has no kind")
	}
	if ErrorKind(errors.New("boom")) != "internal" {
		t.Fatal("plain errors are internal")
	}
	if ErrorKind(withKind("conflict", stickystore.ErrLocked)) != "conflict" {
		t.Fatal("expected conflict kind")
	}
}
