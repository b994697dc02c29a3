package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"rendersubmit/internal/adaptor"
	"rendersubmit/internal/history"
	"rendersubmit/internal/scene"
	"rendersubmit/internal/stickystore"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStickySettings verifies the sticky settings file is absent or decodes.
func CheckStickySettings(ctx context.Context, path string) Result {
	const name = "Sticky settings"
	snapshot, err := stickystore.New(path, nil).Load(ctx)
	if err != nil {
		if errors.Is(err, stickystore.ErrLocked) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: locked by another process)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if snapshot.IsEmpty() {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (none saved)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d parameters)", path, len(snapshot.ParameterValues))}
}

// CheckHistoryDatabase verifies the history database opens with the expected
// schema version. A missing database is created.
func CheckHistoryDatabase(path string) Result {
	const name = "History database"
	store, err := history.Open(path)
	if err != nil {
		if errors.Is(err, history.ErrSchemaMismatch) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: schema mismatch, delete it to start over)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema ok)", path)}
}

// CheckAdaptorContract verifies the embedded adaptor schemas compile and
// accept minimal init and run data.
func CheckAdaptorContract() Result {
	const name = "Adaptor contract"
	if err := (adaptor.InitData{SceneFile: "scene" + scene.SceneFileExt}).Validate(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
	}
	if err := (adaptor.RunData{Frame: 1}).Validate(); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("error: %v", err)}
	}
	return Result{Name: name, Passed: true, Detail: "interface " + adaptor.InterfaceVersion}
}
