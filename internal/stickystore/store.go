package stickystore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"rendersubmit/internal/jobsettings"
	"rendersubmit/internal/logging"
)

// ErrLocked reports that another process held the sticky settings lock for
// longer than the store was willing to wait.
var ErrLocked = errors.New("sticky settings file is locked by another process")

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// Store reads and writes the sticky settings file.
type Store struct {
	path        string
	lockTimeout time.Duration
	logger      *slog.Logger
}

// New creates a store for path. An empty path disables persistence: Load
// returns an empty snapshot and Save does nothing.
func New(path string, logger *slog.Logger) *Store {
	return &Store{
		path:        path,
		lockTimeout: defaultLockTimeout,
		logger:      logging.NewComponentLogger(logger, "stickystore"),
	}
}

// Path returns the sticky settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored snapshot. A malformed file yields an error
// matching jobsettings.ErrMalformedDocument.
func (s *Store) Load(ctx context.Context) (jobsettings.StickySettings, error) {
	if s.path == "" {
		return jobsettings.StickySettings{}, nil
	}
	unlock, err := s.lock(ctx, false)
	if err != nil {
		return jobsettings.StickySettings{}, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("no sticky settings saved yet", logging.String("path", s.path))
			return jobsettings.StickySettings{}, nil
		}
		return jobsettings.StickySettings{}, fmt.Errorf("read sticky settings: %w", err)
	}

	snapshot, err := jobsettings.DecodeStickySettings(data)
	if err != nil {
		var docErr *jobsettings.DocumentError
		if errors.As(err, &docErr) {
			docErr.Path = s.path
		}
		return jobsettings.StickySettings{}, err
	}

	s.logger.Debug("loaded sticky settings",
		logging.String("path", s.path),
		logging.Int("parameter_count", len(snapshot.ParameterValues)))
	return snapshot, nil
}

// Save replaces the stored snapshot atomically.
func (s *Store) Save(ctx context.Context, snapshot jobsettings.StickySettings) error {
	if s.path == "" {
		return nil
	}
	data, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("marshal sticky settings: %w", err)
	}

	unlock, err := s.lock(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	s.logger.Debug("saved sticky settings",
		logging.String("path", s.path),
		logging.Int("parameter_count", len(snapshot.ParameterValues)))
	return nil
}

// Clear removes the stored snapshot. Clearing a missing file is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if s.path == "" {
		return nil
	}
	unlock, err := s.lock(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove sticky settings: %w", err)
	}
	s.logger.Info("cleared sticky settings", logging.String("path", s.path))
	return nil
}

func (s *Store) lock(ctx context.Context, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create sticky settings directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	fileLock := flock.New(s.path + ".lock")
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = fileLock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = fileLock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire sticky settings lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn("failed to release sticky settings lock",
				logging.String(logging.FieldEventType, "sticky_unlock_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the .lock file if no submitter is running"),
				logging.String(logging.FieldImpact, "later submissions may wait for the lock"))
		}
	}, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
