package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports that no submission matches the requested ID.
var ErrNotFound = errors.New("submission not found")

// ErrAmbiguousID reports that an ID prefix matches more than one submission.
var ErrAmbiguousID = errors.New("submission id prefix is ambiguous")

// timestampLayout keeps a fixed width so created_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one submission history row.
type Record struct {
	ID             string    `json:"id"`
	JobName        string    `json:"job_name"`
	SceneFile      string    `json:"scene_file"`
	BundleDir      string    `json:"bundle_dir"`
	ParameterCount int       `json:"parameter_count"`
	InputCount     int       `json:"input_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store manages submission history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Record inserts a submission. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("submission id is required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (
            id, job_name, scene_file, bundle_dir, parameter_count, input_count, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.JobName,
		rec.SceneFile,
		rec.BundleDir,
		rec.ParameterCount,
		rec.InputCount,
		rec.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// List returns the most recent submissions, newest first. A limit <= 0
// returns every row.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, job_name, scene_file, bundle_dir, parameter_count, input_count, created_at
        FROM submissions ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return records, nil
}

// Get returns the submission whose ID equals id or uniquely starts with it.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_name, scene_file, bundle_dir, parameter_count, input_count, created_at
        FROM submissions WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return Record{}, fmt.Errorf("get submission: %w", err)
	}
	defer rows.Close()

	var matches []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return Record{}, err
		}
		if rec.ID == id {
			return rec, nil
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("iterate submissions: %w", err)
	}
	switch len(matches) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Record{}, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec       Record
		createdAt string
	)
	if err := row.Scan(&rec.ID, &rec.JobName, &rec.SceneFile, &rec.BundleDir,
		&rec.ParameterCount, &rec.InputCount, &createdAt); err != nil {
		return Record{}, fmt.Errorf("scan submission: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Record{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	return rec, nil
}
