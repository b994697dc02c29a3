package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Description is the state of the open scene as reported by the host.
type Description struct {
	ScenePath      string   `json:"scenePath"`
	OutputFilePath string   `json:"outputFilePath,omitempty"`
	OutputFormat   string   `json:"outputFormat,omitempty"`
	Frames         string   `json:"frames,omitempty"`
	DetectedAssets []string `json:"detectedAssets,omitempty"`
	SceneChanged   bool     `json:"sceneChanged,omitempty"`
	Paused         bool     `json:"paused,omitempty"`
}

// Name returns the scene file name without its extension.
func (d Description) Name() string {
	base := filepath.Base(strings.TrimSpace(d.ScenePath))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Session is the subset of the host API the submitter drives.
type Session interface {
	Describe() Description
	SceneChanged() bool
	Save() error
	Paused() bool
	Pause() error
	Resume() error
}

// ErrNoScenePath is returned when a description does not name a scene file.
var ErrNoScenePath = errors.New("scene description has no scenePath")

// ParseDescription decodes a scene description document.
func ParseDescription(data []byte) (Description, error) {
	var desc Description
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&desc); err != nil {
		return Description{}, fmt.Errorf("decode scene description: %w", err)
	}
	if strings.TrimSpace(desc.ScenePath) == "" {
		return Description{}, ErrNoScenePath
	}
	return desc, nil
}

// FileSession is a Session backed by a scene description file. Save and the
// pause toggles write the updated state back so the host script can observe
// them.
type FileSession struct {
	path string

	mu   sync.Mutex
	desc Description
}

// OpenFileSession loads the description at path.
func OpenFileSession(path string) (*FileSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene description: %w", err)
	}
	desc, err := ParseDescription(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FileSession{path: path, desc: desc}, nil
}

// Describe returns a copy of the current description.
func (s *FileSession) Describe() Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	desc := s.desc
	desc.DetectedAssets = append([]string(nil), s.desc.DetectedAssets...)
	return desc
}

func (s *FileSession) SceneChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc.SceneChanged
}

// Save marks the scene as saved.
func (s *FileSession) Save() error {
	return s.update(func(d *Description) { d.SceneChanged = false })
}

func (s *FileSession) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.desc.Paused
}

func (s *FileSession) Pause() error {
	return s.update(func(d *Description) { d.Paused = true })
}

func (s *FileSession) Resume() error {
	return s.update(func(d *Description) { d.Paused = false })
}

func (s *FileSession) update(fn func(*Description)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.desc
	fn(&next)
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene description: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write scene description: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace scene description: %w", err)
	}
	s.desc = next
	return nil
}
