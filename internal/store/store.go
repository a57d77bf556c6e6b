// Package store persists the three show libraries (sequences, playlists,
// schedules) to a single JSON snapshot file.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arung-agamani/denpa-radio/internal/show"
)

const currentVersion = 1

// snapshotV1 is the on-disk representation. A flat, versioned document —
// same shape as what SetUpSequences already accepts — so load is a single
// pass straight back through the libraries' own validation.
type snapshotV1 struct {
	Version   int                      `json:"version"`
	Sequences []*show.Sequence         `json:"sequences"`
	Playlists []*show.Playlist         `json:"playlists"`
	Schedules []*show.ScheduledPlaylist `json:"schedules"`
}

// Store handles loading and saving the show libraries to a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store that reads from and writes to path. The parent
// directory is created automatically if it does not exist.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Save serialises the three libraries to JSON and writes them atomically
// (write to a temp file in the same directory, then rename).
func (s *Store) Save(lb *show.Libraries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := snapshotV1{
		Version:   currentVersion,
		Sequences: lb.Sequences.List(),
		Playlists: lb.Playlists.List(),
		Schedules: lb.Schedules.NonDeleted(),
	}

	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal show libraries: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "show-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(jsonBytes); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file to %q: %w", s.path, err)
	}

	slog.Info("Show libraries saved to disk", "path", s.path)
	return nil
}

// Load reads the JSON file from disk and reconstructs a fresh Libraries via
// SetUpSequences, so any unknown-reference/duplicate-id warnings from the
// persisted data surface through the same ErrSink path a live reload would.
func (s *Store) Load(sink *show.ErrSink) (*show.Libraries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read show store %q: %w", s.path, err)
	}

	var data snapshotV1
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse show store %q: %w", s.path, err)
	}

	lb := show.NewLibraries()
	lb.SetUpSequences(data.Sequences, data.Playlists, data.Schedules, sink)

	slog.Info("Show libraries loaded from disk",
		"path", s.path,
		"sequences", len(data.Sequences),
		"playlists", len(data.Playlists),
		"schedules", len(data.Schedules),
	)

	return lb, nil
}
