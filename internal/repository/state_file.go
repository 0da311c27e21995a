package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/andres10976/cve-monitor/internal/model"
)

// FileStateStore keeps the monitor state as a JSON document on disk.
type FileStateStore struct {
	path string
}

func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

func (s *FileStateStore) Path() string { return s.path }

// Load reads the state file. Missing or malformed content yields the zero
// state rather than an error.
func (s *FileStateStore) Load(_ context.Context) model.MonitorState {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("no valid state found, starting fresh", "path", s.path)
		return model.MonitorState{}
	}
	if err != nil {
		slog.Warn("failed to read state file, starting fresh", "path", s.path, "error", err)
		return model.MonitorState{}
	}

	var state model.MonitorState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("corrupt state file, starting fresh", "path", s.path, "error", err)
		return model.MonitorState{}
	}
	slog.Info("loaded state", "pull_count", state.PullCount)
	return state
}

// Save replaces the state file atomically: the record is written to a temp
// file in the same directory, synced, then renamed over the target.
func (s *FileStateStore) Save(_ context.Context, state model.MonitorState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	slog.Info("saved state", "pull_count", state.PullCount)
	return nil
}
