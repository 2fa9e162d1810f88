package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nibzard/tasktracker/internal/task"
)

// JSONFile stores tasks as a JSON array in a single file.
type JSONFile struct {
	path   string
	atomic bool
}

// JSONOption configures a JSONFile.
type JSONOption func(*JSONFile)

// WithAtomicWrite makes Save write a sibling temp file and rename it over
// the target, so readers never observe a half-written file.
func WithAtomicWrite(enabled bool) JSONOption {
	return func(s *JSONFile) {
		s.atomic = enabled
	}
}

// NewJSONFile returns a store backed by the file at path.
func NewJSONFile(path string, opts ...JSONOption) *JSONFile {
	s := &JSONFile{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the file path.
func (s *JSONFile) Location() string {
	return s.path
}

// Load reads and parses the task file. A missing or blank file is an
// empty collection. Unparseable content yields a *CorruptError and the
// file is left as it is.
func (s *JSONFile) Load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("read task file: %w", err)
	}

	tasks, err := task.DecodeCollection(data)
	if err != nil {
		return nil, &CorruptError{Path: s.path, Err: err}
	}
	return tasks, nil
}

// Save writes the full collection, replacing the file.
func (s *JSONFile) Save(ctx context.Context, tasks []task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := task.EncodeCollection(tasks)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create task dir: %w", err)
		}
	}

	if !s.atomic {
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			return fmt.Errorf("write task file: %w", err)
		}
		return nil
	}
	return writeAtomic(s.path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
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
	// CreateTemp uses 0600; match what a plain write would produce.
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}
