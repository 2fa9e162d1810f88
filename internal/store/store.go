// Package store persists task collections.
//
// Every backend treats the whole collection as the unit of persistence:
// Load returns all tasks in insertion order and Save replaces them. There
// is no locking; two processes saving at once lose one of the updates.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/tasktracker/internal/task"
)

// ErrCorrupt marks a persisted collection that could not be parsed.
var ErrCorrupt = errors.New("task data is corrupted")

// CorruptError reports where corrupted data was found and why.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, ErrCorrupt, e.Err)
}

// Unwrap exposes both ErrCorrupt and the parse error.
func (e *CorruptError) Unwrap() []error {
	return []error{ErrCorrupt, e.Err}
}

// Store loads and saves the full task collection.
type Store interface {
	// Load returns the stored tasks. A store that has never been written
	// returns an empty collection and no error.
	Load(ctx context.Context) ([]task.Task, error)
	// Save replaces the stored collection with tasks.
	Save(ctx context.Context, tasks []task.Task) error
	// Location describes where the data lives, for messages.
	Location() string
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends returns the accepted backend names.
func Backends() []string {
	return []string{BackendJSON, BackendSQLite, BackendMemory}
}

// Options configures Open.
type Options struct {
	Backend     string
	Path        string
	AtomicWrite bool
}

// Open returns the store selected by opts.Backend.
func Open(opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendJSON:
		return NewJSONFile(opts.Path, WithAtomicWrite(opts.AtomicWrite)), nil
	case BackendSQLite:
		return NewSQLite(opts.Path), nil
	case BackendMemory:
		return NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (expected %s)", opts.Backend, strings.Join(Backends(), "|"))
	}
}

// NextID returns the identifier for a new task: one more than the largest
// numeric ID, or 1 when there is none. Non-numeric ids are ignored and
// gaps left by deletes are not reused.
func NextID(tasks []task.Task) task.ID {
	maxID := 0
	for _, t := range tasks {
		if n, ok := t.ID.Int(); ok && n > maxID {
			maxID = n
		}
	}
	return task.IntID(maxID + 1)
}
