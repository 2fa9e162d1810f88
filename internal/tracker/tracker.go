// Package tracker implements the task operations on top of a store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
)

var (
	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidStatus is returned for a status outside the accepted set.
	ErrInvalidStatus = errors.New("invalid status")
)

// InvalidStatusError carries the rejected status value.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s %q, must be one of: %s", ErrInvalidStatus, e.Status, task.StatusList())
}

// Unwrap returns ErrInvalidStatus.
func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidStatus
}

// CorruptionHandler is called when the stored collection cannot be parsed.
// The operation then continues with an empty collection.
type CorruptionHandler func(err *store.CorruptError)

// Tracker runs task operations against a store.
type Tracker struct {
	store     store.Store
	logger    *log.Logger
	now       func() time.Time
	onCorrupt CorruptionHandler
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithCorruptionHandler sets the callback for unparseable stored data.
func WithCorruptionHandler(h CorruptionHandler) Option {
	return func(t *Tracker) {
		t.onCorrupt = h
	}
}

// New returns a Tracker over s.
func New(s store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Changes lists the fields an update sets. Empty strings mean "leave as is".
type Changes struct {
	Description string
	Status      string
}

// Add appends a new todo task and returns it.
func (t *Tracker) Add(ctx context.Context, description string) (task.Task, error) {
	tasks, err := t.load(ctx)
	if err != nil {
		return task.Task{}, err
	}

	created := task.New(store.NextID(tasks), description, t.now())
	tasks = append(tasks, created)
	if err := t.save(ctx, tasks); err != nil {
		return task.Task{}, err
	}
	t.logger.Debug("task added", "id", created.ID, "count", len(tasks))
	return created, nil
}

// Update applies changes to the first task matching id and refreshes its
// updatedAt, saving even when changes is empty. An invalid status aborts
// before anything is written.
func (t *Tracker) Update(ctx context.Context, id task.ID, changes Changes) (task.Task, error) {
	tasks, err := t.load(ctx)
	if err != nil {
		return task.Task{}, err
	}

	idx := indexOf(tasks, id)
	if idx < 0 {
		return task.Task{}, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	if changes.Status != "" {
		if status := task.Status(changes.Status); !status.Valid() {
			return task.Task{}, &InvalidStatusError{Status: changes.Status}
		}
	}

	updated := &tasks[idx]
	if changes.Description != "" {
		updated.Description = changes.Description
	}
	if changes.Status != "" {
		updated.Status = task.Status(changes.Status)
	}
	updated.UpdatedAt = t.now()
	updated.RawUpdatedAt = ""

	if err := t.save(ctx, tasks); err != nil {
		return task.Task{}, err
	}
	t.logger.Debug("task updated", "id", id, "status", updated.Status)
	return *updated, nil
}

// Delete removes every task matching id and returns how many were removed.
// The store is only written when something was removed.
func (t *Tracker) Delete(ctx context.Context, id task.ID) (int, error) {
	tasks, err := t.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := tasks[:0:0]
	for _, tk := range tasks {
		if id.IsZero() || tk.ID != id {
			kept = append(kept, tk)
		}
	}
	removed := len(tasks) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}

	if err := t.save(ctx, kept); err != nil {
		return 0, err
	}
	t.logger.Debug("task deleted", "id", id, "removed", removed)
	return removed, nil
}

// List returns the tasks to display: duplicates of an id dropped (first
// wins), filtered by exact status when status is non-empty, and sorted by
// id with non-numeric ids last.
func (t *Tracker) List(ctx context.Context, status task.Status) ([]task.Task, error) {
	tasks, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	visible := task.Filter(task.Dedupe(tasks), status)
	task.Sort(visible)
	return visible, nil
}

// Location returns where the underlying store keeps its data.
func (t *Tracker) Location() string {
	return t.store.Location()
}

func (t *Tracker) load(ctx context.Context) ([]task.Task, error) {
	tasks, err := t.store.Load(ctx)
	if err == nil {
		t.logger.Debug("loaded tasks", "location", t.store.Location(), "count", len(tasks))
		return tasks, nil
	}

	var corrupt *store.CorruptError
	if errors.As(err, &corrupt) {
		t.logger.Debug("stored tasks are corrupted", "location", corrupt.Path, "err", corrupt.Err)
		if t.onCorrupt != nil {
			t.onCorrupt(corrupt)
		}
		return []task.Task{}, nil
	}
	return nil, fmt.Errorf("loading tasks: %w", err)
}

func (t *Tracker) save(ctx context.Context, tasks []task.Task) error {
	if err := t.store.Save(ctx, tasks); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}
	t.logger.Debug("saved tasks", "location", t.store.Location(), "count", len(tasks))
	return nil
}

// indexOf returns the first task matching id. A task without an id never
// matches.
func indexOf(tasks []task.Task, id task.ID) int {
	if id.IsZero() {
		return -1
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
