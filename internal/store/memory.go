package store

import (
	"context"

	"github.com/nibzard/tasktracker/internal/task"
)

// Memory keeps the collection in process memory. Nothing survives exit.
type Memory struct {
	tasks []task.Task
	saves int
}

// NewMemory returns a store seeded with a copy of tasks.
func NewMemory(tasks []task.Task) *Memory {
	return &Memory{tasks: clone(tasks)}
}

// Location returns a fixed description.
func (m *Memory) Location() string {
	return "memory"
}

// Load returns a copy of the stored tasks.
func (m *Memory) Load(ctx context.Context) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return clone(m.tasks), nil
}

// Save replaces the stored tasks with a copy of tasks.
func (m *Memory) Save(ctx context.Context, tasks []task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.tasks = clone(tasks)
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *Memory) Saves() int {
	return m.saves
}

func clone(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}
