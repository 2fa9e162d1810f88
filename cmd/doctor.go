package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
)

// doctorCommand reports the effective configuration and checks the task
// data without modifying it.
func (a *app) doctorCommand(ctx context.Context) error {
	w := a.out
	fmt.Fprintln(w, "Task Tracker Doctor")
	fmt.Fprintln(w, "===================")
	fmt.Fprintln(w)

	allOK := true

	cws, err := config.LoadWithSources()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if file := cws.ConfigFile(); file != "" {
		fmt.Fprintf(w, "Config file: %s\n", file)
	} else {
		fmt.Fprintln(w, "Config file: none (defaults and environment)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Effective config:")
	if err := toml.NewEncoder(w).Encode(a.cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, field := range config.Fields() {
		fmt.Fprintf(w, "  %-15s %s\n", field, cws.Source(field))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Storage (%s): %s\n", a.cfg.Backend, a.store.Location())
	switch a.cfg.Backend {
	case store.BackendMemory:
		fmt.Fprintln(w, "  ⚠️  In-memory backend: nothing is persisted")
	case store.BackendJSON:
		if !checkJSONFile(w, a.cfg.TaskFile) {
			allOK = false
		}
	default:
		if !checkStore(ctx, w, a.store, a.cfg.TaskFile) {
			allOK = false
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// statPath prints the existence check for path and reports whether the
// content should be inspected.
func statPath(w io.Writer, path string) (exists, ok bool) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "  ⚠️  Not found (created by the first add)")
		return false, true
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return false, false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		return false, false
	}
	fmt.Fprintln(w, "  ✅ Exists")
	return true, true
}

func checkJSONFile(w io.Writer, path string) bool {
	exists, ok := statPath(w, path)
	if !exists {
		return ok
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Read error: %v\n", err)
		return false
	}

	tasks, decodeErr := task.DecodeCollection(data)

	result, err := task.ValidateFile(data)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Not valid JSON: %v\n", err)
		return false
	}
	if result.Valid {
		fmt.Fprintln(w, "  ✅ Matches schema")
	} else {
		if decodeErr == nil {
			fmt.Fprintln(w, "  ⚠️  Schema violations (the file still loads):")
		} else {
			fmt.Fprintln(w, "  ❌ Schema violations:")
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
	}

	if decodeErr != nil {
		fmt.Fprintf(w, "  ❌ Cannot be loaded: %v\n", decodeErr)
		return false
	}
	return checkTasks(w, tasks)
}

func checkStore(ctx context.Context, w io.Writer, s store.Store, path string) bool {
	exists, ok := statPath(w, path)
	if !exists {
		return ok
	}
	tasks, err := s.Load(ctx)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Cannot be loaded: %v\n", err)
		return false
	}
	return checkTasks(w, tasks)
}

func checkTasks(w io.Writer, tasks []task.Task) bool {
	fmt.Fprintf(w, "  Tasks: %d\n", len(tasks))
	result := task.CheckCollection(tasks)
	if result.Valid {
		fmt.Fprintln(w, "  ✅ Collection OK")
		return true
	}
	fmt.Fprintln(w, "  ❌ Collection problems:")
	for _, e := range result.Errors {
		fmt.Fprintf(w, "     - %v\n", e)
	}
	return false
}

// initCommand writes an example config and an empty task store, leaving
// existing files alone.
func (a *app) initCommand(ctx context.Context) error {
	w := a.out

	if _, err := os.Stat(config.ProjectConfigName); err == nil {
		fmt.Fprintf(w, "%s already exists\n", config.ProjectConfigName)
	} else if errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(config.ProjectConfigName, []byte(config.ExampleConfig()), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", config.ProjectConfigName, err)
		}
		fmt.Fprintf(w, "Created %s\n", config.ProjectConfigName)
	} else {
		return err
	}

	if a.cfg.Backend == store.BackendMemory {
		return nil
	}
	if _, err := os.Stat(a.cfg.TaskFile); err == nil {
		fmt.Fprintf(w, "%s already exists\n", a.cfg.TaskFile)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := a.store.Save(ctx, nil); err != nil {
		return fmt.Errorf("creating task store: %w", err)
	}
	fmt.Fprintf(w, "Created %s\n", a.cfg.TaskFile)
	return nil
}
