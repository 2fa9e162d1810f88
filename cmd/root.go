// Package cmd implements the CLI command structure for tasktracker.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/config"
	"github.com/nibzard/tasktracker/internal/logging"
	"github.com/nibzard/tasktracker/internal/store"
	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/tracker"
	"github.com/nibzard/tasktracker/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tasktracker CLI. Command results, including handled
// errors such as an unknown task id, are printed on stdout and yield a nil
// error. A non-nil error means something unexpected failed.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// app carries what every task command needs.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	out     io.Writer
	store   store.Store
	tracker *tracker.Tracker
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stdout)
		return nil
	}

	command, rest := args[0], args[1:]
	switch command {
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	case "version", "--version":
		return versionCommand(stdout)
	}

	if !knownCommand(command) {
		invalidCommand(stdout, command)
		return nil
	}

	a, err := newApp(stdout, stderr)
	if err != nil {
		return err
	}

	switch command {
	case "add":
		return a.addCommand(ctx, rest)
	case "update":
		return a.updateCommand(ctx, rest)
	case "delete":
		return a.deleteCommand(ctx, rest)
	case "list":
		return a.listCommand(ctx, "")
	case "list-todo":
		return a.listCommand(ctx, task.StatusTodo)
	case "list-in-progress":
		return a.listCommand(ctx, task.StatusInProgress)
	case "list-done":
		return a.listCommand(ctx, task.StatusDone)
	case "init":
		return a.initCommand(ctx)
	case "doctor":
		return a.doctorCommand(ctx)
	case "tui":
		return a.tuiCommand(ctx)
	}
	return nil
}

func knownCommand(command string) bool {
	switch command {
	case "add", "update", "delete",
		"list", "list-todo", "list-in-progress", "list-done",
		"init", "doctor", "tui":
		return true
	}
	return false
}

func newApp(stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg, stderr)
	logger.Debug("config loaded", "backend", cfg.Backend, "task_file", cfg.TaskFile)

	s, err := store.Open(cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    stdout,
		store:  s,
	}
	a.tracker = tracker.New(s,
		tracker.WithLogger(logger),
		tracker.WithCorruptionHandler(a.reportCorruption),
	)
	return a, nil
}

func (a *app) reportCorruption(err *store.CorruptError) {
	fmt.Fprintf(a.out, "Warning: %s is corrupted (%v); starting with an empty task list.\n", err.Path, err.Err)
}

func (a *app) tuiCommand(ctx context.Context) error {
	return ui.RunTUI(ctx, a.store, ui.WithTrackerOptions(tracker.WithLogger(a.logger)))
}

func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasktracker version %s\n", Version)
	return nil
}

func invalidCommand(w io.Writer, command string) {
	fmt.Fprintf(w, "Invalid command: %s\n\n", command)
	printUsage(w)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "tasktracker - track your tasks from the command line")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktracker <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <description>               Add a new task")
	fmt.Fprintln(w, "  update <id> -d <description>    Change a task's description")
	fmt.Fprintln(w, "  update <id> -s <status>         Change a task's status (todo|in-progress|done)")
	fmt.Fprintln(w, "  delete <id>                     Delete a task")
	fmt.Fprintln(w, "  list                            List all tasks")
	fmt.Fprintln(w, "  list-todo                       List tasks with status todo")
	fmt.Fprintln(w, "  list-in-progress                List tasks with status in-progress")
	fmt.Fprintln(w, "  list-done                       List tasks with status done")
	fmt.Fprintln(w, "  init                            Create tasktracker.toml and an empty task file")
	fmt.Fprintln(w, "  doctor                          Check configuration and the task file")
	fmt.Fprintln(w, "  tui                             Launch the terminal viewer")
	fmt.Fprintln(w, "  version                         Show version information")
	fmt.Fprintln(w, "  help                            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "-d and -s can be combined in one update.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  TASKTRACKER_FILE          Task file (default tasks.json)")
	fmt.Fprintln(w, "  TASKTRACKER_BACKEND       Storage backend (json|sqlite|memory)")
	fmt.Fprintln(w, "  TASKTRACKER_ATOMIC_WRITE  Replace the task file atomically (default true)")
	fmt.Fprintln(w, "  TASKTRACKER_LOG_LEVEL     Diagnostic log level on stderr (default warn)")
}
