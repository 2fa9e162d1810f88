package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tasktracker/internal/task"
	"github.com/nibzard/tasktracker/internal/tracker"
	"github.com/nibzard/tasktracker/internal/ui"
)

const updateUsage = "Usage: tasktracker update <id> -d <description> | -s <status>"

func (a *app) addCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		invalidCommand(a.out, "add")
		return nil
	}

	created, err := a.tracker.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Task added: %s (ID: %s)\n", created.Description, created.ID)
	return nil
}

func (a *app) updateCommand(ctx context.Context, args []string) error {
	id, changes, ok := parseUpdateArgs(args)
	if !ok {
		fmt.Fprintln(a.out, updateUsage)
		return nil
	}

	_, err := a.tracker.Update(ctx, id, changes)
	var statusErr *tracker.InvalidStatusError
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Task %s updated successfully.\n", id)
	case errors.As(err, &statusErr):
		fmt.Fprintf(a.out, "Error: invalid status %q. Valid statuses: %s.\n", statusErr.Status, task.StatusList())
	case errors.Is(err, tracker.ErrNotFound):
		a.notFound(id)
	default:
		return err
	}
	return nil
}

// parseUpdateArgs parses "<id> [-d <description...>] [-s <status>]".
// Words following the -d value are appended to the description, so an
// unquoted multi-word description works.
func parseUpdateArgs(args []string) (task.ID, tracker.Changes, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return task.ID{}, tracker.Changes{}, false
	}
	id := task.ParseID(args[0])

	fs := flag.NewFlagSet("tasktracker update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	description := fs.String("d", "", "New description")
	status := fs.String("s", "", "New status (todo|in-progress|done)")

	var extra []string
	remaining := args[1:]
	for {
		if err := fs.Parse(remaining); err != nil {
			return task.ID{}, tracker.Changes{}, false
		}
		remaining = fs.Args()
		if len(remaining) == 0 {
			break
		}
		extra = append(extra, remaining[0])
		remaining = remaining[1:]
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["d"] && !set["s"] {
		return task.ID{}, tracker.Changes{}, false
	}
	if len(extra) > 0 {
		if !set["d"] {
			return task.ID{}, tracker.Changes{}, false
		}
		*description = strings.Join(append([]string{*description}, extra...), " ")
	}

	return id, tracker.Changes{Description: *description, Status: *status}, true
}

func (a *app) deleteCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		invalidCommand(a.out, "delete")
		return nil
	}
	id := task.ParseID(args[0])

	_, err := a.tracker.Delete(ctx, id)
	switch {
	case err == nil:
		fmt.Fprintf(a.out, "Task %s deleted successfully.\n", id)
	case errors.Is(err, tracker.ErrNotFound):
		a.notFound(id)
	default:
		return err
	}
	return nil
}

func (a *app) notFound(id task.ID) {
	fmt.Fprintf(a.out, "Error: task with ID %s not found.\n", id)
}

func (a *app) listCommand(ctx context.Context, status task.Status) error {
	tasks, err := a.tracker.List(ctx, status)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		if status != "" {
			fmt.Fprintf(a.out, "No tasks with status '%s' found.\n", status)
		} else {
			fmt.Fprintln(a.out, "No tasks found.")
		}
		return nil
	}
	return ui.WriteTable(a.out, tasks)
}
