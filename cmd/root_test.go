package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/tasktracker/internal/task"
)

// workspace isolates config lookup and the task file in temp dirs and
// returns the working directory.
func workspace(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"TASKTRACKER_FILE", "TASKTRACKER_BACKEND", "TASKTRACKER_ATOMIC_WRITE",
		"TASKTRACKER_LOG_LEVEL", "TASKTRACKER_LOG_FORMAT",
		"TASKTRACKER_LOG_TIMESTAMPS", "TASKTRACKER_LOG_CALLER",
	} {
		t.Setenv(name, "")
	}
	chdirForTest(t, t.TempDir())
	dir, err := os.Getwd()
	require.NoError(t, err)
	return dir
}

// runCLI runs the CLI and returns stdout. It fails the test on an
// unexpected error.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	require.NoError(t, err, "stderr: %s", stderr.String())
	return stdout.String()
}

func loadTasks(t *testing.T, dir string) []task.Task {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	tasks, err := task.DecodeCollection(data)
	require.NoError(t, err)
	return tasks
}

func TestExampleScenario(t *testing.T) {
	dir := workspace(t)

	assert.Equal(t, "Task added: Buy milk (ID: 1)\n", runCLI(t, "add", "Buy", "milk"))
	assert.Equal(t, "Task added: Walk dog (ID: 2)\n", runCLI(t, "add", "Walk dog"))
	assert.Equal(t, "Task 1 updated successfully.\n", runCLI(t, "update", "1", "-s", "done"))

	out := runCLI(t, "list-done")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "done")
	assert.NotContains(t, out, "Walk dog")

	assert.Equal(t, "Task 2 deleted successfully.\n", runCLI(t, "delete", "2"))

	out = runCLI(t, "list")
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "1     Buy milk"))

	tasks := loadTasks(t, dir)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.IntID(1), tasks[0].ID)
	assert.Equal(t, task.StatusDone, tasks[0].Status)
}

func TestHelp(t *testing.T) {
	workspace(t)
	for _, args := range [][]string{nil, {"help"}, {"-h"}, {"--help"}} {
		out := runCLI(t, args...)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "list-in-progress")
	}
}

func TestVersion(t *testing.T) {
	workspace(t)
	assert.Equal(t, "tasktracker version dev\n", runCLI(t, "version"))
}

func TestInvalidCommand(t *testing.T) {
	dir := workspace(t)

	out := runCLI(t, "frobnicate")
	assert.True(t, strings.HasPrefix(out, "Invalid command: frobnicate\n"))
	assert.Contains(t, out, "Usage:")

	out = runCLI(t, "add")
	assert.True(t, strings.HasPrefix(out, "Invalid command: add\n"))

	out = runCLI(t, "delete")
	assert.True(t, strings.HasPrefix(out, "Invalid command: delete\n"))

	_, err := os.Stat(filepath.Join(dir, "tasks.json"))
	assert.True(t, os.IsNotExist(err), "invalid commands never touch storage")
}

func TestUpdateUsageErrors(t *testing.T) {
	workspace(t)
	runCLI(t, "add", "x")

	for _, args := range [][]string{
		{"update"},
		{"update", "1"},
		{"update", "-s", "done"},
		{"update", "1", "-x", "y"},
		{"update", "1", "-s"},
		{"update", "1", "stray", "-s", "done"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			assert.Equal(t, updateUsage+"\n", runCLI(t, args...))
		})
	}
}

func TestUpdateDescription(t *testing.T) {
	dir := workspace(t)
	runCLI(t, "add", "old")

	assert.Equal(t, "Task 1 updated successfully.\n", runCLI(t, "update", "1", "-d", "Buy", "oat", "milk"))
	tasks := loadTasks(t, dir)
	assert.Equal(t, "Buy oat milk", tasks[0].Description)
	assert.Equal(t, task.StatusTodo, tasks[0].Status)

	runCLI(t, "update", "1", "-d", "new words", "-s", "in-progress")
	tasks = loadTasks(t, dir)
	assert.Equal(t, "new words", tasks[0].Description)
	assert.Equal(t, task.StatusInProgress, tasks[0].Status)
}

func TestUpdateInvalidStatus(t *testing.T) {
	dir := workspace(t)
	runCLI(t, "add", "x")
	before, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)

	out := runCLI(t, "update", "1", "-s", "bogus")
	assert.Equal(t, "Error: invalid status \"bogus\". Valid statuses: todo, in-progress, done.\n", out)

	after, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestNotFound(t *testing.T) {
	workspace(t)
	runCLI(t, "add", "x")

	assert.Equal(t, "Error: task with ID 7 not found.\n", runCLI(t, "update", "7", "-s", "done"))
	assert.Equal(t, "Error: task with ID 7 not found.\n", runCLI(t, "delete", "7"))
	assert.Equal(t, "Error: task with ID abc not found.\n", runCLI(t, "delete", "abc"))
}

func TestNumericStringIDMatches(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"),
		[]byte(`[{"id": "5", "description": "legacy", "status": "todo"}]`), 0o644))

	assert.Equal(t, "Task 5 updated successfully.\n", runCLI(t, "update", "05", "-s", "done"))
	assert.Equal(t, "Task added: next (ID: 6)\n", runCLI(t, "add", "next"))
}

func TestListEmptyMessages(t *testing.T) {
	workspace(t)

	assert.Equal(t, "No tasks found.\n", runCLI(t, "list"))
	assert.Equal(t, "No tasks with status 'todo' found.\n", runCLI(t, "list-todo"))

	runCLI(t, "add", "x")
	assert.Equal(t, "No tasks with status 'in-progress' found.\n", runCLI(t, "list-in-progress"))
	assert.Equal(t, "No tasks with status 'done' found.\n", runCLI(t, "list-done"))
}

func TestListSortsByID(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(`[
		{"id": 3, "description": "three", "status": "todo"},
		{"id": 1, "description": "one", "status": "todo"},
		{"id": 2, "description": "two", "status": "todo"}
	]`), 0o644))

	out := runCLI(t, "list")
	one := strings.Index(out, "one")
	two := strings.Index(out, "two")
	three := strings.Index(out, "three")
	assert.True(t, one < two && two < three, out)
	assert.Contains(t, out, "N/A")
}

func TestCorruptFile(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	out := runCLI(t, "list")
	assert.Contains(t, out, "Warning: "+path+" is corrupted (")
	assert.Contains(t, out, "No tasks found.")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))

	out = runCLI(t, "add", "fresh")
	assert.Contains(t, out, "Task added: fresh (ID: 1)")
	assert.Len(t, loadTasks(t, dir), 1)
}

func TestUnusualValuesAreNotCorruption(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "tasks.json")
	body := `[
		{"id": 1, "description": "Buy milk", "status": "todo", "createdAt": "2024-01-15T10:30:00+0530", "updatedAt": "15/01/2024 10:30"},
		{"id": 2, "description": "Walk dog", "status": null, "createdAt": "2024-01-16T08:00:00Z", "updatedAt": "2024-01-16T08:00:00Z"},
		{"id": 3, "description": "Call mom", "status": 3, "createdAt": "2024-01-17T08:00:00Z", "updatedAt": "2024-01-17T08:00:00Z"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out := runCLI(t, "list")
	assert.NotContains(t, out, "corrupted")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2024-01-15   15/01/2024")
	assert.Contains(t, out, "Walk dog")
	assert.Contains(t, out, "Call mom")

	out = runCLI(t, "add", "Pay rent")
	assert.Contains(t, out, "Task added: Pay rent (ID: 4)")

	tasks := loadTasks(t, dir)
	require.Len(t, tasks, 4)
	var descs []string
	for _, tk := range tasks {
		descs = append(descs, tk.Description)
	}
	assert.Equal(t, []string{"Buy milk", "Walk dog", "Call mom", "Pay rent"}, descs)
	assert.Equal(t, "2024-01-15T10:30:00+0530", tasks[0].RawCreatedAt)

	out = runCLI(t, "update", "3", "-s", "done")
	assert.Contains(t, out, "Task 3 updated successfully.")
	assert.Equal(t, task.StatusDone, loadTasks(t, dir)[2].Status)
}

func TestTaskFileFromEnvironment(t *testing.T) {
	dir := workspace(t)
	t.Setenv("TASKTRACKER_FILE", filepath.Join("nested", "mine.json"))

	runCLI(t, "add", "x")
	_, err := os.Stat(filepath.Join(dir, "nested", "mine.json"))
	assert.NoError(t, err)
}

func TestSQLiteBackend(t *testing.T) {
	dir := workspace(t)
	t.Setenv("TASKTRACKER_BACKEND", "sqlite")

	assert.Equal(t, "Task added: first (ID: 1)\n", runCLI(t, "add", "first"))
	assert.Equal(t, "Task added: second (ID: 2)\n", runCLI(t, "add", "second"))
	runCLI(t, "update", "2", "-s", "done")

	out := runCLI(t, "list-done")
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")

	_, err := os.Stat(filepath.Join(dir, "tasks.db"))
	assert.NoError(t, err)
}

func TestConfigErrorIsReturned(t *testing.T) {
	workspace(t)
	t.Setenv("TASKTRACKER_BACKEND", "redis")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"list"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestDebugLogsGoToStderr(t *testing.T) {
	workspace(t)
	t.Setenv("TASKTRACKER_LOG_LEVEL", "debug")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"add", "x"}, &stdout, &stderr))
	assert.Equal(t, "Task added: x (ID: 1)\n", stdout.String())
	assert.Contains(t, stderr.String(), "saved tasks")
}

func TestInit(t *testing.T) {
	dir := workspace(t)

	out := runCLI(t, "init")
	assert.Contains(t, out, "Created tasktracker.toml")
	assert.Contains(t, out, "Created "+filepath.Join(dir, "tasks.json"))

	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	out = runCLI(t, "init")
	assert.Contains(t, out, "tasktracker.toml already exists")
	assert.Contains(t, out, "already exists")

	assert.Equal(t, "No tasks found.\n", runCLI(t, "list"))
}

func TestDoctor(t *testing.T) {
	t.Run("missing file passes", func(t *testing.T) {
		workspace(t)
		out := runCLI(t, "doctor")
		assert.Contains(t, out, "Effective config:")
		assert.Contains(t, out, `backend = "json"`)
		assert.Contains(t, out, "Not found")
		assert.Contains(t, out, "All checks passed")
	})

	t.Run("valid file passes", func(t *testing.T) {
		workspace(t)
		runCLI(t, "add", "x")
		out := runCLI(t, "doctor")
		assert.Contains(t, out, "Matches schema")
		assert.Contains(t, out, "Tasks: 1")
	})

	t.Run("duplicates fail", func(t *testing.T) {
		dir := workspace(t)
		path := filepath.Join(dir, "tasks.json")
		body := `[
    {"id": 1, "description": "a", "status": "todo", "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"},
    {"id": 1, "description": "b", "status": "todo", "createdAt": "2024-01-01T00:00:00Z", "updatedAt": "2024-01-01T00:00:00Z"}
]`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"doctor"}, &stdout, &stderr)
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "duplicate id 1")

		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, body, string(data), "doctor never modifies the file")
	})

	t.Run("legacy shape warns", func(t *testing.T) {
		dir := workspace(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"),
			[]byte(`[{"id": "1", "description": "a", "status": "todo"}]`), 0o644))
		out := runCLI(t, "doctor")
		assert.Contains(t, out, "Schema violations")
		assert.Contains(t, out, "All checks passed")
	})

	t.Run("unusual values fail", func(t *testing.T) {
		dir := workspace(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"),
			[]byte(`[{"id": 1, "description": "a", "status": 3, "createdAt": "15/01/2024"}]`), 0o644))

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"doctor"}, &stdout, &stderr)
		require.Error(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Tasks: 1")
		assert.Contains(t, out, `invalid status "3"`)
		assert.Contains(t, out, `unrecognized timestamp "15/01/2024"`)
		assert.NotContains(t, out, "Cannot be loaded")
	})

	t.Run("corrupt file fails", func(t *testing.T) {
		dir := workspace(t)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks.json"), []byte("[{"), 0o644))

		var stdout, stderr bytes.Buffer
		err := run(context.Background(), []string{"doctor"}, &stdout, &stderr)
		require.Error(t, err)
		assert.Contains(t, stdout.String(), "Not valid JSON")
	})
}

func TestParseUpdateArgs(t *testing.T) {
	id, changes, ok := parseUpdateArgs([]string{"3", "-s", "done", "-d", "a", "b"})
	require.True(t, ok)
	assert.Equal(t, task.IntID(3), id)
	assert.Equal(t, "done", changes.Status)
	assert.Equal(t, "a b", changes.Description)

	_, _, ok = parseUpdateArgs([]string{"3", "-s", "done", "extra"})
	assert.False(t, ok)
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
