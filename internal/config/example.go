package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktracker configuration file
# Every value can be overridden by a TASKTRACKER_* environment variable.

# Storage backend: json, sqlite or memory
backend = "json"

# Task file (relative to the working directory; supports ~ and $VAR)
# Defaults to tasks.json, or tasks.db for the sqlite backend.
task_file = "tasks.json"

# Write to a temp file and rename it over the task file
atomic_write = true

# Diagnostics on stderr: debug, info, warn, error
log_level = "warn"

# Log format: text, json or logfmt
log_format = "text"

log_timestamps = false
log_caller = false
`
}
