package config

import (
	"os"
	"strings"
)

// boolFromString reports whether s is one of the usual truthy spellings.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// loadFromEnv overrides config from TASKTRACKER_* environment variables.
// If sources is non-nil, it records SourceEnv for each value set.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKTRACKER_FILE"); v != "" {
		cfg.TaskFile = v
		setEnv("task_file")
	}
	if v := os.Getenv("TASKTRACKER_BACKEND"); v != "" {
		cfg.Backend = v
		setEnv("backend")
	}
	if v := os.Getenv("TASKTRACKER_ATOMIC_WRITE"); v != "" {
		cfg.AtomicWrite = boolFromString(v)
		setEnv("atomic_write")
	}

	// Logging configuration
	if v := os.Getenv("TASKTRACKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		setEnv("log_level")
	}
	if v := os.Getenv("TASKTRACKER_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		setEnv("log_format")
	}
	if v := os.Getenv("TASKTRACKER_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = boolFromString(v)
		setEnv("log_timestamps")
	}
	if v := os.Getenv("TASKTRACKER_LOG_CALLER"); v != "" {
		cfg.LogCaller = boolFromString(v)
		setEnv("log_caller")
	}
}
