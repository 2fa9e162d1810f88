package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultTaskFile    = "tasks.json"
	DefaultSQLiteFile  = "tasks.db"
	DefaultBackend     = "json"
	DefaultAtomicWrite = true
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// ProjectConfigName is the file name written by init and looked up in the
// working directory.
const ProjectConfigName = "tasktracker.toml"

// Config holds the full configuration for tasktracker.
type Config struct {
	// Storage
	TaskFile    string `toml:"task_file"`
	Backend     string `toml:"backend"`
	AtomicWrite bool   `toml:"atomic_write"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	ProjectRoot string `toml:"-"`
}
