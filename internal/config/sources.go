package config

// Fields returns the configurable keys in display order.
func Fields() []string {
	return []string{
		"task_file",
		"backend",
		"atomic_write",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.TaskFile = ""
	cfg.Backend = DefaultBackend
	cfg.AtomicWrite = DefaultAtomicWrite
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}

// ConfigFile returns the highest-priority config file that was read, or
// an empty string when only defaults and environment were used.
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// Source returns where the named field got its value.
func (cws *ConfigWithSources) Source(field string) ConfigSource {
	if s, ok := cws.Sources[field]; ok {
		return s
	}
	return SourceDefault
}
