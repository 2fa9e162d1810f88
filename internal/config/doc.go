// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.tasktracker/tasktracker.toml or OS-specific config directory)
// 3. Project config file (tasktracker.toml or .tasktracker.toml in the working directory)
// 4. Environment variables (TASKTRACKER_*)
//
// Each level overrides the previous one.
//
// User-level config locations:
// - ~/.tasktracker/tasktracker.toml (preferred)
// - Windows: %APPDATA%\tasktracker\tasktracker.toml
// - macOS: ~/Library/Application Support/tasktracker/tasktracker.toml
// - Linux/BSD: $XDG_CONFIG_HOME/tasktracker/tasktracker.toml or ~/.config/tasktracker/tasktracker.toml
//
// Project-level config locations (overrides user config):
// - ./tasktracker.toml (preferred)
// - ./.tasktracker.toml
package config
