// Package logging builds the diagnostic logger used across tasktracker.
//
// Diagnostics go to stderr through charmbracelet/log. Command results are
// never logged; they are printed on stdout by the cmd package.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktracker/internal/config"
)

// Prefix is prepended to every log line.
const Prefix = "tasktracker"

// Options configures the logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// NewWithOptions creates a logger writing to w.
func NewWithOptions(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// New creates a logger writing to w, configured from cfg.
func New(cfg *config.Config, w io.Writer) *log.Logger {
	return NewWithOptions(w, OptionsFromConfig(cfg))
}

// OptionsFromConfig converts the string settings in cfg to logger options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Level:           ParseLogLevel(cfg.LogLevel),
		Formatter:       ParseLogFormatter(cfg.LogFormat),
		ReportTimestamp: cfg.LogTimestamps,
		ReportCaller:    cfg.LogCaller,
		Prefix:          Prefix,
	}
}

// ParseLogLevel parses a string log level to a charmbracelet/log Level.
// Unknown values fall back to warn.
func ParseLogLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func ParseLogFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
