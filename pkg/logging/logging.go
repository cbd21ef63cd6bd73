// Package logging provides structured logging for the TPC-C engine. It is
// a thin wrapper over charmbracelet/log: one configuration shared by the
// whole process, with per-component prefixes ("store", "client") hanging
// off it.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Logger carries the process-wide log configuration. The leveled methods
// (Debug, Info, Warn, Error, ...) come from the embedded logger.
type Logger struct {
	*log.Logger
	level      log.Level
	timeFormat string
	output     io.Writer
}

// Config holds logger configuration.
type Config struct {
	// Level is one of debug, info, warn, error; unknown values mean info.
	Level      string
	TimeFormat string
	Prefix     string
	Output     io.Writer
}

// New creates a logger. A nil config or missing fields fall back to
// info-level logging on stderr with time-only stamps.
func New(cfg *Config) *Logger {
	if cfg == nil {
		cfg = &Config{}
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.TimeOnly
	}
	level := ParseLevel(cfg.Level)

	logger := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Prefix:          cfg.Prefix,
	})
	logger.SetLevel(level)

	return &Logger{Logger: logger, level: level, timeFormat: timeFormat, output: output}
}

// ParseLevel parses a string level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Component returns a logger with the given prefix and the parent's
// level, output and time format.
func (l *Logger) Component(name string) *Logger {
	logger := log.NewWithOptions(l.output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      l.timeFormat,
		Prefix:          name,
	})
	logger.SetLevel(l.level)
	return &Logger{Logger: logger, level: l.level, timeFormat: l.timeFormat, output: l.output}
}

// Process-wide default logger, replaced once the CLI has parsed its
// configuration.
var defaultLogger = New(nil)

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// GetDefault returns the default logger.
func GetDefault() *Logger {
	return defaultLogger
}
