// Package logging provides structured logging tagged with compile context.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds the logging configuration.
type Config struct {
	// Level sets the minimum log level: debug, info, warn, error
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`

	// Format specifies the output format: json or text
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=json text"`

	// Output specifies the output destination: stdout, stderr, or a file path
	Output string `json:"output" yaml:"output"`

	// AddSource adds source file and line number to log entries
	AddSource bool `json:"addSource" yaml:"addSource"`
}

// DefaultConfig returns the defaults for a command line tool: text on stderr,
// leaving stdout to the command's output.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}

// ConfigFromEnv creates a configuration from environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides c with EVENTC_LOG_* environment variables.
func (c *Config) ApplyEnv() {
	if level := os.Getenv("EVENTC_LOG_LEVEL"); level != "" {
		c.Level = strings.ToLower(level)
	}
	if format := os.Getenv("EVENTC_LOG_FORMAT"); format != "" {
		c.Format = strings.ToLower(format)
	}
	if output := os.Getenv("EVENTC_LOG_OUTPUT"); output != "" {
		c.Output = output
	}
	if os.Getenv("EVENTC_LOG_ADD_SOURCE") == "true" {
		c.AddSource = true
	}
}

// ParseLevel converts a string level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetOutput returns the io.Writer for the configured output.
func (c Config) GetOutput() io.Writer {
	switch c.Output {
	case "stdout":
		return os.Stdout
	case "", "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}
