package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	return logEntry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "default config", config: DefaultConfig()},
		{name: "json format", config: Config{Level: "info", Format: "json"}},
		{name: "text format", config: Config{Level: "info", Format: "text"}},
		{name: "debug level", config: Config{Level: "debug", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_WithModule(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.WithModule("build").Info("compiled")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "build", logEntry["module"])
	assert.Equal(t, "compiled", logEntry["msg"])
}

func TestContextHandler_WithContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	ctx := WithScene(WithCompileID(context.Background(), "c-123"), "Level 1")
	assert.Equal(t, "c-123", CompileIDFromContext(ctx))
	assert.Empty(t, CompileIDFromContext(context.Background()))

	logger.With("key", "value").InfoContext(ctx, "test with context")

	logEntry := decodeEntry(t, &buf)
	assert.Equal(t, "c-123", logEntry["compile_id"])
	assert.Equal(t, "Level 1", logEntry["scene"])
	assert.Equal(t, "value", logEntry["key"])
}

func TestContextHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	logger.Logger.WithGroup("cache").Info("lookup", "hit", true)

	logEntry := decodeEntry(t, &buf)
	group, ok := logEntry["cache"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, group["hit"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String())

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Level: "info", Format: "text"}, &buf)

	logger.Info("text test", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "text test")
	assert.Contains(t, output, "key=value")
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("EVENTC_LOG_LEVEL", "DEBUG")
	t.Setenv("EVENTC_LOG_FORMAT", "JSON")
	t.Setenv("EVENTC_LOG_OUTPUT", "stdout")
	t.Setenv("EVENTC_LOG_ADD_SOURCE", "true")

	config := ConfigFromEnv()

	assert.Equal(t, "debug", config.Level)
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "stdout", config.Output)
	assert.True(t, config.AddSource)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "text", config.Format)
	assert.Equal(t, "stderr", config.Output)
	assert.Equal(t, os.Stderr, config.GetOutput())
	assert.False(t, config.AddSource)
}

func TestGetOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventc.log")
	w := Config{Output: path}.GetOutput()
	f, ok := w.(*os.File)
	require.True(t, ok)
	defer f.Close()

	logger := NewWithWriter(Config{Format: "text"}, f)
	logger.Info("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestModuleLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	NewWithWriter(Config{Level: "info", Format: "json"}, &buf).SetDefault()

	ModuleLogger("test-module").Info("module test")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var logEntry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))
	assert.Equal(t, "test-module", logEntry["module"])
}
