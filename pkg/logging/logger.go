package logging

import (
	"context"
	"io"
	"log/slog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// CompileIDKey is the context key for compile IDs.
	CompileIDKey contextKey = "compile_id"
	// SceneKey is the context key for the scene being compiled.
	SceneKey contextKey = "scene"
)

// WithCompileID returns a context carrying a compile ID.
func WithCompileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CompileIDKey, id)
}

// CompileIDFromContext returns the compile ID of ctx, or "".
func CompileIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CompileIDKey).(string)
	return id
}

// WithScene returns a context carrying a scene name.
func WithScene(ctx context.Context, scene string) context.Context {
	return context.WithValue(ctx, SceneKey, scene)
}

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
	config Config
}

// New creates a new Logger with the given configuration.
func New(config Config) *Logger {
	return NewWithWriter(config, config.GetOutput())
}

// NewWithWriter creates a new Logger with a custom writer.
func NewWithWriter(config Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(&ContextHandler{Handler: handler}),
		config: config,
	}
}

// SetDefault sets this logger as the default slog logger.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.Logger)
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
	}
}

// WithModule returns a new Logger with module context.
func (l *Logger) WithModule(module string) *Logger {
	return l.With("module", module)
}

// ContextHandler is a slog.Handler that extracts context values.
type ContextHandler struct {
	slog.Handler
}

// Handle adds context values to the log record and passes to the wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(CompileIDKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("compile_id", id))
	}
	if scene, ok := ctx.Value(SceneKey).(string); ok && scene != "" {
		r.AddAttrs(slog.String("scene", scene))
	}
	return h.Handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler with the given attributes.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// ModuleLogger creates a logger for a specific module using the default logger.
func ModuleLogger(module string) *slog.Logger {
	return slog.Default().With("module", module)
}
