package logging

import (
	"log/slog"
	"os"
)

// Logger is a thin wrapper around slog.Logger so call sites can attach
// request-scoped fields without caring about the underlying handler.
type Logger struct {
	*slog.Logger
}

// NewLogger creates the process-wide logger. Development mode uses a
// human-readable text handler at debug level; production emits JSON.
func NewLogger(development bool) *Logger {
	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger with the given fields attached to
// every record.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}
