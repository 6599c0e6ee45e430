package logging

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// Logger is the application logger. It embeds *slog.Logger, so Info, Warn,
// Error, Debug and Log are available directly.
type Logger struct {
	*slog.Logger
}

// NewLogger writes human-readable text in development and JSON otherwise.
func NewLogger(isDevelopment bool) *Logger {
	return NewLoggerWithWriter(os.Stdout, isDevelopment)
}

func NewLoggerWithWriter(w io.Writer, isDevelopment bool) *Logger {
	var handler slog.Handler
	if isDevelopment {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithFields returns a child logger that always includes the given fields.
// Keys are added in sorted order so output is stable.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &Logger{Logger: l.Logger.With(args...)}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
