package knnspace

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/knnspace/engine"
	"github.com/hupe1980/knnspace/space"
)

// Logger wraps slog.Logger with knnspace-specific field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithIndex adds an index field.
func (l *Logger) WithIndex(index string) *Logger {
	return &Logger{Logger: l.With("index", index)}
}

// WithEngine adds an engine field.
func (l *Logger) WithEngine(e engine.Engine) *Logger {
	return &Logger{Logger: l.With("engine", e.Name())}
}

// WithSpaceType adds a space_type field.
func (l *Logger) WithSpaceType(s space.SpaceType) *Logger {
	return &Logger{Logger: l.With("space_type", s.Name())}
}

// LogResolve logs a load parameter resolution.
func (l *Logger) LogResolve(ctx context.Context, index string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resolve parameters failed",
			"index", index,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "resolved parameters",
		"index", index,
		"count", count,
	)
}

// LogSearch logs a scored search.
func (l *Logger) LogSearch(ctx context.Context, index string, k, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"index", index,
			"k", k,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "search completed",
		"index", index,
		"k", k,
		"results", results,
	)
}
