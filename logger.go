package relgraph

import (
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with relgraph-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000), // Unreachable level
		})),
	}
}

// WithAttribute adds an attribute name field to the logger.
func (l *Logger) WithAttribute(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("attribute", name),
	}
}

// LogIndex logs an index operation.
func (l *Logger) LogIndex(relToken any, reindexed bool, err error) {
	if err != nil {
		l.Error("index failed",
			"relation", relToken,
			"error", err,
		)
	} else {
		l.Debug("index completed",
			"relation", relToken,
			"reindexed", reindexed,
		)
	}
}

// LogUnindex logs an unindex operation.
func (l *Logger) LogUnindex(relToken any, found bool) {
	l.Debug("unindex completed",
		"relation", relToken,
		"found", found,
	)
}

// LogQuery logs the start of a query.
func (l *Logger) LogQuery(op string, query Query, err error) {
	if err != nil {
		l.Warn("query rejected",
			"op", op,
			"query", query,
			"error", err,
		)
	} else {
		l.Debug("query started",
			"op", op,
			"query", query,
		)
	}
}
