// Package log provides structured logging for experiment preparation and
// training bookkeeping.
//
// The package defines a minimal, slog-compatible Logger interface plus the
// attribute-key constants used throughout expman, so that the logging
// backend can be swapped (slog, zerolog, a test capture) without touching
// call sites.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ExperimentIDKey, "exp-75933634-45101139",
//	    log.RunIDKey, "run--20-03-03--15-52",
//	)
//	logger.Info("run prepared",
//	    log.OperationKey, "prepare",
//	    log.GroupCountKey, 3,
//	)
package log

import (
	"context"
	"log/slog"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog. Fields are alternating key-value pairs, as in slog.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If a field value is an error, implementations may attach stack
	// trace information (see ErrFmtHandler).
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	// Use it to bind experiment.id / run.id once per run.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// slogLogger adapts the process-wide slog default to the Logger interface.
type slogLogger struct {
	l *slog.Logger
}

// GetLogger returns a Logger backed by the default slog logger, as
// configured by SetupLogger.
func GetLogger() Logger {
	return &slogLogger{l: slog.Default()}
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.l.Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.l.Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.l.Warn(msg, fields...) }
func (s *slogLogger) Error(msg string, fields ...any) { s.l.Error(msg, fields...) }

func (s *slogLogger) With(fields ...any) Logger {
	return &slogLogger{l: s.l.With(fields...)}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.l.Enabled(ctx, slog.Level(level))
}
