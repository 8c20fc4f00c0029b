// Package log provides the structured logging layer of the diagnosis workflow.
//
// The Logger interface is a minimal slog-compatible facade. The default
// implementation forwards to the process-wide slog logger configured by
// SetupLogger; tests swap it for a TestLogger with SetLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("imbalance").With(log.OperationKey, "fit_resample")
//	logger.Info("Resampled training set",
//	    log.SamplesKey, 570,
//	    log.FeaturesKey, 30,
//	)
package log

import (
	"context"
	"log/slog"
	"sync"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
type Logger interface {
	// Debug logs a debug-level message with optional key-value fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional key-value fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional key-value fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. If the first field is an error it
	// is attached under ErrAttrKey so that its stack trace is extracted.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
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

// slogLogger adapts *slog.Logger to Logger. A nil inner logger means
// "use slog.Default() at call time" so SetupLogger takes effect after
// package-level loggers were created.
type slogLogger struct {
	inner  *slog.Logger
	fields []any
}

func (s *slogLogger) logger() *slog.Logger {
	l := s.inner
	if l == nil {
		l = slog.Default()
	}
	if len(s.fields) > 0 {
		l = l.With(s.fields...)
	}
	return l
}

func (s *slogLogger) Debug(msg string, fields ...any) { s.logger().Debug(msg, fields...) }
func (s *slogLogger) Info(msg string, fields ...any)  { s.logger().Info(msg, fields...) }
func (s *slogLogger) Warn(msg string, fields ...any)  { s.logger().Warn(msg, fields...) }

func (s *slogLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttr(err)}, fields[1:]...)
		}
	}
	s.logger().Error(msg, fields...)
}

func (s *slogLogger) With(fields ...any) Logger {
	merged := make([]any, 0, len(s.fields)+len(fields))
	merged = append(merged, s.fields...)
	merged = append(merged, fields...)
	return &slogLogger{inner: s.inner, fields: merged}
}

func (s *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return s.logger().Enabled(ctx, slog.Level(level))
}

// NewSlogLogger wraps l; a nil l follows slog.Default().
func NewSlogLogger(l *slog.Logger) Logger {
	return &slogLogger{inner: l}
}

var (
	globalMu     sync.RWMutex
	globalLogger Logger = &slogLogger{}
)

// GetLogger returns the package-wide logger.
func GetLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// GetLoggerWithName returns the package-wide logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	return GetLogger().With(ComponentKey, name)
}

// SetLogger replaces the package-wide logger and returns the previous one.
func SetLogger(l Logger) Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := globalLogger
	globalLogger = l
	return prev
}
