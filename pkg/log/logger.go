package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/YuminosukeSato/diagnosis/pkg/errors"
)

// SetupLogger function setup logger.
func SetupLogger(loglevel string) {
	slog.SetDefault(NewJSONLogger(os.Stdout, ToLogLevel(loglevel)))
}

// NewJSONLogger builds the slog logger used by SetupLogger, writing to w.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	ops := slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		// Replace attributes to convert to CloudLogging format.
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				attr = slog.Attr{
					Key:   "severity",
					Value: attr.Value,
				}
			case slog.MessageKey:
				attr = slog.Attr{
					Key:   "message",
					Value: attr.Value,
				}
			case slog.SourceKey:
				attr = slog.Attr{
					Key:   "logging.googleapis.com/sourceLocation",
					Value: attr.Value,
				}
			}
			return attr
		},
	}
	handler := slog.NewJSONHandler(w, &ops)
	return slog.New(WrapByErrFmtHandler(handler))
}

// ToLogLevel converts a level name; unknown names panic.
func ToLogLevel(level string) slog.Level {
	lv, err := ParseLevel(level)
	if err != nil {
		panic(err.Error())
	}
	return lv
}

// ParseLevel is the non-panicking variant of ToLogLevel used by config validation.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, errors.Newf("invalid log level: %s", level)
	}
}

const (
	ErrAttrKey        = "error"
	StacktraceAttrKey = "stacktrace"
)

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}
