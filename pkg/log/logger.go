package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// SetupLogger installs the default slog logger used by the expman CLI and
// examples. Output is one JSON object per line with the cockroachdb stack
// trace of any logged error attached under StacktraceAttrKey.
func SetupLogger(loglevel string) {
	SetupLoggerTo(loglevel, os.Stderr)
}

// SetupLoggerTo is SetupLogger with an explicit output destination.
func SetupLoggerTo(loglevel string, w io.Writer) {
	ops := slog.HandlerOptions{
		Level: ToLogLevel(loglevel),
	}
	handler := slog.NewJSONHandler(w, &ops)
	errFmtHandler := WrapByErrFmtHandler(handler)
	slog.SetDefault(slog.New(errFmtHandler))
}

func ToLogLevel(level string) slog.Level {
	switch level {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		panic(fmt.Sprintf("invalid log level :%s", level))
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
