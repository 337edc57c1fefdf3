package audit

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is an interface for logging.
// CUSTOMIZATION: Implement this interface with your preferred logging library.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a Logger writing slog text records to w at the given
// level. Messages are printf-style formatted before they are logged.
func NewLogger(w io.Writer, level string) Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return &slogLogger{l: slog.New(h)}
}

// DiscardLogger returns a Logger that drops everything.
func DiscardLogger() Logger {
	return NewLogger(io.Discard, "error")
}

// WithJob returns a logger that tags every record with the client and job.
func WithJob(l Logger, client, job string) Logger {
	if sl, ok := l.(*slogLogger); ok {
		return &slogLogger{l: sl.l.With("client", client, "job", job)}
	}
	return l
}

type slogLogger struct {
	l *slog.Logger
}

func (s *slogLogger) Debug(msg string, args ...interface{}) {
	s.l.Debug(format(msg, args))
}

func (s *slogLogger) Info(msg string, args ...interface{}) {
	s.l.Info(format(msg, args))
}

func (s *slogLogger) Warn(msg string, args ...interface{}) {
	s.l.Warn(format(msg, args))
}

func (s *slogLogger) Error(msg string, args ...interface{}) {
	s.l.Error(format(msg, args))
}

func format(msg string, args []interface{}) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}
