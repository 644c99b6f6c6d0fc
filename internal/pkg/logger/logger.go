// Package logger provides structured JSON logging with optional PII redaction.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
)

var (
	level     = new(slog.LevelVar)
	redactPII atomic.Bool
	std       atomic.Pointer[slog.Logger]
)

func init() {
	redactPII.Store(true)
	std.Store(New(os.Stderr))
}

// New builds a JSON logger writing to w. Attributes whose key mentions an
// email, and any address embedded in string values, are masked while
// redaction is enabled.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}))
}

// Setup configures the default logger from a textual level.
func Setup(lvl string, redact bool) {
	SetLevel(ParseLevel(lvl))
	SetRedactPII(redact)
	slog.SetDefault(L())
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// SetLevel sets the minimum log level.
func SetLevel(l slog.Level) { level.Set(l) }

// SetRedactPII enables or disables PII redaction.
func SetRedactPII(r bool) { redactPII.Store(r) }

// SetOutput replaces the default logger's destination. Mainly for tests.
func SetOutput(w io.Writer) { std.Store(New(w)) }

// L returns the default logger.
func L() *slog.Logger { return std.Load() }

// With returns the default logger with a component attribute attached.
func With(component string) *slog.Logger {
	return L().With("component", component)
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...any) { L().Log(context.Background(), slog.LevelDebug, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...any) { L().Log(context.Background(), slog.LevelInfo, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...any) { L().Log(context.Background(), slog.LevelWarn, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...any) { L().Log(context.Background(), slog.LevelError, msg, fields...) }

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if !redactPII.Load() || a.Value.Kind() != slog.KindString {
		return a
	}
	key := strings.ToLower(a.Key)
	val := a.Value.String()
	if strings.Contains(key, "email") || strings.Contains(key, "recipient") {
		return slog.String(a.Key, RedactEmail(val))
	}
	if strings.Contains(val, "@") {
		return slog.String(a.Key, emailRegex.ReplaceAllStringFunc(val, RedactEmail))
	}
	return a
}
