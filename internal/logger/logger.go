package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// current is the global logger; nil until Init or SetOutput.
var current atomic.Pointer[slog.Logger]

// level is the dynamic log level, changeable at runtime via SetLevel.
var level slog.LevelVar

// discard backs With before the logger is initialized.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init initializes the global logger with the specified level, writing to stdout.
func Init(levelStr string) {
	SetLevel(levelStr)
	SetOutput(os.Stdout)
}

// SetOutput redirects the global logger. Tests use it to capture output.
func SetOutput(w io.Writer) {
	current.Store(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: &level,
	})))
}

// L returns the global logger, or nil before Init.
func L() *slog.Logger {
	return current.Load()
}

// SetLevel changes the log level at runtime. Valid values: debug, info, warn, error.
// Invalid values fall back to info.
func SetLevel(levelStr string) {
	var lvl slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// With returns a child logger carrying the given attributes, e.g. the file
// a pipeline is working on. It never returns nil, so callers can log before Init.
func With(args ...any) *slog.Logger {
	if l := current.Load(); l != nil {
		return l.With(args...)
	}
	return discard
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	if l := current.Load(); l != nil {
		l.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...any) {
	if l := current.Load(); l != nil {
		l.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	if l := current.Load(); l != nil {
		l.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...any) {
	if l := current.Load(); l != nil {
		l.Error(msg, args...)
	}
}
