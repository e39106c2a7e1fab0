// Package logging constructs the worker's structured logger.
//
// All diagnostic output goes to stderr. stdout is the protocol channel and
// carries only result artifact paths or encoded status records.
package logging

import (
	"log/slog"
	"os"
)

// New creates a logger with the given level and format ("text" or "json"),
// writing to stderr.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
