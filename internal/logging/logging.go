// Package logging builds the structured logger handed to every ETL component.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Formats accepted by New
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New creates a logger writing to w (stderr when nil). Debug level adds source locations.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts "debug", "info", "warn"/"warning" or "error" to a slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// WithRun returns a logger annotated with the run id and build version.
func WithRun(logger *slog.Logger, runID, version string) *slog.Logger {
	return logger.With("run_id", runID, "version", version)
}
