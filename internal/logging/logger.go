package logging

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a logger writing to w at the named level, as JSON or as
// logfmt-style text.
func New(w io.Writer, level string, formatJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: GetLevel(level)}
	if formatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func GetLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
