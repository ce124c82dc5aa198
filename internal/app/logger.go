package app

import (
	"io"
	"log/slog"
)

// logLevel maps the CLI level flags onto slog levels. The CLI rejects
// anything outside this set, so the fallback to Info only covers callers
// that construct an App without going through flag parsing.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger builds the logger every transpilation run logs through. It is
// never set as the process default; tests hand each run its own writer so
// parallel runs keep separate streams.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
