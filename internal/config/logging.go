package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger from the logging settings.
// verbose forces debug level. An unknown level falls back to info.
func NewLogger(l *Logging, w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	jsonLogging := false
	if l != nil {
		if l.Level != nil {
			if err := level.UnmarshalText([]byte(*l.Level)); err != nil {
				level = slog.LevelInfo
			}
		}
		if l.Json != nil {
			jsonLogging = *l.Json
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if jsonLogging {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
