package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the application logger. Unknown levels fall back to
// info; debug logging also records the source position of each call.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(levelStr))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}
