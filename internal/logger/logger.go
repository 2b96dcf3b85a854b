package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

var programLevel = new(slog.LevelVar)

// New builds a JSON logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs the process-wide JSON logger on stdout with the level from
// LOG_LEVEL (default INFO) and returns it.
func Setup() *slog.Logger {
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	programLevel.Set(level)

	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: programLevel}))
	slog.SetDefault(l)
	if err != nil {
		l.Warn("logger.bad_level", "error", err)
	}
	return l
}

// ParseLevel converts a level name to slog.Level. Empty means INFO.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s (defaulting to INFO)", s)
	}
}
