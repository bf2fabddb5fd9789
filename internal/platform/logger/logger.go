package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hanxue/hanxue-api/internal/config"
)

// Setup creates a JSON logger writing to stdout at the level named in cfg and
// installs it as the slog default.
//
// An unknown level falls back to info and a warning is written to stderr.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	logger := newJSONLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)
	return logger, nil
}

func newJSONLogger(out io.Writer, levelName string) *slog.Logger {
	level, ok := ParseLevel(levelName)
	if !ok {
		tmpLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmpLogger.Warn("invalid log level configured, using default level",
			"configured_level", levelName,
			"default_level", "info")
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a case-insensitive level name to a slog.Level. The boolean
// is false, and the level info, when the name is unknown.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
