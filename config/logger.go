package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// InitLogger installs a text logger writing into w as the default slog
// logger. An unknown level falls back to INFO and is reported as a warning.
func InitLogger(w io.Writer, logLevel string) *slog.Logger {
	level, err := parseLogLevel(logLevel)

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err != nil {
		logger.Warn(err.Error())
	}

	return logger
}

func parseLogLevel(levelStr string) (slog.Level, error) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q, using INFO", levelStr)
	}
}
