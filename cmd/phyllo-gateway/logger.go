package main

import (
	"log/slog"
	"os"

	"github.com/ethanjli/phyllo-go/internal/logging"
)

func parseLevel(level string) slog.Level {
	switch level {
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

func setupLogger(format, level string) *slog.Logger {
	l := logging.New(format, parseLevel(level), os.Stderr).With("app", "phyllo-gateway")
	logging.Set(l)
	return l
}
