package logging

import (
	"log/slog"
	"os"
)

// Service wraps the configured logger for the gateway. A single instance is
// shared by the request middleware and the package-level helpers.
type Service struct {
	Logger *slog.Logger
}

// Default is the global logging service, set by InitLogger.
var Default *Service

// InitLogger initializes the global logger instance
func InitLogger(logDir string) {
	Default = &Service{
		Logger: SetupLogger(logDir),
	}
	slog.SetDefault(Default.Logger)
}

// ativo returns the configured logger, or a console logger when InitLogger
// has not run yet. Config validation logs before the log directory exists.
func ativo(level slog.Level) *slog.Logger {
	if Default != nil && Default.Logger != nil {
		return Default.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	ativo(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	ativo(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	ativo(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	ativo(slog.LevelDebug).Debug(msg, args...)
}
