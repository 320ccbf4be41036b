// Package logger provides the structured, levelled logger used across the
// harness, built on log/slog.
//
// Local runs get human-readable text output; CI runs (CONFORM_ENV=ci) get
// JSON lines so the harness log can be archived next to the report artifact:
//
//	logger.Info("case executed", "name", name, "status", status)
//	// → time=... level=INFO msg="case executed" name=user_create_200 status=200
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var L *slog.Logger

func init() {
	L = New(os.Getenv("CONFORM_ENV"))
	slog.SetDefault(L)
}

// New builds a logger for the given environment name.
// "ci" and "production" select the JSON handler at INFO; anything else gets
// the text handler at DEBUG.
func New(env string) *slog.Logger {
	var handler slog.Handler

	switch strings.ToLower(env) {
	case "ci", "production", "prod":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
