package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Batch commands and the HTTP server share
// the same text handler so cron output stays grep-able.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
