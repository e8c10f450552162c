package logging

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Setup configures the process-wide slog logger. Debug switches the handler
// to LevelDebug; repeated calls are no-ops.
func Setup(debug bool) *slog.Logger {
	once.Do(func() {
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	})
	return logger
}

// L returns the configured logger, falling back to slog's default.
func L() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
