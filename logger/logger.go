package logger

import (
	"io"
	"log/slog"

	"github.com/nathoo/raidcore/config"
)

// Setup configures the global slog logger based on environment. Logs go to
// w so the interactive front ends can keep stdout for game output.
func Setup(cfg *config.Config, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	if cfg.Environment == "production" {
		// JSON format for production
		handler = slog.NewJSONHandler(w, opts)
	} else {
		// Text format for development
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// WithPlayer adds the player id to logger context.
func WithPlayer(logger *slog.Logger, playerID string) *slog.Logger {
	return logger.With("player", playerID)
}

// WithError adds error to logger context.
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}
