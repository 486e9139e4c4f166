package logger

import (
	"log/slog"
	"os"

	"github.com/polkiloo/beautymart/internal/config"
)

// New creates a preconfigured slog.Logger writing JSON to stdout.
func New(level slog.Leveler) *slog.Logger {
	if level == nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("service", "beautymart"))
}

// FromConfig builds the application logger honoring the configured level.
func FromConfig(cfg *config.Config) *slog.Logger {
	return New(cfg.LogLevel)
}
