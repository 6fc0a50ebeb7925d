// Package logging configures the process-wide slog logger. Every handler is
// wrapped with correlation-ID stamping so tick-scoped IDs appear on all
// records.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/orourkera/getrucky-bot/internal/platform/correlation"
)

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// InitLogger installs the default logger. Unknown levels fall back to info;
// any format other than "json" selects the text handler.
func InitLogger(level, format string) {
	logLevel, ok := levels[strings.ToLower(level)]
	if !ok {
		logLevel = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(correlation.NewHandler(handler)))
}
