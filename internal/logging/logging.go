// Package logging configures slog from the logging section of the
// configuration file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"git.home.luguber.info/inful/schemabuild/internal/config"
)

// ParseLevel maps a configured level, the SCHEMABUILD_LOG_LEVEL
// environment variable, and the --verbose flag to a slog level.
// Precedence: verbose flag > env var > config.
func ParseLevel(configured string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	if env := os.Getenv(config.EnvLogLevel); env != "" {
		configured = env
	}
	switch configured {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs the default slog logger per the configuration. Logs go
// to stderr; when a file is configured they additionally go to a
// rotating file.
func Setup(cfg config.LoggingConfig, verbose bool) {
	level := ParseLevel(cfg.Level, verbose)

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		})
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}
