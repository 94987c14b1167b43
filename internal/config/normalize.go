package config

import (
	"fmt"
	"strings"
)

// NormalizeResult records what normalization changed.
type NormalizeResult struct {
	Warnings []string
}

func (r *NormalizeResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Normalize folds enum casing, clamps out-of-range numerics, and falls
// back to defaults for unknown values. It never fails on repairable
// input; every repair is recorded as a warning.
func Normalize(cfg *Config) (*NormalizeResult, error) {
	res := &NormalizeResult{}

	if lvl := normalizeLogLevel(cfg.Logging.Level); lvl != cfg.Logging.Level {
		if lvl == "" {
			res.warnf("unknown logging.level %q, using info", cfg.Logging.Level)
			lvl = "info"
		}
		cfg.Logging.Level = lvl
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
		cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	default:
		res.warnf("unknown logging.format %q, using text", cfg.Logging.Format)
		cfg.Logging.Format = "text"
	}

	if cfg.Build.Concurrency < 0 {
		res.warnf("negative build.concurrency %d clamped to 0", cfg.Build.Concurrency)
		cfg.Build.Concurrency = 0
	}
	if cfg.History.Keep < 0 {
		res.warnf("negative history.keep %d clamped to 0", cfg.History.Keep)
		cfg.History.Keep = 0
	}
	if cfg.Watch.Debounce < 0 {
		res.warnf("negative watch.debounce clamped to default")
		cfg.Watch.Debounce = Duration(DefaultDebounce)
	}
	if cfg.Watch.Interval < 0 {
		res.warnf("negative watch.interval clamped to 0")
		cfg.Watch.Interval = 0
	}

	return res, nil
}

func normalizeLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return strings.ToLower(level)
	case "warning":
		return "warn"
	default:
		return ""
	}
}
