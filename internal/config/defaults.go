package config

import "time"

// Default values applied before normalization.
const (
	DefaultSourceDir   = "."
	DefaultArtifact    = "data/schema.json"
	DefaultExamplesDir = "data/examples"
	DefaultCacheDir    = ".schemabuild/cache"
	DefaultHistoryPath = ".schemabuild/history.db"
	DefaultNATSSubject = "schemabuild.builds"

	DefaultDebounce = 500 * time.Millisecond

	DefaultLogMaxSizeMB  = 50
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// DefaultInclude lists the glob patterns selecting source files.
var DefaultInclude = []string{"*.schema.yaml", "*.schema.yml"}

// ApplyDefaults fills zero values with their defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.Source.Dir == "" {
		cfg.Source.Dir = DefaultSourceDir
	}
	if len(cfg.Source.Include) == 0 {
		cfg.Source.Include = append([]string(nil), DefaultInclude...)
	}
	if cfg.Output.Artifact == "" {
		cfg.Output.Artifact = DefaultArtifact
	}
	if cfg.Output.ExamplesDir == "" {
		cfg.Output.ExamplesDir = DefaultExamplesDir
	}
	if cfg.Output.CacheDir == "" {
		cfg.Output.CacheDir = DefaultCacheDir
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = Duration(DefaultDebounce)
	}
	if cfg.Watch.NATS.Subject == "" {
		cfg.Watch.NATS.Subject = DefaultNATSSubject
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
}
