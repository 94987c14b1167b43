// Package config loads and normalizes the schemabuild configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "schemabuild.yaml"

// Config represents the application configuration
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
	History HistoryConfig `yaml:"history"`
}

// SourceConfig locates the schema source tree.
type SourceConfig struct {
	// Dir is the root of the source tree. Ignored when Git is set.
	Dir string `yaml:"dir,omitempty"`

	// Include lists glob patterns (matched against base names) selecting
	// source files. Defaults to *.schema.yaml and *.schema.yml.
	Include []string `yaml:"include,omitempty"`

	// Git, when set, fetches the source tree from a repository before
	// building.
	Git *GitSourceConfig `yaml:"git,omitempty"`
}

// GitSourceConfig describes a remote schema source tree.
type GitSourceConfig struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
	// Path is the subdirectory within the repository holding the tree.
	Path string `yaml:"path,omitempty"`
	// Token is a bearer token for private repositories. Supports
	// ${VAR} expansion from the environment.
	Token string `yaml:"token,omitempty"`
}

// OutputConfig locates build artifacts.
type OutputConfig struct {
	// Artifact is the consolidated JSON document path.
	Artifact string `yaml:"artifact,omitempty"`

	// ExamplesDir receives derived example fixtures.
	ExamplesDir string `yaml:"examples_dir,omitempty"`

	// CacheDir holds the content-addressed artifact cache used for
	// unchanged-tree skips.
	CacheDir string `yaml:"cache_dir,omitempty"`
}

// BuildConfig tunes the pipeline.
type BuildConfig struct {
	// FailFast stops validation at the first violation instead of
	// collecting all of them.
	FailFast bool `yaml:"fail_fast,omitempty"`

	// Concurrency bounds parallel source file parsing. 0 means GOMAXPROCS.
	Concurrency int `yaml:"concurrency,omitempty"`

	// Examples toggles fixture generation. Defaults to true.
	Examples *bool `yaml:"examples,omitempty"`
}

// ExamplesEnabled reports whether example generation is on.
func (b BuildConfig) ExamplesEnabled() bool {
	return b.Examples == nil || *b.Examples
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Debounce coalesces filesystem events before a rebuild.
	Debounce Duration `yaml:"debounce,omitempty"`

	// Interval, when nonzero, also rebuilds periodically.
	Interval Duration `yaml:"interval,omitempty"`

	// MetricsAddr exposes Prometheus metrics when set (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	NATS NATSConfig `yaml:"nats"`
}

// NATSConfig describes the build-event publisher.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// LoggingConfig tunes slog output.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level,omitempty"`

	// Format is text or json.
	Format string `yaml:"format,omitempty"`

	// File, when set, duplicates logs to a rotating file.
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
}

// HistoryConfig tunes the SQLite build-history store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
	// Keep bounds the number of retained builds. 0 keeps everything.
	Keep int `yaml:"keep,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, berrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes, defaults, and normalizes raw configuration bytes.
// Environment variables in the raw content are expanded first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)
	if _, err := Normalize(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads the given path, or returns a defaulted config when
// the file is the default path and absent. An explicitly requested file
// that is missing is still an error.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == DefaultPath {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			cfg := &Config{}
			ApplyDefaults(cfg)
			return cfg, nil
		}
	}
	return Load(configPath)
}

// Validate rejects configurations no normalization can repair.
func Validate(cfg *Config) error {
	if cfg.Source.Git != nil && cfg.Source.Git.URL == "" {
		return berrors.ConfigInvalid("source.git.url", "required when source.git is set")
	}
	if cfg.Watch.NATS.Enabled && cfg.Watch.NATS.URL == "" {
		return berrors.ConfigInvalid("watch.nats.url", "required when watch.nats.enabled is true")
	}
	return nil
}
