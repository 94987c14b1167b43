package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/schemabuild/internal/build"
	"git.home.luguber.info/inful/schemabuild/internal/config"
	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/examples"
	"git.home.luguber.info/inful/schemabuild/internal/gitsource"
	"git.home.luguber.info/inful/schemabuild/internal/history"
	"git.home.luguber.info/inful/schemabuild/internal/logging"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
	"git.home.luguber.info/inful/schemabuild/internal/storage"
	"git.home.luguber.info/inful/schemabuild/internal/workspace"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"schemabuild.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Validate the source tree and write the canonical JSON artifact"`
	Validate ValidateCmd `cmd:"" help:"Check the source tree without writing anything"`
	Fmt      FmtCmd      `cmd:"" help:"Rewrite source files in canonical form"`
	Vet      VetCmd      `cmd:"" help:"Validate plus style lints"`
	List     ListCmd     `cmd:"" help:"List declarations in the source tree"`
	Query    QueryCmd    `cmd:"" help:"Run a jq expression against the merged document"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild continuously as sources change"`
	Builds   BuildsCmd   `cmd:"" help:"Show recent build history"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; basic logging is set up once here
// and refined from the config file by commands that load one.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file (or defaults when the default
// path is absent) and applies its logging section.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging, root.Verbose)
	return cfg, nil
}

// resolveSource materializes the source tree: the configured directory,
// or a fresh checkout when a git source is configured. The cleanup
// function is always safe to call.
func resolveSource(ctx context.Context, cfg *config.Config) (string, func(), error) {
	if cfg.Source.Git == nil {
		if _, err := os.Stat(cfg.Source.Dir); err != nil {
			return "", func() {}, fmt.Errorf("source directory %s: %w", cfg.Source.Dir, err)
		}
		return cfg.Source.Dir, func() {}, nil
	}

	ws := workspace.NewManager("")
	if err := ws.Create(); err != nil {
		return "", func() {}, err
	}
	cleanup := func() {
		if err := ws.Cleanup(); err != nil {
			slog.Warn("Failed to cleanup workspace", "error", err)
		}
	}

	dir, err := gitsource.Fetch(ctx, cfg.Source.Git, ws.Path())
	if err != nil {
		cleanup()
		return "", func() {}, err
	}
	return dir, cleanup, nil
}

// newBuilder assembles a Builder with the configured collaborators.
// The history store, when enabled, is returned for closing by the caller.
func newBuilder(cfg *config.Config, rec metrics.Recorder) (*build.Builder, *history.Store, error) {
	opts := []build.Option{build.WithRecorder(rec)}

	if cfg.Build.ExamplesEnabled() {
		opts = append(opts, build.WithExamples(examples.NewGenerator()))
	}

	if cfg.Output.CacheDir != "" {
		cache, err := storage.Open(cfg.Output.CacheDir)
		if err != nil {
			slog.Warn("Artifact cache unavailable", "dir", cfg.Output.CacheDir, "error", err)
		} else {
			opts = append(opts, build.WithCache(cache))
		}
	}

	var hist *history.Store
	if cfg.History.Enabled {
		var err error
		hist, err = history.Open(cfg.History.Path, cfg.History.Keep)
		if err != nil {
			slog.Warn("Build history unavailable", "path", cfg.History.Path, "error", err)
		} else {
			opts = append(opts, build.WithHistory(hist))
		}
	}

	return build.New(cfg, opts...), hist, nil
}

// printDiagnostics writes every diagnostic to stderr, one per line.
func printDiagnostics(report *diag.Report) {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func closeHistory(hist *history.Store) {
	if hist == nil {
		return
	}
	if err := hist.Close(); err != nil {
		slog.Warn("Failed to close build history", "error", err)
	}
}
