package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/schemabuild/internal/build"
	"git.home.luguber.info/inful/schemabuild/internal/examples"
	"git.home.luguber.info/inful/schemabuild/internal/history"
	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
	"git.home.luguber.info/inful/schemabuild/internal/storage"
	"git.home.luguber.info/inful/schemabuild/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous rebuilds on
// source changes, with optional periodic rebuilds, build events, and a
// metrics endpoint.
type WatchCmd struct{}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Source.Git != nil {
		return fmt.Errorf("watch operates on local sources only; use watch.interval with a local checkout instead")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rec := metrics.NewPrometheusRecorder()

	// A shared parse cache keeps rebuilds from re-decoding unchanged files.
	parseCache, err := loader.NewCache(0)
	if err != nil {
		return err
	}
	sharedLoader := loader.New(
		loader.WithInclude(cfg.Source.Include),
		loader.WithConcurrency(cfg.Build.Concurrency),
		loader.WithCache(parseCache),
	)

	opts := []build.Option{
		build.WithRecorder(rec),
		build.WithLoader(sharedLoader),
	}
	if cfg.Build.ExamplesEnabled() {
		opts = append(opts, build.WithExamples(examples.NewGenerator()))
	}
	if cfg.Output.CacheDir != "" {
		if cache, err := storage.Open(cfg.Output.CacheDir); err == nil {
			opts = append(opts, build.WithCache(cache))
		} else {
			slog.Warn("Artifact cache unavailable", "dir", cfg.Output.CacheDir, "error", err)
		}
	}
	var hist *history.Store
	if cfg.History.Enabled {
		if hist, err = history.Open(cfg.History.Path, cfg.History.Keep); err == nil {
			opts = append(opts, build.WithHistory(hist))
		} else {
			slog.Warn("Build history unavailable", "path", cfg.History.Path, "error", err)
			hist = nil
		}
	}
	defer closeHistory(hist)

	builder := build.New(cfg, opts...)

	var pub *watch.Publisher
	if cfg.Watch.NATS.Enabled {
		pub, err = watch.NewPublisher(cfg.Watch.NATS)
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	service := watch.NewService(cfg, cfg.Source.Dir, builder, rec, pub)

	slog.Info("Watch mode started", "source", cfg.Source.Dir)
	if err := service.Run(ctx); err != nil {
		return err
	}
	slog.Info("Watch mode stopped")
	return nil
}
