// Package watch keeps the artifact current while schema sources are
// being edited: a debounced filesystem watcher plus an optional
// periodic rebuild, with build events and metrics for downstream
// consumers.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/schemabuild/internal/build"
	"git.home.luguber.info/inful/schemabuild/internal/config"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
)

// Service runs the watch loop.
type Service struct {
	cfg     *config.Config
	dir     string
	builder *build.Builder
	rec     *metrics.PrometheusRecorder
	pub     *Publisher

	// buildMu serializes rebuilds; a debounce firing during a scheduled
	// rebuild must wait, not interleave.
	buildMu sync.Mutex
}

// NewService wires a watch service. rec and pub may be nil.
func NewService(cfg *config.Config, dir string, builder *build.Builder, rec *metrics.PrometheusRecorder, pub *Publisher) *Service {
	return &Service{cfg: cfg, dir: dir, builder: builder, rec: rec, pub: pub}
}

// Run builds once, then rebuilds on changes until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	rebuild := func() { s.rebuild(ctx) }

	debouncer := NewDebouncer(s.cfg.Watch.Debounce.Std(), rebuild)
	defer debouncer.Stop()

	watcher, err := NewWatcher(s.dir, s.cfg.Source.Include, debouncer)
	if err != nil {
		return err
	}

	var scheduler *Scheduler
	if interval := s.cfg.Watch.Interval.Std(); interval > 0 {
		scheduler, err = NewScheduler()
		if err != nil {
			return err
		}
		if err := scheduler.SchedulePeriodicRebuild(interval, rebuild); err != nil {
			return err
		}
		scheduler.Start(ctx)
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				slog.Warn("Failed to stop scheduler", "error", err)
			}
		}()
	}

	var metricsServer *http.Server
	if s.cfg.Watch.MetricsAddr != "" && s.rec != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.rec.Handler())
		metricsServer = &http.Server{Addr: s.cfg.Watch.MetricsAddr, Handler: mux}
		go func() {
			slog.Info("Metrics endpoint listening", "addr", s.cfg.Watch.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutCtx)
		}()
	}

	// Initial build so the artifact exists before the first change.
	s.rebuild(ctx)

	slog.Info("Watching schema sources", "dir", s.dir, "debounce", s.cfg.Watch.Debounce.Std())
	err = watcher.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) rebuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	report, err := s.builder.Build(ctx, s.dir)
	if err != nil {
		slog.Error("Rebuild failed", "error", err, "violations", report.Diagnostics.Len())
		for _, d := range report.Diagnostics.Diagnostics {
			slog.Warn("Diagnostic", "kind", d.Kind, "file", d.File, "path", d.Path, "message", d.Message)
		}
	}

	if s.pub != nil {
		event := BuildEvent{
			BuildID:      report.BuildID,
			TreeHash:     report.TreeHash,
			Outcome:      string(report.Outcome),
			Declarations: report.Declarations,
			DurationMS:   report.Duration().Milliseconds(),
			ArtifactPath: s.cfg.Output.Artifact,
			Timestamp:    time.Now().UTC(),
		}
		if err := s.pub.Publish(event); err != nil {
			slog.Warn("Failed to publish build event", "error", err)
		}
	}
}
