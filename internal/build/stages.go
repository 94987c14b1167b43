package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
	"git.home.luguber.info/inful/schemabuild/internal/validate"
)

// state is the working set of one build invocation. Each invocation owns
// a fresh state; nothing is shared across runs.
type state struct {
	dir    string
	report *Report

	files []*loader.ParsedFile
	idx   *validate.Index

	docBytes []byte
}

type stageFn func(ctx context.Context, st *state) error

type stageDef struct {
	name Stage
	fn   stageFn
}

// runStages executes stages in order, recording timing and stopping on
// the first error. Cancellation is checked between stages.
func runStages(ctx context.Context, st *state, stages []stageDef, rec metrics.Recorder) error {
	for _, sd := range stages {
		select {
		case <-ctx.Done():
			st.report.Outcome = OutcomeCanceled
			rec.IncStageResult(string(sd.name), metrics.ResultCanceled)
			return fmt.Errorf("stage %s canceled: %w", sd.name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := sd.fn(ctx, st)
		dur := time.Since(t0)

		st.report.StageDurations[sd.name] = dur
		rec.ObserveStageDuration(string(sd.name), dur)

		if err != nil {
			rec.IncStageResult(string(sd.name), metrics.ResultFatal)
			slog.Debug("Stage failed", "stage", sd.name, "duration", dur, "error", err)
			return err
		}
		rec.IncStageResult(string(sd.name), metrics.ResultSuccess)
		slog.Debug("Stage completed", "stage", sd.name, "duration", dur)

		if st.report.SkipReason != "" {
			// Unchanged tree with an intact artifact: nothing left to do.
			slog.Info("Early build exit: source tree unchanged and artifact intact; skipping remaining stages")
			return nil
		}
	}
	return nil
}
