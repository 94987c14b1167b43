package commands

import (
	"context"
	"fmt"

	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
)

// ValidateCmd implements the 'validate' command: the pure check, no
// artifact is written.
type ValidateCmd struct {
	FailFast bool `help:"Stop at the first violation instead of collecting all"`
}

func (v *ValidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v.FailFast {
		cfg.Build.FailFast = true
	}

	ctx := context.Background()
	dir, cleanup, err := resolveSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	builder, hist, err := newBuilder(cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer closeHistory(hist)

	report, err := builder.Validate(ctx, dir)
	if err != nil {
		return err
	}
	if !report.OK() {
		printDiagnostics(report)
		return berrors.ConstraintFailure(report.Len())
	}

	fmt.Println("Source tree is valid")
	return nil
}
