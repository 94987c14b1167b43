package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/schemabuild/internal/build"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Artifact   string `short:"o" help:"Override output.artifact from the config"`
	NoExamples bool   `help:"Skip example fixture generation"`
	FailFast   bool   `help:"Stop at the first violation instead of collecting all"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if b.Artifact != "" {
		cfg.Output.Artifact = b.Artifact
	}
	if b.NoExamples {
		disabled := false
		cfg.Build.Examples = &disabled
	}
	if b.FailFast {
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

	report, err := builder.Build(ctx, dir)
	if err != nil {
		printDiagnostics(report.Diagnostics)
		return err
	}

	if report.Outcome == build.OutcomeSkipped {
		fmt.Printf("Artifact up to date (%s)\n", cfg.Output.Artifact)
		return nil
	}
	fmt.Printf("Built %s (%d declarations from %d files", cfg.Output.Artifact, report.Declarations, report.Files)
	if report.Examples > 0 {
		fmt.Printf(", %d examples", report.Examples)
	}
	fmt.Println(")")
	return nil
}
