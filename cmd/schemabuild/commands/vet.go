package commands

import (
	"context"
	"fmt"
	"os"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
	"git.home.luguber.info/inful/schemabuild/internal/validate"
)

// VetCmd implements the 'vet' command: full validation plus style
// lints. Lint warnings alone do not fail the run unless --strict.
type VetCmd struct {
	Strict bool `help:"Treat lint warnings as failures"`
}

func (v *VetCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	dir, cleanup, err := resolveSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	l := loader.New(
		loader.WithInclude(cfg.Source.Include),
		loader.WithConcurrency(cfg.Build.Concurrency),
	)
	files, syntaxReport, err := l.Load(ctx, dir)
	if err != nil {
		return err
	}

	parsed := make([]*schema.SourceFile, 0, len(files))
	for _, pf := range files {
		if pf.File != nil {
			parsed = append(parsed, pf.File)
		}
	}
	idx, report := validate.Run(parsed, validate.Options{FailFast: cfg.Build.FailFast})

	combined := &diag.Report{}
	combined.Merge(syntaxReport)
	combined.Merge(report)
	combined.Sort()

	warnings := validate.Lint(idx)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
	}

	if !combined.OK() {
		printDiagnostics(combined)
		return berrors.ConstraintFailure(combined.Len())
	}
	if v.Strict && len(warnings) > 0 {
		return fmt.Errorf("%d lint warnings (strict mode)", len(warnings))
	}

	fmt.Printf("Vet passed: %d declarations, %d warnings\n", len(idx.Doc), len(warnings))
	return nil
}
