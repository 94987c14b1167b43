package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// FmtCmd implements the 'fmt' command: canonical rewriting of source
// files. Files that fail to parse are left untouched and reported.
type FmtCmd struct {
	Check bool `help:"Report files needing formatting without rewriting them"`
}

func (f *FmtCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Source.Git != nil {
		return fmt.Errorf("fmt operates on local sources only; source.git is configured")
	}

	l := loader.New(
		loader.WithInclude(cfg.Source.Include),
		loader.WithConcurrency(cfg.Build.Concurrency),
	)
	files, report, err := l.Load(context.Background(), cfg.Source.Dir)
	if err != nil {
		return err
	}
	if !report.OK() {
		printDiagnostics(report)
		return fmt.Errorf("cannot format: %d files failed to parse", report.Len())
	}

	changed := 0
	for _, pf := range files {
		formatted, err := schema.Format(pf.File)
		if err != nil {
			return fmt.Errorf("format %s: %w", pf.Path, err)
		}
		if bytes.Equal(formatted, pf.Raw) {
			continue
		}
		changed++
		if f.Check {
			fmt.Println(pf.Path)
			continue
		}
		abs := filepath.Join(cfg.Source.Dir, filepath.FromSlash(pf.Path))
		if err := os.WriteFile(abs, formatted, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", pf.Path, err)
		}
		fmt.Printf("formatted %s\n", pf.Path)
	}

	if f.Check && changed > 0 {
		return fmt.Errorf("%d files need formatting", changed)
	}
	if changed == 0 {
		fmt.Println("All files already canonical")
	}
	return nil
}
