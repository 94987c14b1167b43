package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
	"git.home.luguber.info/inful/schemabuild/internal/validate"
)

// ListCmd implements the 'list' command.
type ListCmd struct {
	Format string `help:"Output format (table or json)" default:"table" enum:"table,json"`
}

type listEntry struct {
	Name    string `json:"name"`
	Title   string `json:"title,omitempty"`
	File    string `json:"file"`
	Fields  int    `json:"fields"`
	Example bool   `json:"example"`
}

func (l *ListCmd) Run(_ *Global, root *CLI) error {
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

	ld := loader.New(
		loader.WithInclude(cfg.Source.Include),
		loader.WithConcurrency(cfg.Build.Concurrency),
	)
	files, syntaxReport, err := ld.Load(ctx, dir)
	if err != nil {
		return err
	}
	if !syntaxReport.OK() {
		printDiagnostics(syntaxReport)
		return berrors.New(berrors.CategorySyntax, berrors.SeverityFatal, "source tree contains syntax errors")
	}

	parsed := make([]*schema.SourceFile, 0, len(files))
	for _, pf := range files {
		if pf.File != nil {
			parsed = append(parsed, pf.File)
		}
	}
	idx, _ := validate.BuildIndex(parsed)

	entries := make([]listEntry, 0, len(idx.Doc))
	for _, name := range idx.Doc.Names() {
		d := idx.Doc[name]
		entries = append(entries, listEntry{
			Name:    name,
			Title:   d.Title,
			File:    idx.Origin[name],
			Fields:  len(d.Fields),
			Example: d.Example,
		})
	}

	switch l.Format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tFIELDS\tEXAMPLE\tFILE\tTITLE")
		for _, e := range entries {
			example := ""
			if e.Example {
				example = "yes"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", e.Name, e.Fields, example, e.File, e.Title)
		}
		return w.Flush()
	}
}
