package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/schemabuild/internal/history"
)

// BuildsCmd implements the 'builds' command: recent build history from
// the SQLite store.
type BuildsCmd struct {
	Limit int `short:"n" help:"Maximum builds to show" default:"20"`
}

func (b *BuildsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := history.Open(cfg.History.Path, cfg.History.Keep)
	if err != nil {
		return fmt.Errorf("open build history: %w", err)
	}
	defer closeHistory(store)

	entries, err := store.Recent(context.Background(), b.Limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded builds")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tOUTCOME\tDECLS\tFILES\tVIOLATIONS\tDURATION\tBUILD")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"),
			e.Outcome, e.Declarations, e.Files, e.Violations, e.Duration, e.BuildID)
	}
	return w.Flush()
}
