package validate

import (
	"log/slog"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// Options tunes a validation run.
type Options struct {
	// FailFast reports only the first violation (in deterministic
	// order). All checks still run; this trims reporting, not work.
	FailFast bool
}

// Run indexes the given files and evaluates every semantic rule.
// Files must be in deterministic (sorted-path) order. The returned
// index is usable even when the report has violations; callers that
// build artifacts must check the report first.
func Run(files []*schema.SourceFile, opts Options) (*Index, *diag.Report) {
	idx, report := BuildIndex(files)

	for _, rule := range DefaultRules() {
		before := report.Len()
		rule.Check(idx, report)
		if added := report.Len() - before; added > 0 {
			slog.Debug("Validation rule found violations", "rule", rule.Name(), "count", added)
		}
	}

	report.Sort()
	if opts.FailFast && report.Len() > 1 {
		report.Diagnostics = report.Diagnostics[:1]
	}
	return idx, report
}
