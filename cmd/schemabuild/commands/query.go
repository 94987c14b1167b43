package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/itchyny/gojq"

	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
)

// QueryCmd implements the 'query' command: evaluate a jq expression
// against the merged document without writing the artifact.
type QueryCmd struct {
	Expr string `arg:"" help:"jq expression, e.g. '.sink_http.fields | keys'"`
}

func (q *QueryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	query, err := gojq.Parse(q.Expr)
	if err != nil {
		return fmt.Errorf("parse query: %w", err)
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

	doc, report, err := builder.Document(ctx, dir)
	if err != nil {
		return err
	}
	if !report.OK() {
		printDiagnostics(report)
		return berrors.ConstraintFailure(report.Len())
	}

	// gojq wants plain JSON value trees.
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	iter := query.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if qerr, isErr := v.(error); isErr {
			return fmt.Errorf("query: %w", qerr)
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
