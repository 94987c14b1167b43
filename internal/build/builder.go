// Package build runs the schema pipeline: load, validate, merge, write,
// examples. Each invocation is a pure batch transform over an immutable
// source tree; the only outputs are the artifact, the example fixtures,
// and the manifest, all written atomically or not at all.
package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/schemabuild/internal/config"
	"git.home.luguber.info/inful/schemabuild/internal/diag"
	berrors "git.home.luguber.info/inful/schemabuild/internal/errors"
	"git.home.luguber.info/inful/schemabuild/internal/history"
	"git.home.luguber.info/inful/schemabuild/internal/loader"
	"git.home.luguber.info/inful/schemabuild/internal/manifest"
	"git.home.luguber.info/inful/schemabuild/internal/metrics"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
	"git.home.luguber.info/inful/schemabuild/internal/storage"
	"git.home.luguber.info/inful/schemabuild/internal/validate"
)

// ExampleGenerator derives fixtures from a validated document.
type ExampleGenerator interface {
	Generate(doc schema.Document, dir string) (int, error)
}

// Builder wires the pipeline's collaborators.
type Builder struct {
	cfg      *config.Config
	rec      metrics.Recorder
	cache    *storage.Cache
	hist     *history.Store
	examples ExampleGenerator
	loader   *loader.Loader
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.rec = r }
}

// WithCache enables the unchanged-tree build skip.
func WithCache(c *storage.Cache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithHistory records build outcomes.
func WithHistory(h *history.Store) Option {
	return func(b *Builder) { b.hist = h }
}

// WithExamples enables fixture generation.
func WithExamples(g ExampleGenerator) Option {
	return func(b *Builder) { b.examples = g }
}

// WithLoader replaces the default loader (watch mode shares one with a
// parse cache).
func WithLoader(l *loader.Loader) Option {
	return func(b *Builder) { b.loader = l }
}

// New creates a Builder for the given configuration.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg: cfg,
		rec: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.loader == nil {
		b.loader = loader.New(
			loader.WithInclude(cfg.Source.Include),
			loader.WithConcurrency(cfg.Build.Concurrency),
		)
	}
	return b
}

// ManifestPath derives the manifest location from the artifact path.
func ManifestPath(artifact string) string {
	ext := filepath.Ext(artifact)
	return strings.TrimSuffix(artifact, ext) + ".manifest.json"
}

// Validate loads and validates the tree rooted at dir without writing
// anything. The report contains syntax and constraint diagnostics in
// deterministic order.
func (b *Builder) Validate(ctx context.Context, dir string) (*diag.Report, error) {
	files, syntaxReport, err := b.loader.Load(ctx, dir)
	if err != nil {
		return nil, berrors.BuildFailed(string(StageLoad), err)
	}
	_, report := validate.Run(sourceFiles(files), validate.Options{FailFast: b.cfg.Build.FailFast})
	combined := &diag.Report{}
	combined.Merge(syntaxReport)
	combined.Merge(report)
	combined.Sort()
	if b.cfg.Build.FailFast && combined.Len() > 1 {
		combined.Diagnostics = combined.Diagnostics[:1]
	}
	return combined, nil
}

// Document loads, validates, and merges without writing. Used by the
// list and query commands. The returned document is only meaningful
// when the report is clean.
func (b *Builder) Document(ctx context.Context, dir string) (schema.Document, *diag.Report, error) {
	files, syntaxReport, err := b.loader.Load(ctx, dir)
	if err != nil {
		return nil, nil, berrors.BuildFailed(string(StageLoad), err)
	}
	idx, report := validate.Run(sourceFiles(files), validate.Options{FailFast: b.cfg.Build.FailFast})
	combined := &diag.Report{}
	combined.Merge(syntaxReport)
	combined.Merge(report)
	combined.Sort()
	return idx.Doc, combined, nil
}

// Build runs the full pipeline against the tree rooted at dir. The
// returned report is always populated, also on failure; the error is
// non-nil whenever the artifact was not (re)written and the tree was
// not verified unchanged.
func (b *Builder) Build(ctx context.Context, dir string) (*Report, error) {
	st := &state{dir: dir, report: newReport(manifest.NewBuildID())}

	slog.Info("Starting schema build",
		"source", dir,
		"artifact", b.cfg.Output.Artifact,
		"build_id", st.report.BuildID)

	stages := []stageDef{
		{StageLoad, b.stageLoad},
		{StageValidate, b.stageValidate},
		{StageMerge, b.stageMerge},
		{StageWrite, b.stageWrite},
		{StageExamples, b.stageExamples},
	}

	err := runStages(ctx, st, stages, b.rec)
	st.report.Finish()

	switch {
	case err != nil:
		if st.report.Outcome != OutcomeCanceled {
			st.report.Outcome = OutcomeFailed
		}
	case st.report.SkipReason != "":
		st.report.Outcome = OutcomeSkipped
	default:
		st.report.Outcome = OutcomeSuccess
	}

	b.rec.ObserveBuildDuration(st.report.Duration())
	b.rec.IncBuildOutcome(string(st.report.Outcome))
	b.rec.SetSourceFiles(st.report.Files)
	b.rec.SetDeclarations(st.report.Declarations)
	for _, kind := range []diag.Kind{
		diag.KindSyntax, diag.KindDuplicateKey, diag.KindMissingRequired,
		diag.KindTypeMismatch, diag.KindUnresolvedReference, diag.KindReferenceCycle,
	} {
		if n := st.report.Diagnostics.CountByKind(kind); n > 0 {
			b.rec.IncViolations(string(kind), n)
		}
	}

	if err == nil && st.report.Outcome == OutcomeSuccess {
		if werr := b.writeManifest(st); werr != nil {
			slog.Warn("Failed to write build manifest", "error", werr)
		}
	}
	b.recordHistory(ctx, st.report)

	slog.Info("Schema build finished",
		"build_id", st.report.BuildID,
		"outcome", st.report.Outcome,
		"duration", st.report.Duration(),
		"declarations", st.report.Declarations)

	return st.report, err
}

func (b *Builder) stageLoad(ctx context.Context, st *state) error {
	files, syntaxReport, err := b.loader.Load(ctx, st.dir)
	if err != nil {
		return berrors.BuildFailed(string(StageLoad), err)
	}
	st.files = files
	st.report.Files = len(files)
	st.report.TreeHash = TreeHash(files)
	st.report.Diagnostics.Merge(syntaxReport)
	return nil
}

func (b *Builder) stageValidate(ctx context.Context, st *state) error {
	idx, report := validate.Run(sourceFiles(st.files), validate.Options{FailFast: b.cfg.Build.FailFast})
	st.idx = idx
	st.report.Declarations = len(idx.Doc)
	st.report.Diagnostics.Merge(report)
	st.report.Diagnostics.Sort()
	if b.cfg.Build.FailFast && st.report.Diagnostics.Len() > 1 {
		st.report.Diagnostics.Diagnostics = st.report.Diagnostics.Diagnostics[:1]
	}

	if !st.report.Diagnostics.OK() {
		if st.report.Diagnostics.CountByKind(diag.KindSyntax) > 0 {
			return berrors.New(berrors.CategorySyntax, berrors.SeverityFatal, "source tree contains syntax errors").
				WithContext("count", st.report.Diagnostics.CountByKind(diag.KindSyntax))
		}
		return berrors.ConstraintFailure(st.report.Diagnostics.Len())
	}

	// Unchanged tree with intact artifact: skip the rest.
	if b.cache != nil {
		if artifactHash, ok := b.cache.Lookup(st.report.TreeHash); ok {
			if onDisk, err := os.ReadFile(b.cfg.Output.Artifact); err == nil && ContentHash(onDisk) == artifactHash {
				st.report.SkipReason = "no_changes"
			}
		}
	}
	return nil
}

func (b *Builder) stageMerge(ctx context.Context, st *state) error {
	docBytes, err := MarshalCanonical(st.idx.Doc)
	if err != nil {
		return berrors.BuildFailed(string(StageMerge), err)
	}
	st.docBytes = docBytes
	return nil
}

func (b *Builder) stageWrite(ctx context.Context, st *state) error {
	if err := WriteFileAtomic(b.cfg.Output.Artifact, st.docBytes, 0o644); err != nil {
		return berrors.ArtifactWriteError(b.cfg.Output.Artifact, err)
	}
	if b.cache != nil {
		if err := b.cache.Record(st.report.TreeHash, ContentHash(st.docBytes)); err != nil {
			slog.Warn("Failed to record artifact cache entry", "error", err)
		}
	}
	return nil
}

func (b *Builder) stageExamples(ctx context.Context, st *state) error {
	if b.examples == nil {
		return nil
	}
	count, err := b.examples.Generate(st.idx.Doc, b.cfg.Output.ExamplesDir)
	if err != nil {
		return berrors.BuildFailed(string(StageExamples), err)
	}
	st.report.Examples = count
	return nil
}

func (b *Builder) writeManifest(st *state) error {
	durations := make(map[string]string, len(st.report.StageDurations))
	for stage, d := range st.report.StageDurations {
		durations[string(stage)] = d.String()
	}
	m := &manifest.Manifest{
		BuildID:        st.report.BuildID,
		CreatedAt:      st.report.Finished,
		TreeHash:       st.report.TreeHash,
		ArtifactPath:   b.cfg.Output.Artifact,
		ArtifactSHA256: ContentHash(st.docBytes),
		Files:          st.report.Files,
		Declarations:   st.report.Declarations,
		Examples:       st.report.Examples,
		StageDurations: durations,
		Outcome:        string(st.report.Outcome),
	}
	return m.Write(ManifestPath(b.cfg.Output.Artifact))
}

func (b *Builder) recordHistory(ctx context.Context, r *Report) {
	if b.hist == nil {
		return
	}
	entry := history.Entry{
		BuildID:      r.BuildID,
		CreatedAt:    r.Finished,
		TreeHash:     r.TreeHash,
		Outcome:      string(r.Outcome),
		Duration:     r.Duration(),
		Files:        r.Files,
		Declarations: r.Declarations,
		Violations:   r.Diagnostics.Len(),
	}
	// History is best effort; a full disk must not mask the build result.
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := b.hist.Append(hctx, entry); err != nil {
		slog.Warn("Failed to record build history", "error", err)
	}
}

func sourceFiles(files []*loader.ParsedFile) []*schema.SourceFile {
	out := make([]*schema.SourceFile, 0, len(files))
	for _, f := range files {
		if f.File != nil {
			out = append(out, f.File)
		}
	}
	return out
}
