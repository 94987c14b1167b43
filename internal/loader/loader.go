// Package loader walks a schema source tree and parses every source
// file, in parallel, into the declaration model. Parse problems become
// diagnostics, not errors: only I/O failures abort a load.
package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// ParsedFile is one successfully read source file. File is nil when the
// file failed to parse (the failure is in the load report instead).
type ParsedFile struct {
	// Path is relative to the source root, slash-separated.
	Path string

	// Raw is the file content as read.
	Raw []byte

	// Hash is the hex SHA-256 of Raw.
	Hash string

	// File is the decoded declaration model, nil on parse failure.
	File *schema.SourceFile
}

// Loader walks and parses source trees.
type Loader struct {
	include     []string
	concurrency int
	cache       *Cache
}

// Option configures a Loader.
type Option func(*Loader)

// WithInclude sets the base-name glob patterns selecting source files.
func WithInclude(patterns []string) Option {
	return func(l *Loader) { l.include = patterns }
}

// WithConcurrency bounds parallel parsing. Zero means GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(l *Loader) { l.concurrency = n }
}

// WithCache reuses decoded files across loads (watch mode).
func WithCache(c *Cache) Option {
	return func(l *Loader) { l.cache = c }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		include: []string{"*.schema.yaml", "*.schema.yml"},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every matching file under dir. Returned files are sorted by
// path so downstream work is deterministic. The report carries syntax
// diagnostics for files that failed to parse; those files still appear
// in the result (with a nil File) so tree hashing sees them.
func (l *Loader) Load(ctx context.Context, dir string) ([]*ParsedFile, *diag.Report, error) {
	paths, err := l.discover(dir)
	if err != nil {
		return nil, nil, err
	}

	report := &diag.Report{}
	files := make([]*ParsedFile, len(paths))

	limit := l.concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, fileDiags, err := l.parseOne(dir, rel)
			if err != nil {
				return err
			}
			files[i] = pf
			if len(fileDiags) > 0 {
				mu.Lock()
				for _, d := range fileDiags {
					report.Add(d)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report.Sort()
	slog.Debug("Source tree loaded", "dir", dir, "files", len(files), "syntax_errors", report.Len())
	return files, report, nil
}

// discover returns matching paths relative to dir, sorted.
func (l *Loader) discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("source directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (including .schemabuild) are not source.
			if name := d.Name(); name != "." && len(name) > 1 && name[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if !l.matches(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source tree: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) matches(name string) bool {
	for _, pattern := range l.include {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (l *Loader) parseOne(dir, rel string) (*ParsedFile, []diag.Diagnostic, error) {
	raw, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", rel, err)
	}

	sum := sha256.Sum256(raw)
	pf := &ParsedFile{Path: rel, Raw: raw, Hash: hex.EncodeToString(sum[:])}

	if l.cache != nil {
		if cached, ok := l.cache.Get(pf.Hash); ok {
			// Shallow copy so the cached entry's Path can't leak between
			// trees that contain the same content at different paths.
			cp := *cached
			cp.Path = rel
			pf.File = &cp
			return pf, nil, nil
		}
	}

	// Structural conformance first: a file that doesn't match the
	// grammar gets located JSON-pointer diagnostics instead of whatever
	// the strict decoder would trip over first.
	metaViolations, err := schema.CheckMeta(raw)
	if err != nil {
		return pf, []diag.Diagnostic{{
			Kind: diag.KindSyntax, File: rel, Message: err.Error(),
		}}, nil
	}
	if len(metaViolations) > 0 {
		diags := make([]diag.Diagnostic, 0, len(metaViolations))
		for _, v := range metaViolations {
			diags = append(diags, diag.Diagnostic{
				Kind: diag.KindSyntax, File: rel, Path: v.Pointer, Message: v.Message,
			})
		}
		return pf, diags, nil
	}

	decoded, err := schema.Decode(raw)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// An empty source file declares nothing, which is fine.
			decoded = &schema.SourceFile{}
		} else {
			return pf, []diag.Diagnostic{{
				Kind: diag.KindSyntax, File: rel, Message: err.Error(),
			}}, nil
		}
	}
	decoded.Path = rel
	pf.File = decoded

	if l.cache != nil {
		l.cache.Add(pf.Hash, decoded)
	}
	return pf, nil, nil
}
