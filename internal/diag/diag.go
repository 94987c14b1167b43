// Package diag defines the diagnostic values produced by parsing and
// validation. Diagnostics are plain values, not errors: a run collects
// them into a Report and the caller decides whether the run failed.
package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindSyntax covers malformed source: YAML errors, unknown keys,
	// unsupported format versions.
	KindSyntax Kind = "syntax"

	// Constraint violation subtypes.
	KindDuplicateKey        Kind = "duplicate-key"
	KindMissingRequired     Kind = "missing-required"
	KindTypeMismatch        Kind = "type-mismatch"
	KindUnresolvedReference Kind = "unresolved-reference"
	KindReferenceCycle      Kind = "reference-cycle"
)

// IsConstraint reports whether the kind is a semantic constraint
// violation as opposed to a syntax error.
func (k Kind) IsConstraint() bool {
	return k != KindSyntax
}

// Diagnostic locates one problem in the source tree. File is the path
// relative to the source root; Path locates the offending node within
// the file ("sink_http.fields.endpoint" style, or a JSON pointer for
// structural failures).
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	File    string `json:"file"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.File)
	if d.Path != "" {
		b.WriteString(": ")
		b.WriteString(d.Path)
	}
	fmt.Fprintf(&b, ": %s: %s", d.Kind, d.Message)
	return b.String()
}

// Report aggregates diagnostics from one validate or build run.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Add appends a diagnostic.
func (r *Report) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

// Addf appends a diagnostic with a formatted message.
func (r *Report) Addf(kind Kind, file, path, format string, args ...any) {
	r.Add(Diagnostic{Kind: kind, File: file, Path: path, Message: fmt.Sprintf(format, args...)})
}

// OK reports whether the run produced no diagnostics.
func (r *Report) OK() bool {
	return len(r.Diagnostics) == 0
}

// Len returns the diagnostic count.
func (r *Report) Len() int {
	return len(r.Diagnostics)
}

// CountByKind returns how many diagnostics carry the given kind.
func (r *Report) CountByKind(kind Kind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Sort orders diagnostics by file, then path, then kind, then message.
// Validation output must not depend on map iteration order.
func (r *Report) Sort() {
	sort.Slice(r.Diagnostics, func(i, j int) bool {
		a, b := r.Diagnostics[i], r.Diagnostics[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Message < b.Message
	})
}

// Merge appends all diagnostics from other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}
