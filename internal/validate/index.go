// Package validate checks a parsed source tree against the schema
// language's semantic constraints: reference resolution, type
// conformance of defaults and enums, bounds, patterns, and declaration
// uniqueness. All checks collect diagnostics; nothing here writes.
package validate

import (
	"sort"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// Index is the complete view of all declarations, needed before any
// cross-reference work can happen.
type Index struct {
	// Doc maps declaration name to its (first-seen) declaration.
	Doc schema.Document

	// Origin maps declaration name to the file that declared it.
	Origin map[string]string
}

// BuildIndex merges declarations from all files, reporting duplicates.
// Files must already be in deterministic (sorted-path) order; the first
// declaration of a name wins, later ones are diagnosed.
func BuildIndex(files []*schema.SourceFile) (*Index, *diag.Report) {
	idx := &Index{
		Doc:    schema.Document{},
		Origin: map[string]string{},
	}
	report := &diag.Report{}

	for _, f := range files {
		if f == nil {
			continue
		}
		for _, name := range f.DeclarationNames() {
			if firstFile, exists := idx.Origin[name]; exists {
				report.Addf(diag.KindDuplicateKey, f.Path, name,
					"declaration %q already defined in %s", name, firstFile)
				continue
			}
			idx.Doc[name] = f.Declarations[name]
			idx.Origin[name] = f.Path
		}
	}

	return idx, report
}

// fieldVisit is one step of a declaration-scope walk.
type fieldVisit struct {
	// path is the dotted location, e.g. "sink_http.fields.batch.fields.max_events".
	path  string
	field *schema.Field
}

// walkDecl visits every field of a declaration depth-first in sorted
// key order, including nested object scopes and array item specs.
func walkDecl(name string, d *schema.Declaration, visit func(fieldVisit)) {
	walkFields(name+".fields", d.Fields, visit)
}

func walkFields(prefix string, fields map[string]*schema.Field, visit func(fieldVisit)) {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		f := fields[n]
		if f == nil {
			continue
		}
		path := prefix + "." + n
		visit(fieldVisit{path: path, field: f})
		if f.Items != nil {
			visit(fieldVisit{path: path + ".items", field: f.Items})
			if f.Items.Fields != nil {
				walkFields(path+".items.fields", f.Items.Fields, visit)
			}
		}
		if f.Fields != nil {
			walkFields(path+".fields", f.Fields, visit)
		}
	}
}
