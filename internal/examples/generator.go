// Package examples derives illustrative fixtures from the validated
// document: a synthesized sample value, a Markdown doc page, and an
// HTML fragment per example-worthy declaration. The fixtures are owned
// by the build and regenerated wholesale on every run.
package examples

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/schemabuild/internal/build"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// Generator writes example fixtures for a validated document.
type Generator struct {
	md goldmark.Markdown
}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{md: goldmark.New()}
}

// Generate clears dir and writes fixtures for every declaration flagged
// example-worthy. It returns the number of declarations rendered.
// Inputs must already be validated; unresolved references here are
// internal errors, not diagnostics.
func (g *Generator) Generate(doc schema.Document, dir string) (int, error) {
	if err := os.RemoveAll(dir); err != nil {
		return 0, fmt.Errorf("clear examples directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create examples directory: %w", err)
	}

	count := 0
	for _, name := range doc.Names() {
		d := doc[name]
		if !d.Example {
			continue
		}
		if err := g.generateOne(doc, name, d, dir); err != nil {
			return count, fmt.Errorf("generate example %s: %w", name, err)
		}
		count++
	}

	slog.Debug("Example fixtures generated", "dir", dir, "count", count)
	return count, nil
}

func (g *Generator) generateOne(doc schema.Document, name string, d *schema.Declaration, dir string) error {
	sample, err := sampleDeclaration(doc, d, map[string]bool{name: true})
	if err != nil {
		return err
	}
	sampleJSON, err := build.MarshalCanonical(sample)
	if err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, name+".json"), sampleJSON, 0o644); err != nil {
		return fmt.Errorf("write sample: %w", err)
	}

	page := renderMarkdown(name, d, sampleJSON)
	if err := os.WriteFile(filepath.Join(dir, name+".md"), page, 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	var html bytes.Buffer
	if err := g.md.Convert(page, &html); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".html"), html.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func renderMarkdown(name string, d *schema.Declaration, sampleJSON []byte) []byte {
	var buf bytes.Buffer
	title := d.Title
	if title == "" {
		title = name
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	if d.Description != "" {
		buf.WriteString(d.Description)
		if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("## Example\n\n```json\n")
	buf.Write(sampleJSON)
	buf.WriteString("```\n")
	return buf.Bytes()
}

// sampleDeclaration synthesizes a sample value for a whole declaration.
func sampleDeclaration(doc schema.Document, d *schema.Declaration, visited map[string]bool) (map[string]any, error) {
	out := make(map[string]any, len(d.Fields))
	for _, fieldName := range d.FieldNames() {
		v, err := sampleField(doc, d.Fields[fieldName], visited)
		if err != nil {
			return nil, err
		}
		out[fieldName] = v
	}
	return out, nil
}

// sampleField synthesizes one field value: defaults win, then the first
// enum member, then a per-type placeholder. References are inlined.
func sampleField(doc schema.Document, f *schema.Field, visited map[string]bool) (any, error) {
	if f == nil {
		return nil, nil
	}
	if f.Default != nil {
		return f.Default, nil
	}
	if len(f.Enum) > 0 {
		return f.Enum[0], nil
	}

	switch f.Type {
	case schema.TypeString:
		return "example", nil
	case schema.TypeInt:
		if f.Min != nil {
			return int64(*f.Min), nil
		}
		return int64(1), nil
	case schema.TypeFloat:
		if f.Min != nil {
			return *f.Min, nil
		}
		return 1.5, nil
	case schema.TypeBool:
		return true, nil
	case schema.TypeObject:
		out := make(map[string]any, len(f.Fields))
		names := make([]string, 0, len(f.Fields))
		for n := range f.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			v, err := sampleField(doc, f.Fields[n], visited)
			if err != nil {
				return nil, err
			}
			out[n] = v
		}
		return out, nil
	case schema.TypeArray:
		if f.Items == nil {
			return []any{}, nil
		}
		item, err := sampleField(doc, f.Items, visited)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	case schema.TypeRef:
		return sampleRef(doc, f.Ref, visited)
	}
	return nil, fmt.Errorf("unknown field type %q", f.Type)
}

func sampleRef(doc schema.Document, ref string, visited map[string]bool) (any, error) {
	declName, fieldName := schema.SplitRef(ref)
	if visited[declName] {
		// Cycles are rejected at validation time; never recurse anyway.
		return nil, nil
	}
	decl, field, declOK, fieldOK := doc.Resolve(ref)
	if !declOK || !fieldOK {
		return nil, fmt.Errorf("unresolved reference %q", ref)
	}
	visited[declName] = true
	defer delete(visited, declName)

	if fieldName == "" {
		return sampleDeclaration(doc, decl, visited)
	}
	return sampleField(doc, field, visited)
}
