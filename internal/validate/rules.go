package validate

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// Rule is one semantic check over the complete declaration index.
type Rule interface {
	Name() string
	Check(idx *Index, rep *diag.Report)
}

// DefaultRules returns the full semantic rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		TypeKeywordRule{},
		ReferenceRule{},
		DefaultValueRule{},
		EnumRule{},
		BoundsRule{},
		PatternRule{},
		CycleRule{},
	}
}

// forEachField walks every declaration's fields in deterministic order.
func forEachField(idx *Index, visit func(file, declName string, v fieldVisit)) {
	for _, name := range idx.Doc.Names() {
		file := idx.Origin[name]
		walkDecl(name, idx.Doc[name], func(v fieldVisit) {
			visit(file, name, v)
		})
	}
}

// TypeKeywordRule checks the type keyword and keyword/type consistency:
// items implies array, nested fields imply object, ref pairs with type
// ref.
type TypeKeywordRule struct{}

func (TypeKeywordRule) Name() string { return "type_keyword" }

func (TypeKeywordRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if f.Type == "" {
			rep.Addf(diag.KindMissingRequired, file, v.path, "field is missing required key %q", "type")
			return
		}
		if !schema.IsValidFieldType(f.Type) {
			rep.Addf(diag.KindTypeMismatch, file, v.path, "unknown type %q", f.Type)
			return
		}
		if f.Items != nil && f.Type != schema.TypeArray {
			rep.Addf(diag.KindTypeMismatch, file, v.path, "items is only valid for array fields, not %s", f.Type)
		}
		if len(f.Fields) > 0 && f.Type != schema.TypeObject {
			rep.Addf(diag.KindTypeMismatch, file, v.path, "nested fields are only valid for object fields, not %s", f.Type)
		}
		if f.Ref != "" && f.Type != schema.TypeRef {
			rep.Addf(diag.KindTypeMismatch, file, v.path, "ref is only valid for ref fields, not %s", f.Type)
		}
		if f.Ref == "" && f.Type == schema.TypeRef {
			rep.Addf(diag.KindMissingRequired, file, v.path, "ref fields must name a target declaration")
		}
	})
}

// ReferenceRule resolves every reference against the index. A reference
// to an unknown declaration is unresolved; a reference to a missing
// field of a known declaration is a missing required field on the
// target, reported by its qualified name.
type ReferenceRule struct{}

func (ReferenceRule) Name() string { return "reference_resolution" }

func (ReferenceRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if f.Type != schema.TypeRef || f.Ref == "" {
			return
		}
		declName, fieldName := schema.SplitRef(f.Ref)
		target, ok := idx.Doc[declName]
		if !ok {
			rep.Addf(diag.KindUnresolvedReference, file, v.path,
				"reference %q does not resolve: no declaration named %q", f.Ref, declName)
			return
		}
		if fieldName == "" {
			return
		}
		if _, ok := target.Fields[fieldName]; !ok {
			rep.Addf(diag.KindMissingRequired, file, v.path,
				"reference %q does not resolve: declaration %q has no field %q (missing %s.%s)",
				f.Ref, declName, fieldName, declName, fieldName)
		}
	})
}

// DefaultValueRule checks default values against the declared type and,
// when present, the enum.
type DefaultValueRule struct{}

func (DefaultValueRule) Name() string { return "default_value" }

func (DefaultValueRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if f.Default == nil {
			return
		}
		switch f.Type {
		case schema.TypeObject, schema.TypeArray, schema.TypeRef:
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"default values are not supported for %s fields", f.Type)
			return
		}
		if !conforms(f.Default, f.Type) {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"default %v does not conform to type %s", f.Default, f.Type)
			return
		}
		if len(f.Enum) > 0 && !enumContains(f.Enum, f.Default) {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"default %v is not a member of the enum", f.Default)
		}
	})
}

// EnumRule checks that enums only appear on scalars, that every member
// conforms to the declared type, and that members are unique.
type EnumRule struct{}

func (EnumRule) Name() string { return "enum" }

func (EnumRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if len(f.Enum) == 0 {
			return
		}
		switch f.Type {
		case schema.TypeString, schema.TypeInt, schema.TypeFloat, schema.TypeBool:
		default:
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"enums are only valid for scalar fields, not %s", f.Type)
			return
		}
		seen := make([]any, 0, len(f.Enum))
		for i, member := range f.Enum {
			if !conforms(member, f.Type) {
				rep.Addf(diag.KindTypeMismatch, file, v.path,
					"enum member %d (%v) does not conform to type %s", i, member, f.Type)
				continue
			}
			for _, prev := range seen {
				if equalValue(prev, member) {
					rep.Addf(diag.KindDuplicateKey, file, v.path,
						"enum member %v appears more than once", member)
					break
				}
			}
			seen = append(seen, member)
		}
	})
}

// BoundsRule checks min/max placement and ordering.
type BoundsRule struct{}

func (BoundsRule) Name() string { return "bounds" }

func (BoundsRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if f.Min == nil && f.Max == nil {
			return
		}
		if f.Type != schema.TypeInt && f.Type != schema.TypeFloat {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"min/max bounds are only valid for numeric fields, not %s", f.Type)
			return
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"min %v exceeds max %v", *f.Min, *f.Max)
		}
	})
}

// PatternRule checks pattern placement and that patterns compile as RE2.
type PatternRule struct{}

func (PatternRule) Name() string { return "pattern" }

func (PatternRule) Check(idx *Index, rep *diag.Report) {
	forEachField(idx, func(file, _ string, v fieldVisit) {
		f := v.field
		if f.Pattern == "" {
			return
		}
		if f.Type != schema.TypeString {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"patterns are only valid for string fields, not %s", f.Type)
			return
		}
		if _, err := regexp.Compile(f.Pattern); err != nil {
			rep.Addf(diag.KindTypeMismatch, file, v.path,
				"pattern does not compile: %v", err)
		}
	})
}

// CycleRule rejects reference cycles between declarations. The canonical
// artifact keeps references symbolic, but example generation inlines
// them, so cycles must be caught at validation time.
type CycleRule struct{}

func (CycleRule) Name() string { return "reference_cycle" }

func (CycleRule) Check(idx *Index, rep *diag.Report) {
	// Edges: declaration -> referenced declarations, deduplicated and sorted.
	edges := make(map[string][]string, len(idx.Doc))
	for _, name := range idx.Doc.Names() {
		targets := map[string]bool{}
		walkDecl(name, idx.Doc[name], func(v fieldVisit) {
			if v.field.Type != schema.TypeRef || v.field.Ref == "" {
				return
			}
			declName, _ := schema.SplitRef(v.field.Ref)
			if _, ok := idx.Doc[declName]; ok {
				targets[declName] = true
			}
		})
		sorted := make([]string, 0, len(targets))
		for t := range targets {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
		edges[name] = sorted
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(edges))
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = inStack
		stack = append(stack, name)
		for _, next := range edges[name] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				// Found a cycle; report the segment of the stack from the
				// first occurrence of next.
				start := 0
				for i, n := range stack {
					if n == next {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), next)
				rep.Addf(diag.KindReferenceCycle, idx.Origin[next], next,
					"reference cycle: %s", strings.Join(cycle, " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, name := range idx.Doc.Names() {
		if state[name] == unvisited {
			visit(name)
		}
	}
}

// conforms reports whether a YAML-decoded value matches a scalar type.
func conforms(v any, t schema.FieldType) bool {
	switch t {
	case schema.TypeString:
		_, ok := v.(string)
		return ok
	case schema.TypeBool:
		_, ok := v.(bool)
		return ok
	case schema.TypeInt:
		switch v.(type) {
		case int, int64, uint64:
			return true
		}
		return false
	case schema.TypeFloat:
		switch v.(type) {
		case float64, float32, int, int64, uint64:
			return true
		}
		return false
	}
	return false
}

// equalValue compares scalar values with int/float widening so that
// YAML's 1 and int64(1) compare equal.
func equalValue(a, b any) bool {
	if na, aok := asFloat(a); aok {
		if nb, bok := asFloat(b); bok {
			return na == nb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// enumContains reports whether the enum holds the value.
func enumContains(enum []any, v any) bool {
	for _, member := range enum {
		if equalValue(member, v) {
			return true
		}
	}
	return false
}
