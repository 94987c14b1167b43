package schema

import "sort"

// Document is the merged view of every declaration in a source tree,
// keyed by declaration name. It is the in-memory form of the canonical
// JSON artifact.
type Document map[string]*Declaration

// Names returns all declaration names in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve looks up a reference target. For "decl" it returns the
// declaration and a nil field; for "decl.field" it returns both. The
// booleans report whether the declaration and, when requested, the field
// were found.
func (d Document) Resolve(ref string) (decl *Declaration, field *Field, declOK, fieldOK bool) {
	declName, fieldName := SplitRef(ref)
	decl, declOK = d[declName]
	if !declOK {
		return nil, nil, false, false
	}
	if fieldName == "" {
		return decl, nil, true, true
	}
	field, fieldOK = decl.Fields[fieldName]
	return decl, field, true, fieldOK
}
