// Package schema defines the declaration model for schema source files
// and the canonical document produced by merging them.
package schema

import (
	"sort"
	"strings"
)

// FieldType enumerates the types a field may declare.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeObject FieldType = "object"
	TypeArray  FieldType = "array"
	TypeRef    FieldType = "ref"
)

// ValidFieldTypes lists all accepted type keywords.
var ValidFieldTypes = []FieldType{
	TypeString, TypeInt, TypeFloat, TypeBool, TypeObject, TypeArray, TypeRef,
}

// IsValidFieldType reports whether t is one of the accepted type keywords.
func IsValidFieldType(t FieldType) bool {
	for _, v := range ValidFieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SourceFile is the decoded form of one *.schema.yaml file.
type SourceFile struct {
	// Schema is the source format version. Only "v1" is accepted; empty
	// defaults to v1.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`

	Declarations map[string]*Declaration `yaml:"declarations,omitempty" json:"declarations,omitempty"`

	// Path is the file path relative to the source root. Populated by the
	// loader, never authored.
	Path string `yaml:"-" json:"-"`
}

// DeclarationNames returns the file's declaration names in sorted order.
func (f *SourceFile) DeclarationNames() []string {
	names := make([]string, 0, len(f.Declarations))
	for name := range f.Declarations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declaration is a named schema declaration: a scoped set of fields with
// optional documentation metadata.
type Declaration struct {
	Title       string            `yaml:"title,omitempty" json:"title,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Example     bool              `yaml:"example,omitempty" json:"example,omitempty"`
	Fields      map[string]*Field `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// FieldNames returns the declaration's top-level field names in sorted order.
func (d *Declaration) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for name := range d.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field describes one field within a declaration scope.
type Field struct {
	Type        FieldType `yaml:"type" json:"type"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool      `yaml:"required,omitempty" json:"required,omitempty"`

	// Enum restricts scalar fields to an explicit value set.
	Enum []any `yaml:"enum,omitempty" json:"enum,omitempty"`

	// Default must conform to the declared type (and Enum when set).
	Default any `yaml:"default,omitempty" json:"default,omitempty"`

	// Min and Max bound int and float fields (inclusive).
	Min *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty" json:"max,omitempty"`

	// Pattern is an RE2 regexp constraining string fields.
	Pattern string `yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// Items describes array element fields.
	Items *Field `yaml:"items,omitempty" json:"items,omitempty"`

	// Fields is the nested scope for object fields.
	Fields map[string]*Field `yaml:"fields,omitempty" json:"fields,omitempty"`

	// Ref names another declaration ("decl") or one of its fields
	// ("decl.field") for ref fields.
	Ref string `yaml:"ref,omitempty" json:"ref,omitempty"`
}

// SplitRef splits a reference into its declaration and optional field part.
// "tls_options" yields ("tls_options", ""); "source_common.outputs" yields
// ("source_common", "outputs").
func SplitRef(ref string) (decl, field string) {
	if i := strings.IndexByte(ref, '.'); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}
