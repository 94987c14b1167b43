package validate

import (
	"fmt"
	"regexp"

	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

// LintWarning is a style finding from `schemabuild vet`. Warnings never
// fail a build; vet surfaces them alongside real violations.
type LintWarning struct {
	File    string `json:"file"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (w LintWarning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.File, w.Path, w.Message)
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Lint applies style checks over an index: documentation completeness,
// naming convention, and suspicious constraint combinations.
func Lint(idx *Index) []LintWarning {
	var warnings []LintWarning
	warnf := func(file, path, format string, args ...any) {
		warnings = append(warnings, LintWarning{File: file, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	for _, name := range idx.Doc.Names() {
		d := idx.Doc[name]
		file := idx.Origin[name]

		if !snakeCase.MatchString(name) {
			warnf(file, name, "declaration name is not snake_case")
		}
		if d.Title == "" {
			warnf(file, name, "declaration has no title")
		}
		if d.Description == "" {
			warnf(file, name, "declaration has no description")
		}

		walkDecl(name, d, func(v fieldVisit) {
			f := v.field
			if f.Required && f.Default != nil {
				warnf(file, v.path, "required field carries a default; the default can never apply")
			}
			if len(f.Enum) == 1 {
				warnf(file, v.path, "single-member enum; consider a constant default instead")
			}
			if f.Type == schema.TypeArray && f.Items == nil {
				warnf(file, v.path, "array field without items accepts anything")
			}
		})
	}

	return warnings
}
