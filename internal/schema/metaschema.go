package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	invopop "github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	sigyaml "sigs.k8s.io/yaml"
)

// The meta-schema is a JSON Schema describing the source file grammar.
// It is reflected from the Go declaration types so the two can never
// drift, then compiled once per process.

var (
	metaOnce sync.Once
	metaSch  *santhosh.Schema
	metaErr  error

	printer = message.NewPrinter(language.English)
)

// MetaViolation is one structural-conformance failure of a raw source
// file against the meta-schema, located by JSON pointer.
type MetaViolation struct {
	Pointer string
	Message string
}

func compileMetaSchema() (*santhosh.Schema, error) {
	reflector := &invopop.Reflector{}
	generated := reflector.Reflect(&SourceFile{})

	raw, err := json.Marshal(generated)
	if err != nil {
		return nil, fmt.Errorf("marshal meta-schema: %w", err)
	}

	doc, err := santhosh.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode meta-schema: %w", err)
	}

	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("meta.json", doc); err != nil {
		return nil, fmt.Errorf("add meta-schema resource: %w", err)
	}
	compiled, err := compiler.Compile("meta.json")
	if err != nil {
		return nil, fmt.Errorf("compile meta-schema: %w", err)
	}
	return compiled, nil
}

// MetaSchema returns the compiled meta-schema, building it on first use.
func MetaSchema() (*santhosh.Schema, error) {
	metaOnce.Do(func() {
		metaSch, metaErr = compileMetaSchema()
	})
	return metaSch, metaErr
}

// CheckMeta validates raw YAML source-file bytes against the meta-schema.
// It returns one violation per leaf failure; a nil slice means the file
// conforms structurally. The error return covers meta-schema compilation
// and YAML-to-JSON conversion problems, not conformance failures.
func CheckMeta(raw []byte) ([]MetaViolation, error) {
	compiled, err := MetaSchema()
	if err != nil {
		return nil, err
	}

	jsonBytes, err := sigyaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("convert source to JSON: %w", err)
	}
	if string(jsonBytes) == "null" {
		// Empty document; declares nothing.
		return nil, nil
	}

	inst, err := santhosh.UnmarshalJSON(strings.NewReader(string(jsonBytes)))
	if err != nil {
		return nil, fmt.Errorf("decode source instance: %w", err)
	}

	verr := compiled.Validate(inst)
	if verr == nil {
		return nil, nil
	}
	ve, ok := verr.(*santhosh.ValidationError)
	if !ok {
		return nil, fmt.Errorf("meta-schema validation: %w", verr)
	}

	var out []MetaViolation
	collectLeaves(ve, &out)
	return out, nil
}

func collectLeaves(ve *santhosh.ValidationError, out *[]MetaViolation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, MetaViolation{
			Pointer: instancePointer(ve.InstanceLocation),
			Message: ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}

func instancePointer(tokens []string) string {
	if len(tokens) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		tok = strings.ReplaceAll(tok, "/", "~1")
		b.WriteString(tok)
	}
	return b.String()
}
