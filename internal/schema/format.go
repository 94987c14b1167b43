package schema

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Format renders a source file in canonical form: two-space indent,
// sorted declaration and field keys, no document markers. Formatting a
// formatted file is a no-op, which is what `schemabuild fmt --check`
// relies on.
func Format(f *SourceFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encode source file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses raw YAML into a SourceFile with strict field checking:
// unknown keys and duplicate mapping keys are syntax errors.
func Decode(raw []byte) (*SourceFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var f SourceFile
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}
	if f.Schema != "" && f.Schema != "v1" {
		return nil, fmt.Errorf("unsupported schema version %q", f.Schema)
	}
	return &f, nil
}
