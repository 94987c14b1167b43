package build

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Canonical JSON: lexicographic (bytewise) key order at every object
// level, two-space indent, trailing newline. The artifact is diffed and
// cached by content in CI, so byte-identical output for identical input
// is a contract here, not a property inherited from a container type.

// EncodeCanonical renders v as canonical JSON. v must be a JSON-shaped
// value tree: maps with string keys, slices, json.Number, strings,
// bools, numbers, nil. Arbitrary structs are first flattened through
// encoding/json (see Canonicalize).
func EncodeCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Canonicalize flattens any JSON-marshalable value into the plain value
// tree EncodeCanonical consumes. Numbers survive as json.Number so
// re-encoding cannot change their text.
func Canonicalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal for canonicalization: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode for canonicalization: %w", err)
	}
	return out, nil
}

// MarshalCanonical is Canonicalize followed by EncodeCanonical.
func MarshalCanonical(v any) ([]byte, error) {
	tree, err := Canonicalize(v)
	if err != nil {
		return nil, err
	}
	return EncodeCanonical(tree)
}

func encodeValue(buf *bytes.Buffer, v any, depth int) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case json.Number:
		buf.WriteString(val.String())
	case map[string]any:
		return encodeObject(buf, val, depth)
	case []any:
		return encodeArray(buf, val, depth)
	case string, bool, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		raw, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(raw)
	default:
		// Not a plain JSON value tree; flatten and retry once.
		tree, err := Canonicalize(val)
		if err != nil {
			return err
		}
		if _, again := tree.(map[string]any); !again {
			if _, arr := tree.([]any); !arr {
				raw, err := json.Marshal(tree)
				if err != nil {
					return err
				}
				buf.Write(raw)
				return nil
			}
		}
		return encodeValue(buf, tree, depth)
	}
	return nil
}

func encodeObject(buf *bytes.Buffer, m map[string]any, depth int) error {
	if len(m) == 0 {
		buf.WriteString("{}")
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("{\n")
	for i, k := range keys {
		writeIndent(buf, depth+1)
		rawKey, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(rawKey)
		buf.WriteString(": ")
		if err := encodeValue(buf, m[k], depth+1); err != nil {
			return err
		}
		if i < len(keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, depth)
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *bytes.Buffer, items []any, depth int) error {
	if len(items) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteString("[\n")
	for i, item := range items {
		writeIndent(buf, depth+1)
		if err := encodeValue(buf, item, depth+1); err != nil {
			return err
		}
		if i < len(items)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	writeIndent(buf, depth)
	buf.WriteByte(']')
	return nil
}

func writeIndent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}
