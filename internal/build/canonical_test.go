package build

import (
	"bytes"
	"encoding/json"
	"testing"

	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

func TestEncodeCanonicalSortsKeysAtEveryLevel(t *testing.T) {
	v := map[string]any{
		"zebra": 1,
		"apple": map[string]any{
			"z": true,
			"a": "x",
		},
	}
	out, err := EncodeCanonical(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\n  \"apple\": {\n    \"a\": \"x\",\n    \"z\": true\n  },\n  \"zebra\": 1\n}\n"
	if string(out) != want {
		t.Fatalf("canonical output mismatch:\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestEncodeCanonicalEmptyDocument(t *testing.T) {
	out, err := MarshalCanonical(schema.Document{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "{}\n" {
		t.Fatalf("empty document should render as {}\\n, got %q", out)
	}
}

func TestEncodeCanonicalTrailingNewline(t *testing.T) {
	out, err := EncodeCanonical(map[string]any{"a": []any{1, 2}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(out, []byte("\n")) {
		t.Fatalf("output must end with a newline")
	}
	if bytes.HasSuffix(out, []byte("\n\n")) {
		t.Fatalf("output must end with exactly one newline")
	}
}

func TestEncodeCanonicalNumberTextPreserved(t *testing.T) {
	// json.Number must survive round trips without reformatting.
	tree, err := Canonicalize(map[string]any{"n": json.Number("1.50"), "big": json.Number("9007199254740993")})
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	out, err := EncodeCanonical(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Contains(out, []byte("1.50")) {
		t.Fatalf("decimal text not preserved: %s", out)
	}
	if !bytes.Contains(out, []byte("9007199254740993")) {
		t.Fatalf("integer beyond float53 not preserved: %s", out)
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	doc := schema.Document{
		"sink_http": {
			Title: "HTTP sink",
			Fields: map[string]*schema.Field{
				"endpoint": {Type: schema.TypeString, Required: true},
				"batch": {Type: schema.TypeObject, Fields: map[string]*schema.Field{
					"max_events": {Type: schema.TypeInt},
				}},
			},
		},
		"source_file": {Fields: map[string]*schema.Field{
			"path": {Type: schema.TypeString},
		}},
	}

	first, err := MarshalCanonical(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(doc)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("marshal is not deterministic:\nfirst:\n%s\nagain:\n%s", first, again)
		}
	}
}

func TestEncodeCanonicalEmptyCollections(t *testing.T) {
	out, err := EncodeCanonical(map[string]any{"obj": map[string]any{}, "arr": []any{}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\n  \"arr\": [],\n  \"obj\": {}\n}\n"
	if string(out) != want {
		t.Fatalf("empty collections:\ngot:\n%s\nwant:\n%s", out, want)
	}
}
