package examples

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

func float(v float64) *float64 { return &v }

func testDoc() schema.Document {
	return schema.Document{
		"sink_http": {
			Title:       "HTTP sink",
			Description: "Delivers events over HTTP.",
			Example:     true,
			Fields: map[string]*schema.Field{
				"endpoint": {Type: schema.TypeString, Required: true},
				"codec":    {Type: schema.TypeString, Enum: []any{"json", "text"}},
				"timeout":  {Type: schema.TypeInt, Default: 30},
				"batch": {Type: schema.TypeObject, Fields: map[string]*schema.Field{
					"max_events": {Type: schema.TypeInt, Min: float(10)},
				}},
				"tags": {Type: schema.TypeArray, Items: &schema.Field{Type: schema.TypeString}},
				"tls":  {Type: schema.TypeRef, Ref: "tls_options"},
			},
		},
		"tls_options": {
			Fields: map[string]*schema.Field{
				"enabled": {Type: schema.TypeBool},
			},
		},
	}
}

func TestGenerateWritesFixtureTriple(t *testing.T) {
	dir := t.TempDir()
	count, err := NewGenerator().Generate(testDoc(), dir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if count != 1 {
		t.Fatalf("only example-flagged declarations render, got %d", count)
	}

	for _, name := range []string{"sink_http.json", "sink_http.md", "sink_http.html"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing fixture %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "tls_options.json")); err == nil {
		t.Fatalf("non-example declarations must not render")
	}
}

func TestGenerateSampleValues(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewGenerator().Generate(testDoc(), dir); err != nil {
		t.Fatalf("generate: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "sink_http.json"))
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var sample map[string]any
	if err := json.Unmarshal(raw, &sample); err != nil {
		t.Fatalf("sample is not JSON: %v", err)
	}

	if sample["endpoint"] != "example" {
		t.Fatalf("string placeholder: %v", sample["endpoint"])
	}
	if sample["codec"] != "json" {
		t.Fatalf("first enum member expected: %v", sample["codec"])
	}
	if sample["timeout"] != float64(30) {
		t.Fatalf("default should win: %v", sample["timeout"])
	}
	batch, ok := sample["batch"].(map[string]any)
	if !ok || batch["max_events"] != float64(10) {
		t.Fatalf("nested object with min bound: %v", sample["batch"])
	}
	tags, ok := sample["tags"].([]any)
	if !ok || len(tags) != 1 {
		t.Fatalf("array samples hold one item: %v", sample["tags"])
	}
	tls, ok := sample["tls"].(map[string]any)
	if !ok || tls["enabled"] != true {
		t.Fatalf("references inline the target: %v", sample["tls"])
	}
}

func TestGenerateMarkdownAndHTML(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewGenerator().Generate(testDoc(), dir); err != nil {
		t.Fatalf("generate: %v", err)
	}

	md, err := os.ReadFile(filepath.Join(dir, "sink_http.md"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !bytes.Contains(md, []byte("# HTTP sink")) {
		t.Fatalf("markdown should lead with the title:\n%s", md)
	}
	if !bytes.Contains(md, []byte("```json")) {
		t.Fatalf("markdown should embed the sample:\n%s", md)
	}

	html, err := os.ReadFile(filepath.Join(dir, "sink_http.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !bytes.Contains(html, []byte("<h1")) {
		t.Fatalf("html should be rendered markdown:\n%s", html)
	}
}

func TestGenerateClearsStaleFixtures(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "removed_decl.json")
	if err := os.WriteFile(stale, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed stale fixture: %v", err)
	}

	if _, err := NewGenerator().Generate(testDoc(), dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale fixtures must be cleared")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	doc := testDoc()
	dirA, dirB := t.TempDir(), t.TempDir()
	g := NewGenerator()
	if _, err := g.Generate(doc, dirA); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := g.Generate(doc, dirB); err != nil {
		t.Fatalf("generate: %v", err)
	}

	a, err := os.ReadFile(filepath.Join(dirA, "sink_http.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dirB, "sink_http.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("sample generation is not deterministic:\n%s\nvs\n%s", a, b)
	}
}

func TestGenerateFieldReference(t *testing.T) {
	doc := schema.Document{
		"a": {Example: true, Fields: map[string]*schema.Field{
			"outputs": {Type: schema.TypeRef, Ref: "common.outputs"},
		}},
		"common": {Fields: map[string]*schema.Field{
			"outputs": {Type: schema.TypeArray, Items: &schema.Field{Type: schema.TypeString}},
		}},
	}
	dir := t.TempDir()
	if _, err := NewGenerator().Generate(doc, dir); err != nil {
		t.Fatalf("generate: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var sample map[string]any
	if err := json.Unmarshal(raw, &sample); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := sample["outputs"].([]any); !ok {
		t.Fatalf("field reference should inline the target field: %v", sample["outputs"])
	}
}
