package validate

import (
	"strings"
	"testing"

	"git.home.luguber.info/inful/schemabuild/internal/diag"
	"git.home.luguber.info/inful/schemabuild/internal/schema"
)

func file(path string, decls map[string]*schema.Declaration) *schema.SourceFile {
	return &schema.SourceFile{Schema: "v1", Declarations: decls, Path: path}
}

func TestBuildIndexFirstDeclarationWins(t *testing.T) {
	a := file("a.schema.yaml", map[string]*schema.Declaration{
		"sink_http": {Title: "from a"},
	})
	b := file("b.schema.yaml", map[string]*schema.Declaration{
		"sink_http": {Title: "from b"},
	})

	idx, report := BuildIndex([]*schema.SourceFile{a, b})

	if got := idx.Doc["sink_http"].Title; got != "from a" {
		t.Fatalf("first declaration should win, got title %q", got)
	}
	if report.Len() != 1 {
		t.Fatalf("expected one duplicate diagnostic, got %d", report.Len())
	}
	d := report.Diagnostics[0]
	if d.Kind != diag.KindDuplicateKey {
		t.Fatalf("expected duplicate-key, got %s", d.Kind)
	}
	if d.File != "b.schema.yaml" {
		t.Fatalf("duplicate should be reported against the later file, got %s", d.File)
	}
	if !strings.Contains(d.Message, "a.schema.yaml") {
		t.Fatalf("duplicate message should name the first file: %s", d.Message)
	}
}

func TestBuildIndexOriginTracksFiles(t *testing.T) {
	a := file("sinks/http.schema.yaml", map[string]*schema.Declaration{"sink_http": {}})
	b := file("sources/file.schema.yaml", map[string]*schema.Declaration{"source_file": {}})

	idx, report := BuildIndex([]*schema.SourceFile{a, b})
	if !report.OK() {
		t.Fatalf("unexpected diagnostics: %v", report.Diagnostics)
	}
	if idx.Origin["sink_http"] != "sinks/http.schema.yaml" {
		t.Fatalf("wrong origin for sink_http: %s", idx.Origin["sink_http"])
	}
	if idx.Origin["source_file"] != "sources/file.schema.yaml" {
		t.Fatalf("wrong origin for source_file: %s", idx.Origin["source_file"])
	}
}

func TestWalkDeclVisitsNestedScopes(t *testing.T) {
	d := &schema.Declaration{Fields: map[string]*schema.Field{
		"batch": {Type: schema.TypeObject, Fields: map[string]*schema.Field{
			"max_events": {Type: schema.TypeInt},
		}},
		"tags": {Type: schema.TypeArray, Items: &schema.Field{Type: schema.TypeString}},
	}}

	var paths []string
	walkDecl("sink_http", d, func(v fieldVisit) {
		paths = append(paths, v.path)
	})

	want := []string{
		"sink_http.fields.batch",
		"sink_http.fields.batch.fields.max_events",
		"sink_http.fields.tags",
		"sink_http.fields.tags.items",
	}
	if len(paths) != len(want) {
		t.Fatalf("visited %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("visit %d: got %s, want %s", i, paths[i], want[i])
		}
	}
}
