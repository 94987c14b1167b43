package build

import (
	"testing"

	"git.home.luguber.info/inful/schemabuild/internal/loader"
)

func TestTreeHashIgnoresInputOrder(t *testing.T) {
	a := &loader.ParsedFile{Path: "a.schema.yaml", Hash: ContentHash([]byte("a"))}
	b := &loader.ParsedFile{Path: "b.schema.yaml", Hash: ContentHash([]byte("b"))}

	h1 := TreeHash([]*loader.ParsedFile{a, b})
	h2 := TreeHash([]*loader.ParsedFile{b, a})
	if h1 != h2 {
		t.Fatalf("tree hash depends on input order: %s vs %s", h1, h2)
	}
}

func TestTreeHashChangesWithContent(t *testing.T) {
	a := &loader.ParsedFile{Path: "a.schema.yaml", Hash: ContentHash([]byte("a"))}
	h1 := TreeHash([]*loader.ParsedFile{a})

	a2 := &loader.ParsedFile{Path: "a.schema.yaml", Hash: ContentHash([]byte("changed"))}
	h2 := TreeHash([]*loader.ParsedFile{a2})
	if h1 == h2 {
		t.Fatalf("tree hash did not change with content")
	}
}

func TestTreeHashChangesWithPath(t *testing.T) {
	hash := ContentHash([]byte("same"))
	h1 := TreeHash([]*loader.ParsedFile{{Path: "a.schema.yaml", Hash: hash}})
	h2 := TreeHash([]*loader.ParsedFile{{Path: "b.schema.yaml", Hash: hash}})
	if h1 == h2 {
		t.Fatalf("tree hash did not change with path")
	}
}

func TestTreeHashEmptyTree(t *testing.T) {
	if TreeHash(nil) != TreeHash([]*loader.ParsedFile{}) {
		t.Fatalf("nil and empty trees should hash identically")
	}
}
