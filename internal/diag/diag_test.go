package diag

import (
	"testing"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Kind:    KindUnresolvedReference,
		File:    "sinks/http.schema.yaml",
		Path:    "sink_http.fields.auth",
		Message: `reference "tls_optionz" does not resolve`,
	}
	want := `sinks/http.schema.yaml: sink_http.fields.auth: unresolved-reference: reference "tls_optionz" does not resolve`
	if got := d.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDiagnosticStringWithoutPath(t *testing.T) {
	d := Diagnostic{Kind: KindSyntax, File: "bad.schema.yaml", Message: "yaml: line 3: mapping values"}
	want := "bad.schema.yaml: syntax: yaml: line 3: mapping values"
	if got := d.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReportSortOrder(t *testing.T) {
	r := &Report{}
	r.Addf(KindTypeMismatch, "b.schema.yaml", "x", "second file")
	r.Addf(KindTypeMismatch, "a.schema.yaml", "z.path", "later path")
	r.Addf(KindTypeMismatch, "a.schema.yaml", "a.path", "earlier path")
	r.Addf(KindDuplicateKey, "a.schema.yaml", "a.path", "same location, earlier kind")
	r.Sort()

	if r.Diagnostics[0].Kind != KindDuplicateKey {
		t.Fatalf("kind tiebreak wrong: %v", r.Diagnostics[0])
	}
	if r.Diagnostics[1].Message != "earlier path" {
		t.Fatalf("path order wrong: %v", r.Diagnostics[1])
	}
	if r.Diagnostics[3].File != "b.schema.yaml" {
		t.Fatalf("file order wrong: %v", r.Diagnostics[3])
	}
}

func TestReportCounts(t *testing.T) {
	r := &Report{}
	if !r.OK() || r.Len() != 0 {
		t.Fatalf("fresh report should be OK and empty")
	}
	r.Addf(KindSyntax, "a", "", "x")
	r.Addf(KindMissingRequired, "a", "p", "y")
	r.Addf(KindMissingRequired, "b", "q", "z")

	if r.OK() {
		t.Fatalf("report with diagnostics is not OK")
	}
	if r.Len() != 3 {
		t.Fatalf("len: %d", r.Len())
	}
	if r.CountByKind(KindMissingRequired) != 2 {
		t.Fatalf("count by kind: %d", r.CountByKind(KindMissingRequired))
	}
	if r.CountByKind(KindReferenceCycle) != 0 {
		t.Fatalf("count of absent kind should be 0")
	}
}

func TestReportMerge(t *testing.T) {
	a := &Report{}
	a.Addf(KindSyntax, "a", "", "x")
	b := &Report{}
	b.Addf(KindTypeMismatch, "b", "", "y")

	a.Merge(b)
	a.Merge(nil)
	if a.Len() != 2 {
		t.Fatalf("merge: %d", a.Len())
	}
}

func TestKindIsConstraint(t *testing.T) {
	if KindSyntax.IsConstraint() {
		t.Fatalf("syntax is not a constraint violation")
	}
	for _, k := range []Kind{KindDuplicateKey, KindMissingRequired, KindTypeMismatch, KindUnresolvedReference, KindReferenceCycle} {
		if !k.IsConstraint() {
			t.Fatalf("%s should be a constraint violation", k)
		}
	}
}
