package schema

import (
	"strings"
	"testing"
)

func TestCheckMetaAcceptsConformingFile(t *testing.T) {
	raw := []byte(`schema: v1
declarations:
  sink_http:
    title: HTTP sink
    fields:
      endpoint:
        type: string
        required: true
      tags:
        type: array
        items:
          type: string
`)
	violations, err := CheckMeta(raw)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %v", violations)
	}
}

func TestCheckMetaAcceptsEmptyDocument(t *testing.T) {
	for _, raw := range []string{"", "# nothing yet\n"} {
		violations, err := CheckMeta([]byte(raw))
		if err != nil {
			t.Fatalf("check %q: %v", raw, err)
		}
		if len(violations) != 0 {
			t.Fatalf("empty document %q should conform: %v", raw, violations)
		}
	}
}

func TestCheckMetaRejectsWrongShape(t *testing.T) {
	violations, err := CheckMeta([]byte("declarations: 5\n"))
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(violations) == 0 {
		t.Fatalf("declarations must be a mapping; expected violations")
	}
	for _, v := range violations {
		if !strings.HasPrefix(v.Pointer, "/") {
			t.Fatalf("violation pointer should be a JSON pointer: %q", v.Pointer)
		}
	}
}

func TestCheckMetaRejectsUnknownFieldKeys(t *testing.T) {
	raw := []byte(`declarations:
  a:
    fields:
      x:
        type: string
        maximum: 5
`)
	violations, err := CheckMeta(raw)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(violations) == 0 {
		t.Fatalf("unknown field keys should be structural violations")
	}
}

func TestCheckMetaRejectsMalformedYAML(t *testing.T) {
	_, err := CheckMeta([]byte("declarations: [\n"))
	if err == nil {
		t.Fatalf("malformed YAML must be an error")
	}
}

func TestInstancePointerEscaping(t *testing.T) {
	got := instancePointer([]string{"declarations", "a/b", "ti~lde"})
	if got != "/declarations/a~1b/ti~0lde" {
		t.Fatalf("pointer escaping wrong: %q", got)
	}
}
