package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(CategoryConstraint, SeverityFatal, "validation failed")
	if got := e.Error(); got != "constraint (fatal): validation failed" {
		t.Fatalf("got %q", got)
	}

	wrapped := Wrap(fmt.Errorf("disk full"), CategoryFileSystem, SeverityFatal, "artifact write failed")
	if !strings.Contains(wrapped.Error(), "disk full") {
		t.Fatalf("cause not included: %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	e := Wrap(cause, CategoryGit, SeverityFatal, "source fetch failed")
	if !stderrors.Is(e, cause) {
		t.Fatalf("errors.Is should see through PipelineError")
	}
}

func TestWithContext(t *testing.T) {
	e := New(CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", "merge").
		WithContext("attempt", 2)
	if e.Context["stage"] != "merge" || e.Context["attempt"] != 2 {
		t.Fatalf("context not recorded: %v", e.Context)
	}
}

func TestCategoryClassification(t *testing.T) {
	e := ConstraintFailure(3)
	if !IsCategory(e, CategoryConstraint) {
		t.Fatalf("expected constraint category")
	}
	if IsCategory(e, CategorySyntax) {
		t.Fatalf("wrong category matched")
	}
	if GetCategory(e) != CategoryConstraint {
		t.Fatalf("get category: %s", GetCategory(e))
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Fatalf("plain errors classify as internal")
	}
}

func TestConstructors(t *testing.T) {
	if e := ConfigNotFound("x.yaml"); e.Category != CategoryConfig || e.Context["path"] != "x.yaml" {
		t.Fatalf("ConfigNotFound: %+v", e)
	}
	if e := BuildFailed("load", fmt.Errorf("boom")); e.Category != CategoryBuild || e.Context["stage"] != "load" {
		t.Fatalf("BuildFailed: %+v", e)
	}
	if e := ConstraintFailure(5); e.Context["violations"] != 5 {
		t.Fatalf("ConstraintFailure: %+v", e)
	}
	if e := EventPublishError("builds", fmt.Errorf("nats down")); e.Severity != SeverityWarning {
		t.Fatalf("publish failures are warnings: %+v", e)
	}
}
