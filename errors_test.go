package recmap_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reoring/recmap"
)

// TestErrorModel_CollectVsFailFast_And_AsIssues compares collect versus
// fail-fast validation and extracts Issues through a wrapped error.
func TestErrorModel_CollectVsFailFast_And_AsIssues(t *testing.T) {
	rec := recmap.MustNewRecord("user_t", []recmap.Field{
		recmap.UintField("id", 16),
		recmap.BytesField("email", 8),
	})
	doc := recmap.Map(recmap.E("id", recmap.Int(70000)), recmap.E("email", recmap.Int(1)))

	iss := recmap.Validate(rec, doc)
	if len(iss) != 2 {
		t.Fatalf("expected 2 issues in collect mode, got: %v", iss)
	}

	wrapped := fmt.Errorf("load user: %w", iss)
	got, ok := recmap.AsIssues(wrapped)
	if !ok || len(got) != 2 {
		t.Fatalf("expected AsIssues to unwrap, got: %v", wrapped)
	}
	var viaAs recmap.Issues
	if !errors.As(wrapped, &viaAs) {
		t.Fatalf("expected errors.As to extract Issues")
	}

	ff := recmap.Validate(rec, doc, recmap.Options{FailFast: true})
	if len(ff) != 1 || ff[0].Path != "id" {
		t.Fatalf("expected a single fail-fast issue at id, got: %v", ff)
	}

	if _, ok := recmap.AsIssues(nil); ok {
		t.Fatalf("AsIssues(nil) must report false")
	}
	if _, ok := recmap.AsIssues(errors.New("plain")); ok {
		t.Fatalf("AsIssues on a plain error must report false")
	}
}

// TestErrorModel_Codes keeps issue order stable across runs.
func TestErrorModel_Codes(t *testing.T) {
	rec := recmap.MustNewRecord("r", []recmap.Field{
		recmap.UintField("a", 8),
		recmap.UintField("b", 8),
		recmap.UintField("c", 8),
	})
	want := []string{recmap.CodePathNotFound, recmap.CodeTypeMismatch, recmap.CodeIntegerOverflow}
	for range 5 {
		iss := recmap.Validate(rec, recmap.Map(
			recmap.E("c", recmap.Int(256)),
			recmap.E("b", recmap.String("x")),
		))
		got := iss.Codes()
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("codes = %v, want %v", got, want)
		}
	}
}

func TestErrorModel_Formatting(t *testing.T) {
	se := &recmap.SchemaError{Code: recmap.CodeSchemaOverlap, Field: "b", Message: "bytes [2,4) overlap a [0,4)"}
	if got, want := se.Error(), "recmap: schema_overlap at b: bytes [2,4) overlap a [0,4)"; got != want {
		t.Fatalf("SchemaError = %q, want %q", got, want)
	}

	ie := &recmap.InvariantError{Issue: recmap.Issue{Code: recmap.CodeTypeMismatch, Path: "device.id"}}
	if !errors.Is(ie, recmap.ErrInvariant) {
		t.Fatalf("InvariantError must unwrap to ErrInvariant")
	}
	if got, want := ie.Error(), "recmap: encoder invariant violated: type_mismatch at device.id"; got != want {
		t.Fatalf("InvariantError = %q, want %q", got, want)
	}

	if got := (recmap.Issues{}).Error(); got != "" {
		t.Fatalf("empty Issues should render empty, got %q", got)
	}
	more := recmap.AppendIssues(nil, recmap.Issue{Code: "x", Path: "p"})
	if len(more) != 1 || more.Error() != "x at p" {
		t.Fatalf("AppendIssues = %v", more)
	}
}
