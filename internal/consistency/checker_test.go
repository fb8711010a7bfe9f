package consistency

import (
	"strings"
	"testing"

	"nsattr/internal/diag"
	"nsattr/internal/resolve"
	"nsattr/internal/source"
)

func occ(path string, span source.Span, classes map[string][]string) resolve.Occurrence {
	return resolve.Occurrence{Path: path, Span: span, Classes: classes}
}

func TestCheckAgreementYieldsNothing(t *testing.T) {
	occs := []resolve.Occurrence{
		occ("lib", source.Span{File: 1, Start: 0, End: 4}, map[string][]string{
			"discard": {"nodiscard"},
		}),
		occ("lib", source.Span{File: 2, Start: 0, End: 4}, map[string][]string{
			"discard": {"nodiscard"},
		}),
	}
	if got := Check(occs); len(got) != 0 {
		t.Errorf("matching occurrences must not violate: %v", got)
	}
}

func TestCheckFirstOccurrenceFixesReference(t *testing.T) {
	occs := []resolve.Occurrence{
		occ("lib", source.Span{File: 1, Start: 0, End: 4}, map[string][]string{
			"discard": {"nodiscard"},
		}),
		occ("lib", source.Span{File: 2, Start: 10, End: 14}, map[string][]string{
			"discard": {"discardable"},
		}),
		occ("lib", source.Span{File: 3, Start: 20, End: 24}, map[string][]string{
			"discard": {"nodiscard"},
		}),
	}
	got := Check(occs)
	if len(got) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(got))
	}
	v := got[0]
	if v.Path != "lib" || v.Class != "discard" {
		t.Errorf("violation = %+v", v)
	}
	if v.First.File != 1 || v.Second.File != 2 {
		t.Errorf("violation must cite the reference and the conflict: %+v", v)
	}
}

func TestCheckAbsenceCounts(t *testing.T) {
	occs := []resolve.Occurrence{
		occ("lib", source.Span{File: 1}, map[string][]string{
			"profile:type_safety": {"enforce(type_safety)"},
		}),
		occ("lib", source.Span{File: 2}, map[string][]string{}),
	}
	got := Check(occs)
	if len(got) != 1 {
		t.Fatalf("missing class must violate, got %d violations", len(got))
	}
	if got[0].Class != "profile:type_safety" {
		t.Errorf("class = %q", got[0].Class)
	}
	if len(got[0].SecondKeys) != 0 {
		t.Errorf("second occurrence has no members, got %v", got[0].SecondKeys)
	}
}

func TestCheckDistinctPathsIndependent(t *testing.T) {
	occs := []resolve.Occurrence{
		occ("a", source.Span{File: 1}, map[string][]string{"discard": {"nodiscard"}}),
		occ("b", source.Span{File: 1}, map[string][]string{"discard": {"discardable"}}),
	}
	if got := Check(occs); len(got) != 0 {
		t.Errorf("different paths never conflict: %v", got)
	}
}

func TestCheckMultipleClassDisagreements(t *testing.T) {
	occs := []resolve.Occurrence{
		occ("lib", source.Span{File: 1}, map[string][]string{
			"discard":             {"nodiscard"},
			"profile:type_safety": {"enforce(type_safety)"},
		}),
		occ("lib", source.Span{File: 2}, map[string][]string{
			"discard":             {"discardable"},
			"profile:type_safety": {"suppress(type_safety)"},
		}),
	}
	got := Check(occs)
	if len(got) != 2 {
		t.Fatalf("each disagreeing class is its own violation, got %d", len(got))
	}
	// unionClasses sorts, so violation order is deterministic.
	if got[0].Class != "discard" || got[1].Class != "profile:type_safety" {
		t.Errorf("violation classes = %q, %q", got[0].Class, got[1].Class)
	}
}

func TestReportCitesBothSpans(t *testing.T) {
	bag := diag.NewBag(10)
	violations := []Violation{{
		Path:       "lib",
		Class:      "discard",
		First:      source.Span{File: 1, Start: 0, End: 4},
		Second:     source.Span{File: 2, Start: 8, End: 12},
		FirstKeys:  []string{"nodiscard"},
		SecondKeys: nil,
	}}
	Report(violations, diag.BagReporter{Bag: bag})

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != diag.ChkInconsistentNamespace {
		t.Errorf("code = %v", d.Code)
	}
	if d.Primary.File != 2 {
		t.Errorf("primary span must be the conflicting occurrence, got file %d", d.Primary.File)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.File != 1 {
		t.Error("note must point at the first occurrence")
	}
	if !strings.Contains(d.Message, "[[nodiscard]]") || !strings.Contains(d.Message, "no attribute") {
		t.Errorf("message = %q", d.Message)
	}
}
