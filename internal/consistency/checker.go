// Package consistency cross-checks namespace attribute agreement: every
// occurrence of the same logical namespace path, across blocks and
// across translation units, must resolve to the same effective set for
// each known identity class, or the program is ill-formed.
package consistency

import (
	"fmt"
	"slices"
	"strings"

	"nsattr/internal/diag"
	"nsattr/internal/resolve"
	"nsattr/internal/source"
)

// Violation names one class disagreement between two occurrences of a
// logical namespace path.
type Violation struct {
	Path       string
	Class      string
	First      source.Span
	Second     source.Span
	FirstKeys  []string // class members at the first occurrence
	SecondKeys []string // class members at the conflicting occurrence
}

// Check inspects occurrences in program order (the caller concatenates
// translation units in build order). The first occurrence of each path
// fixes the reference: presence and absence of every known identity
// class. Each later occurrence must match exactly; each conflicting
// class yields one violation citing both locations. Runs after all units
// resolved; a whole-program phase, non-fatal to per-unit resolution.
func Check(occurrences []resolve.Occurrence) []Violation {
	first := make(map[string]*resolve.Occurrence, len(occurrences))
	var out []Violation

	for i := range occurrences {
		occ := &occurrences[i]
		ref, seen := first[occ.Path]
		if !seen {
			first[occ.Path] = occ
			continue
		}
		for _, class := range unionClasses(ref.Classes, occ.Classes) {
			refKeys := ref.Classes[class]
			occKeys := occ.Classes[class]
			if slices.Equal(refKeys, occKeys) {
				continue
			}
			out = append(out, Violation{
				Path:       occ.Path,
				Class:      class,
				First:      ref.Span,
				Second:     occ.Span,
				FirstKeys:  refKeys,
				SecondKeys: occKeys,
			})
		}
	}
	return out
}

// Report emits every violation as a ChkInconsistentNamespace error with
// the first occurrence attached as a note.
func Report(violations []Violation, rep diag.Reporter) {
	for _, v := range violations {
		diag.ReportError(rep, diag.ChkInconsistentNamespace, v.Second,
			fmt.Sprintf("namespace %q resolves %s here but %s at its first occurrence",
				v.Path, describe(v.SecondKeys), describe(v.FirstKeys))).
			WithNote(v.First, "first occurrence here").Emit()
	}
}

func describe(keys []string) string {
	if len(keys) == 0 {
		return "to no attribute"
	}
	return "to [[" + strings.Join(keys, ", ") + "]]"
}

func unionClasses(a, b map[string][]string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for class := range a {
		set[class] = struct{}{}
	}
	for class := range b {
		set[class] = struct{}{}
	}
	classes := make([]string, 0, len(set))
	for class := range set {
		classes = append(classes, class)
	}
	slices.Sort(classes)
	return classes
}
