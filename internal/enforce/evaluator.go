// Package enforce hands resolved safety enforcements to the external
// semantics checker. The resolver computes WHICH enforcements apply to
// each declaration; whether code violates them is exclusively the
// evaluator implementation's judgement.
package enforce

import (
	"slices"

	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

// Enforcement is one profile's resolved enforcement state on a
// declaration. A suppressed entry means suppress(P) won the identity-class
// merge against an ancestor enforce(P): a known, permitted non-enforcement
// the evaluator may still want to record, rather than a deleted fact.
type Enforcement struct {
	Profile    string
	Suppressed bool
	Origin     source.Span
}

// Of extracts the enforcement set from an effective attribute set, sorted
// by profile for deterministic consumption.
func Of(in *source.Interner, set *attr.Set) []Enforcement {
	var out []Enforcement
	for _, a := range set.Attrs() {
		name := in.MustLookup(a.Name)
		if name != attr.NameEnforce && name != attr.NameSuppress {
			continue
		}
		profile := ""
		if len(a.Args) > 0 {
			profile = a.Args[0]
		}
		out = append(out, Enforcement{
			Profile:    profile,
			Suppressed: name == attr.NameSuppress,
			Origin:     a.Span,
		})
	}
	slices.SortFunc(out, func(x, y Enforcement) int {
		switch {
		case x.Profile < y.Profile:
			return -1
		case x.Profile > y.Profile:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Evaluator is implemented by the external safety checker. It receives
// every declaration together with its resolved enforcement set and may
// report violations through the reporter.
type Evaluator interface {
	EvaluateDecl(tree *scope.Tree, id scope.DeclID, enforcements []Enforcement, rep diag.Reporter)
}

// Nop is the default evaluator: it records nothing and reports nothing.
type Nop struct{}

func (Nop) EvaluateDecl(*scope.Tree, scope.DeclID, []Enforcement, diag.Reporter) {}
