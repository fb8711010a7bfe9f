// Package driver orchestrates whole-program resolution: translation
// units resolve independently (and in parallel, with no shared mutable
// state), then a single-threaded merge phase feeds every occurrence, in
// program order, to the consistency checker.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nsattr/internal/alias"
	"nsattr/internal/consistency"
	"nsattr/internal/diag"
	"nsattr/internal/enforce"
	"nsattr/internal/policy"
	"nsattr/internal/resolve"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

// UnitInput is one translation unit ready to resolve. Bag may be
// pre-seeded with diagnostics collected while the unit was built (alias
// definition conflicts); the resolver appends to it.
type UnitInput struct {
	Name     string
	Tree     *scope.Tree
	Registry *alias.Registry
	Bag      *diag.Bag
	Digest   [32]byte // content hash for the disk cache; zero disables
}

// UnitResult is one unit's outcome. Resolution is nil when the unit was
// served from the disk cache (occurrences and diagnostics state are still
// populated).
type UnitResult struct {
	Name        string
	Resolution  *resolve.Resolution
	Occurrences []resolve.Occurrence
	Bag         *diag.Bag
	FromCache   bool
}

// Result is the whole-program outcome.
type Result struct {
	Units      []UnitResult
	Program    *diag.Bag // consistency + cross-unit alias diagnostics
	Violations []consistency.Violation
}

// OK reports whether the build is well-formed: a failure in one unit
// never aborts the others, but the program is not successful while any
// unit (or the program phase) holds errors.
func (r *Result) OK() bool {
	for i := range r.Units {
		if r.Units[i].Bag.HasErrors() {
			return false
		}
	}
	return !r.Program.HasErrors()
}

// Options configures a program run.
type Options struct {
	Policy    policy.Policy
	Evaluator enforce.Evaluator // nil means enforce.Nop
	Cache     *DiskCache        // optional per-unit result cache
}

// ResolveProgram resolves every unit (parallel, bounded by Policy.Jobs),
// then runs the whole-program phases. The returned error covers
// infrastructure failures only (cancellation); compile-time findings are
// diagnostics in the result.
func ResolveProgram(ctx context.Context, units []UnitInput, opts Options) (*Result, error) {
	eval := opts.Evaluator
	if eval == nil {
		eval = enforce.Nop{}
	}
	jobs := opts.Policy.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i := range units {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = resolveUnit(&units[i], eval, opts.Cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Units:   results,
		Program: diag.NewBag(maxDiag(opts.Policy)),
	}
	programRep := diag.BagReporter{Bag: res.Program}

	// Merge phase: strictly single-threaded, program order = unit order.
	// Units that failed to resolve hold incomplete effective sets;
	// matching those against healthy units would manufacture violations.
	var all []resolve.Occurrence
	for i := range results {
		if results[i].Bag.HasErrors() {
			diag.ReportInfo(programRep, diag.ChkOccurrenceMissingResolve, source.Span{},
				fmt.Sprintf("unit %q failed to resolve; its namespace occurrences are excluded from the consistency check", results[i].Name)).Emit()
			continue
		}
		all = append(all, results[i].Occurrences...)
	}
	res.Violations = consistency.Check(all)
	consistency.Report(res.Violations, programRep)

	if opts.Policy.RequiredAliasScope == policy.ScopeProgram {
		checkAliasAgreement(units, programRep)
	}
	return res, nil
}

func resolveUnit(unit *UnitInput, eval enforce.Evaluator, cache *DiskCache) UnitResult {
	bag := unit.Bag
	if bag == nil {
		bag = diag.NewBag(resolve.DefaultMaxDiagnostics)
	}

	if cache != nil && unit.Digest != ([32]byte{}) {
		if payload, ok := cache.Load(unit.Digest); ok && !payload.HasErrors && !bag.HasErrors() {
			return UnitResult{
				Name:        unit.Name,
				Occurrences: payload.Occurrences,
				Bag:         bag,
				FromCache:   true,
			}
		}
	}

	resolution := resolve.ResolveInto(unit.Tree, unit.Registry, bag)
	rep := diag.BagReporter{Bag: bag}
	in := unit.Tree.Interner()
	unit.Tree.EachDecl(func(id scope.DeclID) {
		eval.EvaluateDecl(unit.Tree, id, enforce.Of(in, resolution.DeclSet(id)), rep)
	})

	out := UnitResult{
		Name:        unit.Name,
		Resolution:  resolution,
		Occurrences: resolution.Occurrences(),
		Bag:         bag,
	}
	if cache != nil && unit.Digest != ([32]byte{}) {
		// Best effort: a failed store never fails the build.
		_ = cache.Store(unit.Digest, &UnitPayload{
			Schema:      cacheSchemaVersion,
			Name:        unit.Name,
			Occurrences: out.Occurrences,
			HasErrors:   bag.HasErrors(),
		})
	}
	return out
}

// checkAliasAgreement implements the program-scope policy: identically
// named alias definitions in different units must carry identical target
// sets. Per-unit visibility rules are untouched.
func checkAliasAgreement(units []UnitInput, rep diag.Reporter) {
	type seenDef struct {
		unit string
		def  alias.Definition
		in   *source.Interner
	}
	seen := make(map[string]seenDef)
	for i := range units {
		in := units[i].Tree.Interner()
		for _, def := range units[i].Registry.Definitions() {
			prev, ok := seen[def.Name]
			if !ok {
				seen[def.Name] = seenDef{unit: units[i].Name, def: def, in: in}
				continue
			}
			if sameKeys(prev.def.Target.SortedKeys(), def.Target.SortedKeys()) {
				continue
			}
			diag.ReportError(rep, diag.AlsCrossUnitDisagreement, def.Span,
				fmt.Sprintf("alias %q defined differently in %q and %q", def.Name, prev.unit, units[i].Name)).
				WithNote(prev.def.Span, "conflicting definition here").Emit()
		}
	}
}

func sameKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func maxDiag(p policy.Policy) int {
	if p.MaxDiagnostics <= 0 {
		return resolve.DefaultMaxDiagnostics
	}
	return p.MaxDiagnostics
}
