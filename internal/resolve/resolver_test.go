package resolve

import (
	"slices"
	"testing"

	"nsattr/internal/alias"
	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

type unit struct {
	in  *source.Interner
	b   *scope.Builder
	reg *alias.Registry
	bag *diag.Bag
}

func newUnit() *unit {
	in := source.NewInterner()
	return &unit{
		in:  in,
		b:   scope.NewBuilder(in),
		reg: alias.NewRegistry(in),
		bag: diag.NewBag(DefaultMaxDiagnostics),
	}
}

func (u *unit) attr(name string, args ...string) attr.Attr {
	return attr.Attr{Name: u.in.Intern(name), Args: args}
}

func (u *unit) alias(t *testing.T, name string, members ...attr.Attr) {
	t.Helper()
	target := attr.NewSet()
	for _, m := range members {
		target.Insert(u.in, m)
	}
	if !u.reg.Define(name, target, u.b.Tick(), source.Span{}, diag.BagReporter{Bag: u.bag}) {
		t.Fatalf("alias %q rejected", name)
	}
}

func (u *unit) resolve() *Resolution {
	return ResolveInto(u.b.Finish(), u.reg, u.bag)
}

func keysOf(s *attr.Set) []string { return s.SortedKeys() }

func TestScopeInheritsParent(t *testing.T) {
	u := newUnit()
	outer := u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard"), u.attr("enforce", "type_safety")}, source.Span{})
	inner := u.b.OpenScope("detail", false, nil, source.Span{})
	u.b.CloseScope()
	u.b.CloseScope()
	res := u.resolve()

	if !res.ScopeSet(inner).EqualKeys(res.ScopeSet(outer)) {
		t.Errorf("child without overrides must equal parent: %v vs %v",
			keysOf(res.ScopeSet(inner)), keysOf(res.ScopeSet(outer)))
	}
}

func TestClassScopedOverride(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard"), u.attr("enforce", "type_safety")}, source.Span{})
	inner := u.b.OpenScope("detail", false, []attr.Attr{u.attr("maybe_unused")}, source.Span{})
	u.b.CloseScope()
	u.b.CloseScope()
	res := u.resolve()

	got := keysOf(res.ScopeSet(inner))
	want := []string{"enforce(type_safety)", "maybe_unused", "nodiscard"}
	if !slices.Equal(got, want) {
		t.Errorf("inner set = %v, want %v", got, want)
	}
}

func TestOverrideReplacesSameClass(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard")}, source.Span{})
	inner := u.b.OpenScope("detail", false, []attr.Attr{u.attr("discardable")}, source.Span{})
	u.b.CloseScope()
	u.b.CloseScope()
	res := u.resolve()

	set := res.ScopeSet(inner)
	if set.Has("nodiscard") {
		t.Error("discardable must replace inherited nodiscard")
	}
	if !set.Has("discardable") {
		t.Errorf("inner set = %v", keysOf(set))
	}
}

func TestResolutionIdempotent(t *testing.T) {
	build := func() *unit {
		u := newUnit()
		u.alias(t, "p::x", u.attr("nodiscard"), u.attr("enforce", "type_safety"))
		u.b.OpenScope("lib", false, []attr.Attr{u.attr("p::x")}, source.Span{})
		u.b.AddDecl("f", attr.DeclShape{Kind: attr.DeclFunc}, []attr.Attr{u.attr("maybe_unused")}, source.Span{})
		u.b.CloseScope()
		return u
	}

	first := build().resolve()
	second := build().resolve()

	a := first.Occurrences()
	b := second.Occurrences()
	if len(a) != len(b) {
		t.Fatalf("occurrence counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Path != b[i].Path || !slices.Equal(a[i].Keys, b[i].Keys) {
			t.Errorf("occurrence %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestAliasExpansionEquivalence(t *testing.T) {
	direct := newUnit()
	dn := direct.b.OpenScope("lib", false,
		[]attr.Attr{direct.attr("nodiscard"), direct.attr("enforce", "type_safety")}, source.Span{})
	direct.b.CloseScope()
	dres := direct.resolve()

	aliased := newUnit()
	aliased.alias(t, "p::x", aliased.attr("nodiscard"), aliased.attr("enforce", "type_safety"))
	an := aliased.b.OpenScope("lib", false, []attr.Attr{aliased.attr("p::x")}, source.Span{})
	aliased.b.CloseScope()
	ares := aliased.resolve()

	got := keysOf(ares.ScopeSet(an))
	want := keysOf(dres.ScopeSet(dn))
	if !slices.Equal(got, want) {
		t.Errorf("alias use = %v, direct spelling = %v", got, want)
	}
	if ares.Bag().HasErrors() {
		t.Error("visible alias expansion must not report errors")
	}
}

func TestAliasNotVisibleBeforeDeclaration(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("p::x")}, source.Span{File: 1, Start: 4, End: 8})
	u.b.CloseScope()
	u.alias(t, "p::x", u.attr("nodiscard"))
	res := u.resolve()

	if !res.Bag().HasErrors() {
		t.Fatal("use before declaration must be an error")
	}
	d := res.Bag().Items()[0]
	if d.Code != diag.AlsNotVisible {
		t.Errorf("code = %v, want AlsNotVisible", d.Code)
	}
	if len(d.Notes) != 1 {
		t.Error("not-visible error should point at the later declaration")
	}
}

func TestRequiredAliasGate(t *testing.T) {
	u := newUnit()
	node := u.b.OpenScope("lib", false, []attr.Attr{u.attr("required::safety::core")}, source.Span{File: 1, Start: 0, End: 4})
	u.b.CloseScope()
	res := u.resolve()

	if !res.Bag().HasErrors() {
		t.Fatal("undefined required alias must be a hard error")
	}
	if got := res.Bag().Items()[0].Code; got != diag.AlsRequiredUnknown {
		t.Errorf("code = %v, want AlsRequiredUnknown", got)
	}
	if res.ScopeSet(node).Len() != 0 {
		t.Errorf("failed expansion must contribute nothing: %v", keysOf(res.ScopeSet(node)))
	}
}

func TestOpaqueAliasPassesThrough(t *testing.T) {
	u := newUnit()
	node := u.b.OpenScope("lib", false, []attr.Attr{u.attr("vendor::ext"), u.attr("nodiscard")}, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	if res.Bag().HasErrors() {
		t.Fatal("opaque vendor attribute must not be an error")
	}
	set := res.ScopeSet(node)
	if !set.Has("vendor::ext") || !set.Has("nodiscard") {
		t.Errorf("scope set = %v", keysOf(set))
	}
	occ := res.Occurrences()
	if _, ok := occ[0].Classes["vendor::ext"]; ok {
		t.Error("opaque attributes must not participate in identity classes")
	}
}

func TestNonEnforcedSuppressionByShape(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard"), u.attr("enforce", "type_safety")}, source.Span{})
	voidFn := u.b.AddDecl("f", attr.DeclShape{Kind: attr.DeclFunc, ReturnsVoid: true}, nil, source.Span{})
	dtor := u.b.AddDecl("~T", attr.DeclShape{Kind: attr.DeclDtor}, nil, source.Span{})
	intFn := u.b.AddDecl("g", attr.DeclShape{Kind: attr.DeclFunc}, nil, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	for _, id := range []scope.DeclID{voidFn, dtor} {
		set := res.DeclSet(id)
		if set.Has("nodiscard") {
			t.Errorf("nodiscard must be dropped for %v", keysOf(set))
		}
		if !set.Has("enforce(type_safety)") {
			t.Errorf("enforced attributes never drop by shape: %v", keysOf(set))
		}
	}
	if !res.DeclSet(intFn).Has("nodiscard") {
		t.Errorf("value-returning function keeps nodiscard: %v", keysOf(res.DeclSet(intFn)))
	}
	if res.Bag().HasErrors() || res.Bag().HasWarnings() {
		t.Error("shape-based suppression is silent")
	}
}

func TestDeclOverridesOwner(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard")}, source.Span{})
	d := u.b.AddDecl("f", attr.DeclShape{Kind: attr.DeclFunc}, []attr.Attr{u.attr("discardable")}, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	set := res.DeclSet(d)
	if set.Has("nodiscard") || !set.Has("discardable") {
		t.Errorf("decl-level override failed: %v", keysOf(set))
	}
}

func TestSiblingBlocksStartFresh(t *testing.T) {
	u := newUnit()
	first := u.b.OpenScope("lib", false, []attr.Attr{u.attr("nodiscard")}, source.Span{})
	u.b.CloseScope()
	second := u.b.OpenScope("lib", false, nil, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	if res.ScopeSet(first).Len() != 1 {
		t.Errorf("first occurrence = %v", keysOf(res.ScopeSet(first)))
	}
	if res.ScopeSet(second).Len() != 0 {
		t.Errorf("second occurrence of the same path must not inherit from a sibling: %v",
			keysOf(res.ScopeSet(second)))
	}
}

func TestInlineNamespaceFreeze(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("lib", false, []attr.Attr{u.attr("enforce", "type_safety")}, source.Span{})
	inl := u.b.OpenScope("v1", true, []attr.Attr{u.attr("suppress", "type_safety")}, source.Span{})
	inDecl := u.b.AddDecl("f", attr.DeclShape{Kind: attr.DeclFunc}, nil, source.Span{})
	u.b.CloseScope()
	// Declared after the inline block closes, but through the outer scope.
	outDecl := u.b.AddDecl("g", attr.DeclShape{Kind: attr.DeclFunc}, nil, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	if !res.ScopeSet(inl).Has("suppress(type_safety)") {
		t.Errorf("inline block set = %v", keysOf(res.ScopeSet(inl)))
	}
	if !res.DeclSet(inDecl).Has("suppress(type_safety)") {
		t.Errorf("decl inside inline block = %v", keysOf(res.DeclSet(inDecl)))
	}
	if !res.DeclSet(outDecl).Has("enforce(type_safety)") || res.DeclSet(outDecl).Has("suppress(type_safety)") {
		t.Errorf("sibling decl must see the outer set unchanged: %v", keysOf(res.DeclSet(outDecl)))
	}
}

func TestOccurrencesPreorder(t *testing.T) {
	u := newUnit()
	u.b.OpenScope("a", false, []attr.Attr{u.attr("nodiscard")}, source.Span{})
	u.b.OpenScope("b", false, nil, source.Span{})
	u.b.CloseScope()
	u.b.CloseScope()
	u.b.OpenScope("c", false, nil, source.Span{})
	u.b.CloseScope()
	res := u.resolve()

	occ := res.Occurrences()
	paths := make([]string, len(occ))
	for i, o := range occ {
		paths[i] = o.Path
	}
	want := []string{"a", "a::b", "c"}
	if !slices.Equal(paths, want) {
		t.Errorf("occurrence paths = %v, want %v", paths, want)
	}
	if got := occ[1].Classes["discard"]; !slices.Equal(got, []string{"nodiscard"}) {
		t.Errorf("a::b discard class = %v", got)
	}
}
