package attr

import (
	"slices"
	"testing"

	"nsattr/internal/source"
)

func mk(in *source.Interner, name string, args ...string) Attr {
	return Attr{Name: in.Intern(name), Args: args}
}

func TestSetDedupByKey(t *testing.T) {
	in := source.NewInterner()
	s := NewSet()
	s.Insert(in, mk(in, NameNodiscard))
	s.Insert(in, mk(in, NameNodiscard))
	if s.Len() != 1 {
		t.Errorf("two nodiscard should collapse to one, got %d", s.Len())
	}

	s.Insert(in, mk(in, NameEnforce, "type_safety"))
	s.Insert(in, mk(in, NameEnforce, "bounds_safety"))
	if s.Len() != 3 {
		t.Errorf("enforce with distinct profiles must coexist, got %d entries", s.Len())
	}
	if !s.Has("enforce(type_safety)") || !s.Has("enforce(bounds_safety)") {
		t.Error("expected both enforce profiles present")
	}
}

func TestSetEqualKeysIgnoresOrder(t *testing.T) {
	in := source.NewInterner()
	a := NewSet()
	a.Insert(in, mk(in, NameNodiscard))
	a.Insert(in, mk(in, NameDeprecated))

	b := NewSet()
	b.Insert(in, mk(in, NameDeprecated))
	b.Insert(in, mk(in, NameNodiscard))

	if !a.EqualKeys(b) {
		t.Error("sets with the same keys must be equal regardless of order")
	}

	b.Insert(in, mk(in, NameMaybeUnused))
	if a.EqualKeys(b) {
		t.Error("sets of different size must differ")
	}
}

func TestMergeClassScopedOverride(t *testing.T) {
	in := source.NewInterner()
	parent := NewSet()
	parent.Insert(in, mk(in, NameNodiscard))
	parent.Insert(in, mk(in, NameEnforce, "type_safety"))

	child := NewSet()
	child.Insert(in, mk(in, NameMaybeUnused))

	got := Merge(in, parent, child).SortedKeys()
	want := []string{"enforce(type_safety)", "maybe_unused", "nodiscard"}
	if !slices.Equal(got, want) {
		t.Errorf("merge = %v, want %v", got, want)
	}
}

func TestMergeDiscardClassReplacement(t *testing.T) {
	in := source.NewInterner()
	parent := NewSet()
	parent.Insert(in, mk(in, NameNodiscard))
	parent.Insert(in, mk(in, NameEnforce, "type_safety"))

	child := NewSet()
	child.Insert(in, mk(in, NameDiscardable))

	merged := Merge(in, parent, child)
	if merged.Has("nodiscard") {
		t.Error("discardable must replace inherited nodiscard (same identity class)")
	}
	if !merged.Has("discardable") || !merged.Has("enforce(type_safety)") {
		t.Errorf("unexpected merge result: %v", merged.SortedKeys())
	}
}

func TestMergeSuppressReplacesEnforceSameProfile(t *testing.T) {
	in := source.NewInterner()
	parent := NewSet()
	parent.Insert(in, mk(in, NameEnforce, "type_safety"))
	parent.Insert(in, mk(in, NameEnforce, "bounds_safety"))

	child := NewSet()
	child.Insert(in, mk(in, NameSuppress, "type_safety"))

	got := Merge(in, parent, child).SortedKeys()
	want := []string{"enforce(bounds_safety)", "suppress(type_safety)"}
	if !slices.Equal(got, want) {
		t.Errorf("merge = %v, want %v", got, want)
	}
}

func TestMergeEmptyChildInherits(t *testing.T) {
	in := source.NewInterner()
	parent := NewSet()
	parent.Insert(in, mk(in, NameNodiscard))
	parent.Insert(in, mk(in, NameDeprecated))

	got := Merge(in, parent, NewSet())
	if !got.EqualKeys(parent) {
		t.Errorf("empty child must inherit the parent set unchanged: %v", got.SortedKeys())
	}
}

func TestMergeUnknownAttrsOverrideByOwnKey(t *testing.T) {
	in := source.NewInterner()
	parent := NewSet()
	parent.Insert(in, mk(in, "vendor_thing"))
	parent.Insert(in, mk(in, NameNodiscard))

	child := NewSet()
	child.Insert(in, mk(in, "vendor_thing"))

	got := Merge(in, parent, child)
	if got.Len() != 2 {
		t.Errorf("unknown attribute must only shadow its own key: %v", got.SortedKeys())
	}
}

func TestClassesExcludesUnknown(t *testing.T) {
	in := source.NewInterner()
	s := NewSet()
	s.Insert(in, mk(in, NameNodiscard))
	s.Insert(in, mk(in, NameEnforce, "type_safety"))
	s.Insert(in, mk(in, "vendor_thing"))

	classes := s.Classes(in)
	if _, ok := classes["vendor_thing"]; ok {
		t.Error("unknown attributes must not participate in identity classes")
	}
	if got := classes["discard"]; !slices.Equal(got, []string{"nodiscard"}) {
		t.Errorf("discard class = %v", got)
	}
	if got := classes["profile:type_safety"]; !slices.Equal(got, []string{"enforce(type_safety)"}) {
		t.Errorf("profile class = %v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	in := source.NewInterner()
	s := NewSet()
	s.Insert(in, mk(in, NameNodiscard))

	c := s.Clone()
	c.Insert(in, mk(in, NameDeprecated))
	if s.Len() != 1 {
		t.Errorf("mutating a clone changed the original: %v", s.SortedKeys())
	}
}
