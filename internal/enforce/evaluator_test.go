package enforce

import (
	"testing"

	"nsattr/internal/attr"
	"nsattr/internal/source"
)

func TestOfExtractsProfiles(t *testing.T) {
	in := source.NewInterner()
	set := attr.NewSet()
	set.Insert(in, attr.Attr{Name: in.Intern(attr.NameNodiscard)})
	set.Insert(in, attr.Attr{Name: in.Intern(attr.NameEnforce), Args: []string{"type_safety"}})
	set.Insert(in, attr.Attr{Name: in.Intern(attr.NameSuppress), Args: []string{"bounds_safety"}})
	set.Insert(in, attr.Attr{Name: in.Intern("vendor_thing")})

	got := Of(in, set)
	if len(got) != 2 {
		t.Fatalf("expected 2 enforcements, got %d", len(got))
	}
	// Sorted by profile.
	if got[0].Profile != "bounds_safety" || !got[0].Suppressed {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Profile != "type_safety" || got[1].Suppressed {
		t.Errorf("second = %+v", got[1])
	}
}

func TestOfEmptySet(t *testing.T) {
	in := source.NewInterner()
	if got := Of(in, attr.NewSet()); len(got) != 0 {
		t.Errorf("empty set has no enforcements: %v", got)
	}
}
