package attr

import (
	"slices"
)

// Attribute and class name constants used across the resolver.
const (
	NameNodiscard   = "nodiscard"
	NameDiscardable = "discardable"
	NameMaybeUnused = "maybe_unused"
	NameDeprecated  = "deprecated"
	NameConstexpr   = "constexpr"
	NameEnforce     = "enforce"
	NameSuppress    = "suppress"

	classDiscard = "discard"
	// Per-profile classes are keyed "profile:<P>" so enforce(P) and
	// suppress(P) override each other while other profiles are untouched.
	classProfilePrefix = "profile:"
)

// Spec describes one table entry: its category and identity class.
type Spec struct {
	Name     string
	Category Category
	// Class is the fixed identity-class key; empty means the attribute is
	// its own singleton class.
	Class string
	// ProfileKeyed classes are derived from the first argument instead of
	// the Class field (enforce/suppress pairs).
	ProfileKeyed bool
}

var table = map[string]Spec{
	NameNodiscard:   {Name: NameNodiscard, Category: CategoryNonEnforced, Class: classDiscard},
	NameDiscardable: {Name: NameDiscardable, Category: CategoryNonEnforced, Class: classDiscard},
	NameMaybeUnused: {Name: NameMaybeUnused, Category: CategoryNonEnforced},
	NameDeprecated:  {Name: NameDeprecated, Category: CategoryNonEnforced},
	NameConstexpr:   {Name: NameConstexpr, Category: CategoryNonEnforced},
	NameEnforce:     {Name: NameEnforce, Category: CategoryEnforced, ProfileKeyed: true},
	NameSuppress:    {Name: NameSuppress, Category: CategoryEnforced, ProfileKeyed: true},
}

// Lookup returns table metadata for the given attribute name.
func Lookup(name string) (Spec, bool) {
	spec, ok := table[name]
	return spec, ok
}

// Classify reports the category of an attribute name. Names outside the
// table are CategoryUnknown: carried through, never diagnosed.
func Classify(name string) Category {
	if spec, ok := table[name]; ok {
		return spec.Category
	}
	return CategoryUnknown
}

// Known reports whether name is in the table.
func Known(name string) bool {
	_, ok := table[name]
	return ok
}

// Specs returns all table entries sorted by name.
func Specs() []Spec {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)
	result := make([]Spec, 0, len(names))
	for _, name := range names {
		result = append(result, table[name])
	}
	return result
}

// ClassOf returns the identity-class key used for override merging. Known
// attributes map to their table class (or a per-profile class), unknown
// ones form singleton classes keyed by their full key.
func ClassOf(name string, key string, firstArg string) string {
	spec, ok := table[name]
	if !ok {
		return key
	}
	if spec.ProfileKeyed {
		return classProfilePrefix + firstArg
	}
	if spec.Class != "" {
		return spec.Class
	}
	return spec.Name
}

// Applicable reports whether the attribute may stay on a declaration.
// The rules only ever drop NON-ENFORCED attributes; enforced ones always
// apply and unknown ones are carried verbatim.
func Applicable(name string, decl DeclShape) bool {
	switch name {
	case NameNodiscard:
		// Nothing to discard: void-returning functions and destructors.
		if decl.Kind == DeclDtor {
			return false
		}
		if decl.Kind == DeclFunc && decl.ReturnsVoid {
			return false
		}
		return true
	case NameConstexpr:
		// Default-constexpr reaches function definitions only; inline
		// functions and declaration-only functions opt out.
		if decl.Kind != DeclFunc {
			return false
		}
		return decl.HasBody && !decl.Inline
	default:
		return true
	}
}
