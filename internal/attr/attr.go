package attr

import (
	"strings"

	"nsattr/internal/source"
)

// Attr is one attribute annotation `[[name(args...)]]` as handed over by
// the front end: interned name, ordered string arguments, source span.
// Immutable once constructed.
type Attr struct {
	Name source.StringID
	Args []string
	Span source.Span
}

// Key returns the set-identity key of the attribute: the bare name for
// argument-less attributes, `name(arg,...)` otherwise. Two `nodiscard`
// collapse to one entry while `enforce(type_safety)` and
// `enforce(bounds_safety)` stay distinct.
func (a Attr) Key(in *source.Interner) string {
	name := in.MustLookup(a.Name)
	if len(a.Args) == 0 {
		return name
	}
	return name + "(" + strings.Join(a.Args, ",") + ")"
}

// Category distinguishes how an attribute participates in compilation.
type Category uint8

const (
	// CategoryUnknown marks attributes outside the table; they are carried
	// through untouched and have zero effect on compilation.
	CategoryUnknown Category = iota
	// CategoryNonEnforced attributes are best-effort: silently dropped on
	// declarations they do not apply to.
	CategoryNonEnforced
	// CategoryEnforced attributes gate safety profiles; violations are the
	// enforcement evaluator's business, never the resolver's.
	CategoryEnforced
)

func (c Category) String() string {
	switch c {
	case CategoryNonEnforced:
		return "non-enforced"
	case CategoryEnforced:
		return "enforced"
	default:
		return "unknown"
	}
}

// DeclKind classifies a declaration for applicability checks.
type DeclKind uint8

const (
	DeclFunc DeclKind = iota
	DeclVar
	DeclType
	DeclDtor
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunc:
		return "function"
	case DeclVar:
		return "variable"
	case DeclType:
		return "type"
	case DeclDtor:
		return "destructor"
	}
	return "invalid"
}

// DeclShape carries the declaration facts applicability rules depend on.
type DeclShape struct {
	Kind        DeclKind
	ReturnsVoid bool
	Inline      bool
	HasBody     bool
}
