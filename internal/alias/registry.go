// Package alias implements the attribute-alias registry: an append-only,
// declaration-ordered log of `using [[name]] = [[attr, ...]]` definitions
// for one translation unit. Visibility is positional (an alias is usable
// at and after its declaration point only) and `required::`-prefixed
// names turn silent pass-through of unknown attributes into a hard error.
package alias

import (
	"fmt"
	"strings"

	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/source"
)

// RequiredPrefix marks aliases whose absence at use is a compile error.
const RequiredPrefix = "required::"

// Status classifies the outcome of a Resolve call.
type Status uint8

const (
	// StatusOK: the alias is defined and visible; its target applies.
	StatusOK Status = iota
	// StatusNotVisible: defined in this unit, but after the use position.
	StatusNotVisible
	// StatusRequiredUnknown: required:: name with no definition anywhere
	// in the unit. Hard error at the point of use.
	StatusRequiredUnknown
	// StatusOpaque: unknown non-required name; carried through with zero
	// effect for vendor-attribute compatibility.
	StatusOpaque
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotVisible:
		return "not-visible"
	case StatusRequiredUnknown:
		return "required-unknown"
	case StatusOpaque:
		return "opaque"
	}
	return "invalid"
}

// Definition is one alias entry in the unit's declaration log.
type Definition struct {
	Name     string // full qualified name, required:: prefix included
	Required bool
	Target   *attr.Set // flat attribute list, never another alias
	Pos      uint32    // program-order declaration position
	Span     source.Span
}

// Registry holds a translation unit's alias definitions in declaration
// order. Lookups never mutate; Define only appends.
type Registry struct {
	in      *source.Interner
	entries []Definition
	byName  map[string]int
}

func NewRegistry(in *source.Interner) *Registry {
	return &Registry{
		in:     in,
		byName: make(map[string]int),
	}
}

// Interner exposes the shared string interner.
func (r *Registry) Interner() *source.Interner { return r.in }

// IsQualified reports whether name is an alias reference rather than a
// plain attribute name (two or more ::-separated segments).
func IsQualified(name string) bool {
	return strings.Contains(name, "::")
}

// validName checks the qualified-name format: at least two non-empty
// segments, three when the required:: prefix is present.
func validName(name string) bool {
	segments := strings.Split(name, "::")
	for _, seg := range segments {
		if seg == "" {
			return false
		}
	}
	if segments[0] == "required" {
		return len(segments) >= 3
	}
	return len(segments) >= 2
}

// Define records an alias declaration. A second declaration with an
// identical target set is a no-op; a different set is a hard error. The
// target must be a flat attribute list: a member that is itself a
// qualified name would nest (or cycle) aliases and is rejected at the
// definition site. Returns false when a diagnostic was reported.
func (r *Registry) Define(name string, target *attr.Set, pos uint32, span source.Span, rep diag.Reporter) bool {
	if !validName(name) {
		diag.ReportError(rep, diag.AlsMalformedName, span,
			fmt.Sprintf("alias name %q must have at least two '::'-separated segments", name)).Emit()
		return false
	}
	for _, a := range target.Attrs() {
		if IsQualified(r.in.MustLookup(a.Name)) {
			diag.ReportError(rep, diag.AlsExpansionInvalid, span,
				fmt.Sprintf("alias %q target may not reference another alias %q", name, a.Key(r.in))).
				WithNote(a.Span, "alias reference in target list").Emit()
			return false
		}
	}
	if idx, ok := r.byName[name]; ok {
		prev := r.entries[idx]
		if prev.Target.EqualKeys(target) {
			return true // identical redeclaration is a no-op
		}
		diag.ReportError(rep, diag.AlsRedefinitionConflict, span,
			fmt.Sprintf("alias %q redefined with a different attribute set", name)).
			WithNote(prev.Span, "previous definition here").Emit()
		return false
	}
	r.byName[name] = len(r.entries)
	r.entries = append(r.entries, Definition{
		Name:     name,
		Required: strings.HasPrefix(name, RequiredPrefix),
		Target:   target,
		Pos:      pos,
		Span:     span,
	})
	return true
}

// Resolve looks up name at a given use position. The returned definition
// is non-nil for StatusOK and StatusNotVisible (it names the declaration
// for diagnostics); the target set is only valid for StatusOK.
func (r *Registry) Resolve(name string, usePos uint32) (*attr.Set, Status, *Definition) {
	idx, ok := r.byName[name]
	if !ok {
		if strings.HasPrefix(name, RequiredPrefix) {
			return nil, StatusRequiredUnknown, nil
		}
		return nil, StatusOpaque, nil
	}
	def := &r.entries[idx]
	if def.Pos > usePos {
		return nil, StatusNotVisible, def
	}
	return def.Target, StatusOK, def
}

// Definitions returns the unit's alias log in declaration order. Do not
// modify the returned slice.
func (r *Registry) Definitions() []Definition {
	return r.entries
}
