// Package resolve computes effective attribute sets for a translation
// unit's scope tree: alias expansion, inheritance, and class-scoped
// override merging, in a single top-down traversal.
package resolve

import (
	"fmt"

	"nsattr/internal/alias"
	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/scope"
)

// DefaultMaxDiagnostics caps a unit's bag when the caller passes 0.
const DefaultMaxDiagnostics = 100

type resolver struct {
	tree *scope.Tree
	reg  *alias.Registry
	rep  diag.Reporter
	res  *Resolution
}

// Resolve walks the tree parent-before-children and computes the
// effective attribute set for every scope node and declaration. The
// result is a pure function of the inputs: resolving the same tree twice
// yields identical sets. Diagnostics accumulate in the result's bag;
// errors in one subtree never stop resolution of its siblings.
func Resolve(tree *scope.Tree, reg *alias.Registry, maxDiagnostics int) *Resolution {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	return ResolveInto(tree, reg, diag.NewBag(maxDiagnostics))
}

// ResolveInto resolves into a caller-owned bag, so alias-definition
// diagnostics collected while the unit was built land next to resolution
// diagnostics.
func ResolveInto(tree *scope.Tree, reg *alias.Registry, bag *diag.Bag) *Resolution {
	r := &resolver{
		tree: tree,
		reg:  reg,
		rep:  diag.NewDedupReporter(diag.BagReporter{Bag: bag}),
		res: &Resolution{
			tree:   tree,
			scopes: make(map[scope.NodeID]*attr.Set, tree.NodesLen()),
			decls:  make(map[scope.DeclID]*attr.Set, tree.DeclsLen()),
			bag:    bag,
		},
	}

	tree.Preorder(r.resolveNode)
	tree.EachDecl(r.resolveDecl)
	return r.res
}

// resolveNode merges the node's expanded raw set over its parent's
// already-resolved effective set. A repeated block of the same logical
// path starts from its lexical parent, never from a sibling occurrence;
// that falls out of using only the Parent chain here.
func (r *resolver) resolveNode(id scope.NodeID) {
	node := r.tree.Node(id)
	in := r.tree.Interner()

	parentEff := attr.NewSet()
	if node.Parent.IsValid() {
		parentEff = r.res.scopes[node.Parent]
	}
	expanded := r.expand(node.Raw, node.Pos)
	r.res.scopes[id] = attr.Merge(in, parentEff, expanded)
}

// resolveDecl inherits the owning scope's effective set, applies the
// declaration's own overrides, then drops non-enforced attributes that do
// not apply to this declaration's shape (silently, per the attribute
// table). Inline namespaces need no special casing: the declaration's
// owner chain is the chain at its declaration point, so later uses
// through the enclosing namespace observe the frozen sets.
func (r *resolver) resolveDecl(id scope.DeclID) {
	decl := r.tree.Decl(id)
	in := r.tree.Interner()

	ownerEff := attr.NewSet()
	if decl.Owner.IsValid() {
		ownerEff = r.res.scopes[decl.Owner]
	}
	expanded := r.expand(decl.Raw, decl.Pos)
	merged := attr.Merge(in, ownerEff, expanded)

	filtered := attr.NewSet()
	for _, a := range merged.Attrs() {
		name := in.MustLookup(a.Name)
		if attr.Classify(name) == attr.CategoryNonEnforced && !attr.Applicable(name, decl.Shape) {
			continue
		}
		filtered.Insert(in, a)
	}
	r.res.decls[id] = filtered
}

// expand replaces alias references in a raw attribute list with their
// registry targets. Targets are flat lists, so expansion is exactly one
// level; nesting was already rejected at the definition site. Unresolved
// aliases are reported and skipped, opaque vendor attributes pass through.
func (r *resolver) expand(raw []attr.Attr, usePos uint32) *attr.Set {
	in := r.tree.Interner()
	out := attr.NewSet()
	for _, a := range raw {
		name := in.MustLookup(a.Name)
		if !alias.IsQualified(name) {
			out.Insert(in, a)
			continue
		}
		target, status, def := r.reg.Resolve(name, usePos)
		switch status {
		case alias.StatusOK:
			for _, t := range target.Attrs() {
				out.Insert(in, t)
			}
		case alias.StatusNotVisible:
			diag.ReportError(r.rep, diag.AlsNotVisible, a.Span,
				fmt.Sprintf("alias %q used before its declaration", name)).
				WithNote(def.Span, "declared here").Emit()
		case alias.StatusRequiredUnknown:
			diag.ReportError(r.rep, diag.AlsRequiredUnknown, a.Span,
				fmt.Sprintf("required alias %q has no definition in this translation unit", name)).Emit()
		case alias.StatusOpaque:
			// Unknown vendor attribute: carried, zero effect.
			out.Insert(in, a)
		}
	}
	return out
}
