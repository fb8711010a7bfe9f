package resolve

import (
	"nsattr/internal/attr"
	"nsattr/internal/diag"
	"nsattr/internal/scope"
	"nsattr/internal/source"
)

// Resolution holds one translation unit's resolved attribute sets. It is
// never mutated after Resolve returns.
type Resolution struct {
	tree   *scope.Tree
	scopes map[scope.NodeID]*attr.Set
	decls  map[scope.DeclID]*attr.Set
	bag    *diag.Bag
}

// Tree returns the resolved scope tree.
func (r *Resolution) Tree() *scope.Tree { return r.tree }

// Bag returns the unit's accumulated diagnostics.
func (r *Resolution) Bag() *diag.Bag { return r.bag }

// ScopeSet returns the effective attribute set of a scope node.
func (r *Resolution) ScopeSet(id scope.NodeID) *attr.Set {
	return r.scopes[id]
}

// DeclSet returns the effective attribute set of a declaration, after
// inheritance, overrides and applicability filtering.
func (r *Resolution) DeclSet(id scope.DeclID) *attr.Set {
	return r.decls[id]
}

// Occurrence is the consistency-relevant projection of one scope node:
// its logical path, location, and effective attributes grouped by
// identity class (known attributes only; opaque vendor attributes have
// zero effect on compilation and never participate in matching).
type Occurrence struct {
	Path    string
	Span    source.Span
	Classes map[string][]string // identity class -> sorted member keys
	Keys    []string            // full sorted key list, diagnostics/cache
}

// Occurrences projects every scope node in preorder. Program order across
// translation units is the driver's concern; within one unit this order
// is declaration order.
func (r *Resolution) Occurrences() []Occurrence {
	in := r.tree.Interner()
	out := make([]Occurrence, 0, r.tree.NodesLen())
	r.tree.Preorder(func(id scope.NodeID) {
		set := r.scopes[id]
		out = append(out, Occurrence{
			Path:    r.tree.PathOf(id),
			Span:    r.tree.Node(id).Span,
			Classes: set.Classes(in),
			Keys:    set.SortedKeys(),
		})
	})
	return out
}
