package scope

import (
	"fmt"

	"fortio.org/safecast"

	"nsattr/internal/attr"
	"nsattr/internal/source"
)

// Node is one concrete namespace/policy block occurrence, not the logical
// namespace: two blocks of `namespace math` are two nodes sharing a Path.
// The parent reference is non-owning; the arena owns all nodes.
type Node struct {
	Name     source.StringID // last path segment
	Path     source.StringID // logical qualified path, "::"-joined
	Parent   NodeID
	Inline   bool
	Raw      []attr.Attr
	Span     source.Span
	Pos      uint32 // program-order position, for alias visibility
	Children []NodeID
	Decls    []DeclID
}

// Decl is a function/variable/type occurrence inside a node.
type Decl struct {
	Name  source.StringID
	Shape attr.DeclShape
	Raw   []attr.Attr
	Span  source.Span
	Pos   uint32
	Owner NodeID
}

// Tree stores one translation unit's scope nodes and declarations in
// compact slice arenas, index 0 reserved as sentinel. The tree is built
// once by the front end (through Builder) and read-only afterwards.
type Tree struct {
	nodes    []Node
	decls    []Decl
	roots    []NodeID
	interner *source.Interner
}

func newTree(in *source.Interner) *Tree {
	return &Tree{
		nodes:    make([]Node, 1, 33), // index 0 reserved for NoNodeID
		decls:    make([]Decl, 1, 65), // index 0 reserved for NoDeclID
		interner: in,
	}
}

// Node returns the node pointer or nil for an invalid ID.
func (t *Tree) Node(id NodeID) *Node {
	if !id.IsValid() || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Decl returns the declaration pointer or nil for an invalid ID.
func (t *Tree) Decl(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(t.decls) {
		return nil
	}
	return &t.decls[id]
}

// Roots returns top-level nodes in declaration order.
func (t *Tree) Roots() []NodeID {
	return t.roots
}

// NodesLen reports the number of nodes excluding the sentinel.
func (t *Tree) NodesLen() int { return len(t.nodes) - 1 }

// DeclsLen reports the number of declarations excluding the sentinel.
func (t *Tree) DeclsLen() int { return len(t.decls) - 1 }

// Interner exposes the string interner shared with the front end.
func (t *Tree) Interner() *source.Interner { return t.interner }

// EachDecl visits every declaration in arena order, including ones
// declared outside any block (Owner == NoNodeID).
func (t *Tree) EachDecl(visit func(DeclID)) {
	for i := 1; i < len(t.decls); i++ {
		visit(DeclID(i))
	}
}

// PathOf returns the logical qualified path of a node as a string.
func (t *Tree) PathOf(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return t.interner.MustLookup(n.Path)
}

// Preorder visits every node parent-before-children in declaration order.
func (t *Tree) Preorder(visit func(NodeID)) {
	var walk func(NodeID)
	walk = func(id NodeID) {
		visit(id)
		for _, child := range t.nodes[id].Children {
			walk(child)
		}
	}
	for _, root := range t.roots {
		walk(root)
	}
}

func (t *Tree) newNode(n Node) NodeID {
	value, err := safecast.Conv[uint32](len(t.nodes))
	if err != nil {
		panic(fmt.Errorf("scope arena overflow: %w", err))
	}
	id := NodeID(value)
	t.nodes = append(t.nodes, n)
	if n.Parent.IsValid() {
		parent := t.Node(n.Parent)
		parent.Children = append(parent.Children, id)
	} else {
		t.roots = append(t.roots, id)
	}
	return id
}

func (t *Tree) newDecl(d Decl) DeclID {
	value, err := safecast.Conv[uint32](len(t.decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	id := DeclID(value)
	t.decls = append(t.decls, d)
	if d.Owner.IsValid() {
		owner := t.Node(d.Owner)
		owner.Decls = append(owner.Decls, id)
	}
	return id
}
