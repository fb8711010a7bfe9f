package scope

import (
	"nsattr/internal/attr"
	"nsattr/internal/source"
)

// Builder is the front end's write interface to a translation unit's
// scope tree. It maintains the open-scope stack and the program-order
// counter shared between scope blocks, declarations and alias
// declarations (alias visibility compares these positions).
type Builder struct {
	tree  *Tree
	stack []NodeID
	pos   uint32
}

// NewBuilder creates a builder over a fresh tree sharing the given
// interner with the rest of the pipeline.
func NewBuilder(in *source.Interner) *Builder {
	return &Builder{tree: newTree(in)}
}

// Interner exposes the shared string interner.
func (b *Builder) Interner() *source.Interner {
	return b.tree.interner
}

// Tick allocates the next program-order position. The front end stamps
// alias declarations with it so the registry can compare declaration
// order against attribute-use positions.
func (b *Builder) Tick() uint32 {
	b.pos++
	return b.pos
}

// OpenScope enters a namespace/policy block. name is one path segment;
// the logical path is derived from the enclosing scope chain.
func (b *Builder) OpenScope(name string, inline bool, raw []attr.Attr, span source.Span) NodeID {
	in := b.tree.interner
	parent := b.current()
	path := name
	if parent.IsValid() {
		path = in.MustLookup(b.tree.Node(parent).Path) + "::" + name
	}
	id := b.tree.newNode(Node{
		Name:   in.Intern(name),
		Path:   in.Intern(path),
		Parent: parent,
		Inline: inline,
		Raw:    raw,
		Span:   span,
		Pos:    b.Tick(),
	})
	b.stack = append(b.stack, id)
	return id
}

// CloseScope leaves the innermost open block.
func (b *Builder) CloseScope() {
	if len(b.stack) == 0 {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// AddDecl records a declaration in the innermost open block.
func (b *Builder) AddDecl(name string, shape attr.DeclShape, raw []attr.Attr, span source.Span) DeclID {
	return b.tree.newDecl(Decl{
		Name:  b.tree.interner.Intern(name),
		Shape: shape,
		Raw:   raw,
		Span:  span,
		Pos:   b.Tick(),
		Owner: b.current(),
	})
}

// Finish returns the completed tree. The builder must not be used after.
func (b *Builder) Finish() *Tree {
	b.stack = nil
	return b.tree
}

func (b *Builder) current() NodeID {
	if len(b.stack) == 0 {
		return NoNodeID
	}
	return b.stack[len(b.stack)-1]
}
