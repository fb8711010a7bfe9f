package scope

// NodeID identifies a scope node in the tree arena.
type NodeID uint32

// NoNodeID marks the absence of a node reference.
const NoNodeID NodeID = 0

// IsValid reports whether the ID refers to an allocated node.
func (id NodeID) IsValid() bool { return id != NoNodeID }

// DeclID identifies a declaration in the tree arena.
type DeclID uint32

// NoDeclID marks the absence of a declaration reference.
const NoDeclID DeclID = 0

// IsValid reports whether the ID refers to an allocated declaration.
func (id DeclID) IsValid() bool { return id != NoDeclID }
