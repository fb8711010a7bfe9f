package attr

import (
	"slices"

	"nsattr/internal/source"
)

// Set is an insertion-ordered attribute set deduplicated by Attr.Key.
// Inserting an attribute with a key already present replaces the old
// entry in place.
type Set struct {
	attrs []Attr
	index map[string]int // key -> position in attrs
}

func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Insert adds the attribute, replacing any entry with the same key.
func (s *Set) Insert(in *source.Interner, a Attr) {
	key := a.Key(in)
	if pos, ok := s.index[key]; ok {
		s.attrs[pos] = a
		return
	}
	s.index[key] = len(s.attrs)
	s.attrs = append(s.attrs, a)
}

// Has reports whether an attribute with the given key is present.
func (s *Set) Has(key string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// Get returns the attribute stored under key.
func (s *Set) Get(key string) (Attr, bool) {
	if s == nil {
		return Attr{}, false
	}
	pos, ok := s.index[key]
	if !ok {
		return Attr{}, false
	}
	return s.attrs[pos], true
}

// Attrs returns the attributes in insertion order. Do not modify the
// returned slice; it aliases the set's storage.
func (s *Set) Attrs() []Attr {
	if s == nil {
		return nil
	}
	return s.attrs
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.attrs)
}

// Clone returns an independent copy preserving insertion order.
func (s *Set) Clone() *Set {
	out := NewSet()
	if s == nil {
		return out
	}
	out.attrs = slices.Clone(s.attrs)
	for k, v := range s.index {
		out.index[k] = v
	}
	return out
}

// SortedKeys returns the set's keys in lexical order.
func (s *Set) SortedKeys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.index))
	for k := range s.index {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EqualKeys reports whether both sets contain exactly the same keys,
// regardless of insertion order. Arguments participate via the key, so
// enforce(a) != enforce(b).
func (s *Set) EqualKeys(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	for key := range s.index {
		if !other.Has(key) {
			return false
		}
	}
	return true
}

func firstArg(a Attr) string {
	if len(a.Args) == 0 {
		return ""
	}
	return a.Args[0]
}

// classOf resolves the identity-class key for a set member.
func classOf(in *source.Interner, a Attr) string {
	name := in.MustLookup(a.Name)
	return ClassOf(name, a.Key(in), firstArg(a))
}

// Merge computes the class-scoped override union of parent and child:
// every identity class the child mentions replaces the parent's entries
// for that class; classes the child does not mention are inherited
// unchanged. Neither input is modified.
func Merge(in *source.Interner, parent, child *Set) *Set {
	if child.Len() == 0 {
		return parent.Clone()
	}
	overridden := make(map[string]struct{}, child.Len())
	for _, a := range child.Attrs() {
		overridden[classOf(in, a)] = struct{}{}
	}
	out := NewSet()
	for _, p := range parent.Attrs() {
		if _, ok := overridden[classOf(in, p)]; ok {
			continue
		}
		out.Insert(in, p)
	}
	for _, c := range child.Attrs() {
		out.Insert(in, c)
	}
	return out
}

// Classes groups the set's KNOWN attributes by identity class, mapping
// each class to its sorted member keys. Unknown attributes are excluded:
// they must have zero effect on compilation, so they never participate in
// cross-occurrence matching.
func (s *Set) Classes(in *source.Interner) map[string][]string {
	out := make(map[string][]string)
	for _, a := range s.Attrs() {
		name := in.MustLookup(a.Name)
		if !Known(name) {
			continue
		}
		class := classOf(in, a)
		out[class] = append(out[class], a.Key(in))
	}
	for _, keys := range out {
		slices.Sort(keys)
	}
	return out
}
