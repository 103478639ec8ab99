package kv

import (
	"fmt"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/slice"
	"github.com/arloliu/ordkv/tuple"
)

// Subspace is a key prefix a layer confines its state under. The prefix is
// the tuple encoding of the subspace path, so subspace keys sort together
// and nested subspaces nest lexicographically.
//
// Subspace is a small immutable value type.
type Subspace struct {
	prefix slice.Slice
}

// NewSubspace creates a subspace rooted at the tuple encoding of elems.
// Panics on unsupported element kinds, since subspace paths are fixed by the
// application's key schema.
func NewSubspace(elems ...tuple.Element) Subspace {
	return Subspace{prefix: tuple.MustPack(elems...)}
}

// SubspaceAt creates a subspace over a raw prefix, for interoperating with
// keys not produced by the tuple codec.
func SubspaceAt(prefix slice.Slice) Subspace {
	return Subspace{prefix: prefix.Memoize()}
}

// Prefix returns the subspace's raw key prefix.
func (s Subspace) Prefix() slice.Slice {
	return s.prefix
}

// Sub returns the nested subspace rooted at the receiver's prefix followed
// by the tuple encoding of elems.
func (s Subspace) Sub(elems ...tuple.Element) Subspace {
	return Subspace{prefix: s.prefix.Concat(tuple.MustPack(elems...))}
}

// Pack returns the key for the given tuple elements within the subspace:
// the prefix followed by the elements' tuple encoding.
// Panics on unsupported element kinds.
func (s Subspace) Pack(elems ...tuple.Element) slice.Slice {
	return s.prefix.Concat(tuple.MustPack(elems...))
}

// PackSlice returns the key for a single byte-string element.
func (s Subspace) PackSlice(v slice.Slice) slice.Slice {
	return s.Pack(v)
}

// Unpack decodes the tuple portion of a key produced by Pack.
// Fails if the key does not lie within the subspace.
func (s Subspace) Unpack(key slice.Slice) (tuple.Tuple, error) {
	if !s.Contains(key) {
		return nil, fmt.Errorf("%w: key %s outside subspace %s", errs.ErrIndexRange, key, s.prefix)
	}

	return tuple.Unpack(key.Substring(s.prefix.Len()))
}

// Contains reports whether key starts with the subspace prefix.
func (s Subspace) Contains(key slice.Slice) bool {
	if key.Len() < s.prefix.Len() {
		return false
	}

	return key.Window(0, s.prefix.Len()).Compare(s.prefix) == 0
}

// ToRange returns the half-open interval covering every key within the
// subspace: [prefix, successor(prefix)). Panics if the prefix has no
// successor (empty or all 0xFF), which indicates a malformed schema rather
// than a runtime condition.
func (s Subspace) ToRange() KeyRange {
	end, err := s.prefix.Successor()
	if err != nil {
		panic(fmt.Sprintf("kv: subspace prefix %s has no range: %v", s.prefix, err))
	}

	return KeyRange{Begin: s.prefix, End: end}
}
