package slice

import "bytes"

// FNV-1a parameters, fixed by the key hashing contract shared across clients.
const (
	fnvOffsetBasis32 = 0x811C9DC5
	fnvPrime32       = 0x01000193
)

// Equal reports whether the two slices hold the same byte content.
// Two Nil slices are equal; Nil is not equal to Empty.
func (s Slice) Equal(o Slice) bool {
	if s.b == nil || o.b == nil {
		return s.b == nil && o.b == nil
	}

	return bytes.Equal(s.b, o.b)
}

// Compare orders two slices by lexicographic unsigned-byte comparison,
// returning a negative value when s orders first, zero when the byte contents
// are identical, and a positive value when o orders first. Nil orders before
// every valued slice, Empty included.
func (s Slice) Compare(o Slice) int {
	if s.b == nil {
		if o.b == nil {
			return 0
		}

		return -1
	}
	if o.b == nil {
		return 1
	}

	return bytes.Compare(s.b, o.b)
}

// Hash returns the 32-bit FNV-1a hash of the byte window. Nil hashes to 0;
// Empty hashes to the FNV offset basis, keeping the two states distinct.
// Equal slices always hash equal.
func (s Slice) Hash() uint32 {
	if s.b == nil {
		return 0
	}

	h := uint32(fnvOffsetBasis32)
	for _, c := range s.b {
		h ^= uint32(c)
		h *= fnvPrime32
	}

	return h
}
