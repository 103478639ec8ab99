package slice

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/arloliu/ordkv/errs"
)

// Slice is an immutable view over a byte buffer. The zero value is Nil.
//
// Slice is a small value type and should be passed by value. The bytes behind
// a Slice must never be mutated; constructors that accept caller-owned byte
// slices document whether they copy.
type Slice struct {
	b []byte
}

// Nil is the slice that carries no buffer. It is the zero value of Slice.
var Nil = Slice{}

// Empty is the valued slice of length zero.
var Empty = Slice{b: []byte{}}

// FromBytes wraps b without copying. The caller hands over ownership: the
// bytes must not be modified afterwards. A nil b yields Nil.
func FromBytes(b []byte) Slice {
	return Slice{b: b}
}

// CopyBytes returns a slice holding a fresh copy of b.
// A nil b yields Nil; a zero-length b yields Empty.
func CopyBytes(b []byte) Slice {
	if b == nil {
		return Nil
	}

	out := make([]byte, len(b))
	copy(out, b)

	return Slice{b: out}
}

// Zeroes returns a slice over a freshly allocated, zero-filled buffer of n
// bytes. Panics if n is negative.
func Zeroes(n int) Slice {
	if n < 0 {
		panic(fmt.Sprintf("slice: negative size %d", n))
	}

	return Slice{b: make([]byte, n)}
}

// FromString returns a slice holding the UTF-8 bytes of s.
// A zero-length s yields Empty.
func FromString(s string) Slice {
	return Slice{b: []byte(s)}
}

// FromASCII returns a slice holding the bytes of s. It is intended for 7-bit
// content such as protocol literals; the bytes are carried verbatim without
// validation, matching default-code-page semantics.
func FromASCII(s string) Slice {
	return Slice{b: []byte(s)}
}

// FromHex decodes a hexadecimal string into a slice. Mixed case is accepted;
// the length must be even. A zero-length s yields Empty.
func FromHex(s string) (Slice, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Nil, fmt.Errorf("slice: invalid hex input: %w", err)
	}

	return Slice{b: b}, nil
}

// FromBase64 decodes a standard base64 string into a slice.
// A zero-length s yields Empty.
func FromBase64(s string) (Slice, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return Nil, fmt.Errorf("slice: invalid base64 input: %w", err)
	}

	return Slice{b: b}, nil
}

// HasValue reports whether the slice carries a buffer. It is false only for Nil.
func (s Slice) HasValue() bool {
	return s.b != nil
}

// IsEmpty reports whether the slice carries a buffer of length zero.
func (s Slice) IsEmpty() bool {
	return s.b != nil && len(s.b) == 0
}

// IsNilOrEmpty reports whether the slice holds no bytes, either because it is
// Nil or because its window is empty.
func (s Slice) IsNilOrEmpty() bool {
	return len(s.b) == 0
}

// Len returns the number of bytes in the window. Nil has length 0.
func (s Slice) Len() int {
	return len(s.b)
}

// Bytes returns the underlying byte window without copying.
// The caller must not modify the returned slice.
func (s Slice) Bytes() []byte {
	return s.b
}

// At returns the byte at index i. A negative i counts from the end of the
// window (At(-1) is the last byte). Panics if the resolved index is out of
// range.
func (s Slice) At(i int) byte {
	n := len(s.b)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		panic(fmt.Sprintf("slice: index %d out of range for length %d", i, n))
	}

	return s.b[i]
}

// Substring returns the suffix of the slice starting at offset when offset is
// non-negative, and the last |offset| bytes when offset is negative.
// Panics if |offset| exceeds the window length.
func (s Slice) Substring(offset int) Slice {
	n := len(s.b)
	if offset < 0 {
		if -offset > n {
			panic(fmt.Sprintf("slice: substring offset %d out of range for length %d", offset, n))
		}

		return Slice{b: s.b[n+offset:]}
	}

	if offset > n {
		panic(fmt.Sprintf("slice: substring offset %d out of range for length %d", offset, n))
	}

	return Slice{b: s.b[offset:]}
}

// Window returns the sub-window [offset, offset+count) of the slice.
// The window shares the backing buffer with the receiver.
// Panics unless 0 <= offset, 0 <= count and offset+count <= Len().
func (s Slice) Window(offset, count int) Slice {
	n := len(s.b)
	if offset < 0 || count < 0 || offset+count > n {
		panic(fmt.Sprintf("slice: window [%d, %d+%d) out of range for length %d", offset, offset, count, n))
	}

	return Slice{b: s.b[offset : offset+count]}
}

// ReadUintLE decodes a little-endian unsigned integer of count bytes starting
// at offset: the byte at offset is the least significant. count must be in
// [0, 8]; ReadUintLE(offset, 0) is 0. Panics if the window is out of range.
func (s Slice) ReadUintLE(offset, count int) uint64 {
	if count < 0 || count > 8 {
		panic(fmt.Sprintf("slice: integer width %d out of range [0, 8]", count))
	}
	if offset < 0 || offset+count > len(s.b) {
		panic(fmt.Sprintf("slice: read [%d, %d+%d) out of range for length %d", offset, offset, count, len(s.b)))
	}

	var v uint64
	for i := count - 1; i >= 0; i-- {
		v = v<<8 | uint64(s.b[offset+i])
	}

	return v
}

// Memoize returns a slice that exclusively owns a fresh copy of the window's
// bytes, detaching it from any shared backing buffer.
// Nil memoizes to Nil, Empty to Empty.
func (s Slice) Memoize() Slice {
	if s.b == nil {
		return Nil
	}

	out := make([]byte, len(s.b))
	copy(out, s.b)

	return Slice{b: out}
}

// Concat returns a slice holding the receiver's bytes followed by o's bytes
// in a freshly allocated buffer. The result is Nil only when both inputs are
// Nil.
func (s Slice) Concat(o Slice) Slice {
	if s.b == nil && o.b == nil {
		return Nil
	}

	out := make([]byte, 0, len(s.b)+len(o.b))
	out = append(out, s.b...)
	out = append(out, o.b...)

	return Slice{b: out}
}

// Successor returns the first key that orders after every key having the
// receiver as a prefix: trailing 0xFF bytes are stripped and the last
// remaining byte is incremented. Returns an error if the slice is Nil, empty,
// or entirely 0xFF, since no such key exists.
func (s Slice) Successor() (Slice, error) {
	i := len(s.b) - 1
	for i >= 0 && s.b[i] == 0xFF {
		i--
	}
	if i < 0 {
		return Nil, fmt.Errorf("%w: slice has no successor", errs.ErrIndexRange)
	}

	out := make([]byte, i+1)
	copy(out, s.b[:i+1])
	out[i]++

	return Slice{b: out}, nil
}
