package tuple

import (
	"fmt"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/internal/hash"
	"github.com/arloliu/ordkv/slice"
)

// Tuple is a constructed tuple: an ordered sequence of decoded elements.
// The zero value is the empty tuple.
//
// A Tuple holds no encoding; Pack produces one on demand. For the lazy view
// over already-encoded bytes, see SlicedTuple.
type Tuple []Element

// Pack encodes the elements into an order-preserving byte string.
// Returns errs.ErrType if any element is of an unsupported kind.
func Pack(elems ...Element) (slice.Slice, error) {
	w := NewWriter()
	defer w.Release()

	for _, e := range elems {
		if err := w.WriteElement(e); err != nil {
			return slice.Nil, err
		}
	}

	return w.ToSlice(), nil
}

// MustPack is Pack for element sequences known to be well-typed, such as key
// schemas fixed at compile time. Panics on unsupported element kinds.
func MustPack(elems ...Element) slice.Slice {
	s, err := Pack(elems...)
	if err != nil {
		panic(err)
	}

	return s
}

// Unpack eagerly decodes an encoded tuple into its elements.
// For every supported tuple T, Unpack(Pack(T)) is Equal to T.
func Unpack(s slice.Slice) (Tuple, error) {
	data := s.Bytes()
	out := make(Tuple, 0, 4)

	off := 0
	for off < len(data) {
		end, err := elementEnd(data, off)
		if err != nil {
			return nil, err
		}
		e, err := decodeElement(data[off:end])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		off = end
	}

	return out, nil
}

// Pack encodes the tuple. See the package-level Pack.
func (t Tuple) Pack() (slice.Slice, error) {
	return Pack(t...)
}

// MustPack encodes the tuple, panicking on unsupported element kinds.
func (t Tuple) MustPack() slice.Slice {
	return MustPack(t...)
}

// Count returns the number of elements.
func (t Tuple) Count() int {
	return len(t)
}

// At returns the element at index i. A negative i counts from the end
// (At(-1) is the last element). Returns errs.ErrIndexRange when the resolved
// index is outside the tuple.
func (t Tuple) At(i int) (Element, error) {
	i, err := resolveIndex(i, len(t))
	if err != nil {
		return nil, err
	}

	return t[i], nil
}

// Append returns a new tuple holding the receiver's elements followed by
// elems. The receiver is unchanged and shares no backing storage with the
// result.
func (t Tuple) Append(elems ...Element) Tuple {
	out := make(Tuple, 0, len(t)+len(elems))
	out = append(out, t...)
	out = append(out, elems...)

	return out
}

// Concat returns a new tuple holding the receiver's elements followed by o's.
func (t Tuple) Concat(o Tuple) Tuple {
	return t.Append(o...)
}

// Slice returns the sub-range [from, to) of the tuple. Negative indices
// count from the end. An empty range yields the canonical empty tuple; the
// full range returns the receiver itself.
func (t Tuple) Slice(from, to int) (Tuple, error) {
	from, to, err := resolveRange(from, to, len(t))
	if err != nil {
		return nil, err
	}
	if from == 0 && to == len(t) {
		return t, nil
	}
	if from == to {
		return Tuple{}, nil
	}

	return t[from:to:to], nil
}

// Equal reports whether the two tuples have the same length and pairwise
// similar elements: numerically equal integers of different widths are
// equal, strings compare ordinally, and booleans equal the integers they
// pack as. Elements of unsupported kinds are never equal.
func (t Tuple) Equal(o Tuple) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		c, err := compareElements(t[i], o[i])
		if err != nil || c != 0 {
			return false
		}
	}

	return true
}

// Compare orders two tuples element-wise, shorter-prefix first, which agrees
// with the byte order of their packed encodings.
// Returns errs.ErrType if either tuple holds an unsupported element.
func (t Tuple) Compare(o Tuple) (int, error) {
	n := min(len(t), len(o))
	for i := range n {
		c, err := compareElements(t[i], o[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}

	return cmpOrdered(int64(len(t)), int64(len(o))), nil
}

// Hash returns an order-sensitive 64-bit hash consistent with Equal: it is
// computed over the canonical packed encoding, so similar tuples hash equal.
func (t Tuple) Hash() (uint64, error) {
	packed, err := t.Pack()
	if err != nil {
		return 0, err
	}

	return hash.Sum64(packed.Bytes()), nil
}

// GetAs returns the element at index i coerced to T. See As for the
// supported targets and coercion rules.
func GetAs[T any](t Tuple, i int) (T, error) {
	e, err := t.At(i)
	if err != nil {
		var zero T
		return zero, err
	}

	return As[T](e)
}

// First returns the first element coerced to T.
// Fails with errs.ErrIndexRange on an empty tuple.
func First[T any](t Tuple) (T, error) {
	return GetAs[T](t, 0)
}

// Last returns the last element coerced to T.
// Fails with errs.ErrIndexRange on an empty tuple.
func Last[T any](t Tuple) (T, error) {
	return GetAs[T](t, -1)
}

// resolveIndex maps a possibly negative index into [0, count).
func resolveIndex(i, count int) (int, error) {
	resolved := i
	if resolved < 0 {
		resolved += count
	}
	if resolved < 0 || resolved >= count {
		return 0, fmt.Errorf("%w: index %d for tuple of %d elements", errs.ErrIndexRange, i, count)
	}

	return resolved, nil
}

// resolveRange maps possibly negative range bounds into 0 <= from <= to <= count.
func resolveRange(from, to, count int) (int, int, error) {
	rf, rt := from, to
	if rf < 0 {
		rf += count
	}
	if rt < 0 {
		rt += count
	}
	if rf < 0 || rt < rf || rt > count {
		return 0, 0, fmt.Errorf("%w: range [%d, %d) for tuple of %d elements", errs.ErrIndexRange, from, to, count)
	}

	return rf, rt, nil
}
