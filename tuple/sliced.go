package tuple

import (
	"github.com/arloliu/ordkv/slice"
)

// SlicedTuple is a lazy view over an encoded tuple. It holds the encoded
// slice plus an index of element boundaries; the index is built once, on the
// first size or index operation, and element payloads are decoded only when
// asked for.
//
// A SlicedTuple is immutable once indexed and safe to share across
// goroutines after that point; the indexing step itself is not synchronized,
// so index from one goroutine before sharing.
type SlicedTuple struct {
	data slice.Slice

	// offsets[i] is the start of element i; the final entry is the total
	// encoded length, so element i spans offsets[i]..offsets[i+1].
	// nil until the first size or index operation.
	offsets []int
	indexed bool
	err     error
}

// FromSlice wraps encoded bytes in a lazy tuple view without validating
// them; framing errors surface from the first size or index operation.
func FromSlice(s slice.Slice) *SlicedTuple {
	return &SlicedTuple{data: s}
}

// Packed returns the encoded bytes backing the view.
func (t *SlicedTuple) Packed() slice.Slice {
	return t.data
}

// Count returns the number of elements, indexing the view if needed.
func (t *SlicedTuple) Count() (int, error) {
	if err := t.ensureIndex(); err != nil {
		return 0, err
	}

	return len(t.offsets) - 1, nil
}

// At decodes and returns the element at index i. A negative i counts from
// the end.
func (t *SlicedTuple) At(i int) (Element, error) {
	enc, err := t.elementBytes(i)
	if err != nil {
		return nil, err
	}

	return decodeElement(enc)
}

// GetSlice returns the raw encoded bytes of element i, tag through
// terminator, as a window sharing the view's backing buffer.
func (t *SlicedTuple) GetSlice(i int) (slice.Slice, error) {
	if err := t.ensureIndex(); err != nil {
		return slice.Nil, err
	}
	i, err := resolveIndex(i, len(t.offsets)-1)
	if err != nil {
		return slice.Nil, err
	}

	return t.data.Window(t.offsets[i], t.offsets[i+1]-t.offsets[i]), nil
}

// Append returns a new view whose encoding is the receiver's bytes followed
// by the encodings of elems; the existing prefix is reused, not re-encoded.
// Returns errs.ErrType for unsupported element kinds.
func (t *SlicedTuple) Append(elems ...Element) (*SlicedTuple, error) {
	w := NewWriter()
	defer w.Release()

	for _, e := range elems {
		if err := w.WriteElement(e); err != nil {
			return nil, err
		}
	}

	// Concat copies both parts into a fresh buffer, detaching the result
	// from the writer's pooled storage before Release returns it.
	out := &SlicedTuple{data: t.data.Concat(slice.FromBytes(w.Bytes()))}
	if t.indexed && t.err == nil {
		// Extend the cached index instead of rescanning the prefix.
		offs := make([]int, len(t.offsets), len(t.offsets)+w.Count())
		copy(offs, t.offsets)
		base := offs[len(offs)-1]
		for off := 0; off < w.Size(); {
			end, err := elementEnd(w.Bytes(), off)
			if err != nil {
				return nil, err
			}
			offs = append(offs, base+end)
			off = end
		}
		out.offsets = offs
		out.indexed = true
	}

	return out, nil
}

// Concat returns a new view over the receiver's bytes followed by o's bytes.
func (t *SlicedTuple) Concat(o *SlicedTuple) *SlicedTuple {
	return FromSlice(t.data.Concat(o.data))
}

// Slice returns a view over the sub-range [from, to) of the tuple. Negative
// indices count from the end. An empty range yields a view over the
// canonical empty tuple; the full range returns the receiver itself.
// The result's boundary index is carried over, already built.
func (t *SlicedTuple) Slice(from, to int) (*SlicedTuple, error) {
	if err := t.ensureIndex(); err != nil {
		return nil, err
	}
	count := len(t.offsets) - 1
	from, to, err := resolveRange(from, to, count)
	if err != nil {
		return nil, err
	}
	if from == 0 && to == count {
		return t, nil
	}

	start, end := t.offsets[from], t.offsets[to]
	offs := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		offs = append(offs, t.offsets[i]-start)
	}

	return &SlicedTuple{
		data:    t.data.Window(start, end-start),
		offsets: offs,
		indexed: true,
	}, nil
}

// ToTuple decodes every element and returns the materialized tuple.
func (t *SlicedTuple) ToTuple() (Tuple, error) {
	if err := t.ensureIndex(); err != nil {
		return nil, err
	}

	count := len(t.offsets) - 1
	out := make(Tuple, 0, count)
	for i := range count {
		e, err := decodeElement(t.data.Bytes()[t.offsets[i]:t.offsets[i+1]])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

// elementBytes resolves an index and returns the raw encoding of that element.
func (t *SlicedTuple) elementBytes(i int) ([]byte, error) {
	if err := t.ensureIndex(); err != nil {
		return nil, err
	}
	i, err := resolveIndex(i, len(t.offsets)-1)
	if err != nil {
		return nil, err
	}

	return t.data.Bytes()[t.offsets[i]:t.offsets[i+1]], nil
}

// ensureIndex walks the encoding once and caches the element boundaries.
// The transition is idempotent; a framing error is cached and re-reported by
// every subsequent operation.
func (t *SlicedTuple) ensureIndex() error {
	if t.indexed {
		return t.err
	}
	t.indexed = true

	data := t.data.Bytes()
	offs := make([]int, 1, 8)

	off := 0
	for off < len(data) {
		end, err := elementEnd(data, off)
		if err != nil {
			t.err = err
			return err
		}
		offs = append(offs, end)
		off = end
	}
	t.offsets = offs

	return nil
}
