package tuple

import (
	"math/bits"
	"strings"

	"github.com/arloliu/ordkv/internal/pool"
	"github.com/arloliu/ordkv/slice"
)

// Writer is an append-only packer that accumulates element encodings in a
// pooled byte buffer. Writers are cheap to create and are NOT safe for
// concurrent use; different writers may run in parallel.
//
// Typical usage:
//
//	w := tuple.NewWriter()
//	defer w.Release()
//	w.WriteString("inventory")
//	w.WriteInt(42)
//	key := w.ToSlice()
type Writer struct {
	buf   *pool.ByteBuffer
	count int
}

// NewWriter creates a new writer backed by a pooled buffer.
func NewWriter() *Writer {
	return &Writer{buf: pool.GetKeyBuffer()}
}

// WriteNil appends a nil element.
func (w *Writer) WriteNil() {
	w.buf.AppendByte(tagNil)
	w.count++
}

// WriteInt appends a signed integer in the canonical shortest form:
// zero as the bare zero tag, a positive value as tagIntZero+n followed by the
// n-byte big-endian magnitude, a negative value as tagIntZero-n followed by
// the one's complement of the magnitude on n bytes.
func (w *Writer) WriteInt(v int64) {
	switch {
	case v == 0:
		w.buf.AppendByte(tagIntZero)
	case v > 0:
		w.writeMagnitude(uint64(v))
	default:
		// uint64(-v) yields |v| for every negative value, including the
		// minimum, where the two's-complement wrap lands on 1<<63 exactly.
		u := uint64(-v)
		n := magnitudeWidth(u)
		w.buf.Grow(1 + n)
		w.buf.AppendByte(byte(tagIntZero - n))
		c := ^u
		for i := n - 1; i >= 0; i-- {
			w.buf.AppendByte(byte(c >> (8 * i)))
		}
	}
	w.count++
}

// WriteUint appends an unsigned integer. Magnitudes above the signed 64-bit
// range are representable: the positive payload holds up to eight bytes.
func (w *Writer) WriteUint(u uint64) {
	if u == 0 {
		w.buf.AppendByte(tagIntZero)
	} else {
		w.writeMagnitude(u)
	}
	w.count++
}

// WriteBool appends a boolean, which packs as the integer 0 or 1 in this
// dialect.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteInt(1)
	} else {
		w.WriteInt(0)
	}
}

// WriteString appends a unicode string element: UTF-8 payload with every
// 0x00 escaped as 0x00 0xFF, terminated by an unescaped 0x00.
func (w *Writer) WriteString(s string) {
	w.writeEscaped(tagString, s)
}

// WriteBytes appends a byte-string element with the same escape and
// terminator as WriteString. A nil b is treated as an empty byte string;
// use WriteNil or WriteSlice for nil elements.
func (w *Writer) WriteBytes(b []byte) {
	w.writeEscaped(tagBytes, string(b))
}

// WriteSlice appends a slice as a byte-string element. A Nil slice appends
// a nil element; Empty appends an empty byte string.
func (w *Writer) WriteSlice(s slice.Slice) {
	if !s.HasValue() {
		w.WriteNil()
		return
	}
	w.WriteBytes(s.Bytes())
}

// WriteElement appends an arbitrary element, dispatching on its kind.
// Returns errs.ErrType for values outside the supported element kinds.
func (w *Writer) WriteElement(e Element) error {
	n, err := normalize(e)
	if err != nil {
		return err
	}

	switch v := n.(type) {
	case nil:
		w.WriteNil()
	case int64:
		w.WriteInt(v)
	case uint64:
		w.WriteUint(v)
	case string:
		w.WriteString(v)
	case slice.Slice:
		w.WriteSlice(v)
	}

	return nil
}

// Count returns the number of elements written since the last Reset.
func (w *Writer) Count() int {
	return w.count
}

// Size returns the number of encoded bytes accumulated so far.
func (w *Writer) Size() int {
	return w.buf.Len()
}

// Bytes returns the accumulated encoding without copying.
// The returned slice is valid until the next write, Reset, or Release, and
// must not be modified.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// ToSlice returns the accumulated encoding as an independent Slice that owns
// a fresh copy of the bytes. The writer remains usable.
func (w *Writer) ToSlice() slice.Slice {
	return slice.CopyBytes(w.buf.Bytes())
}

// Reset clears the accumulated encoding, retaining the buffer for reuse.
func (w *Writer) Reset() {
	w.buf.Reset()
	w.count = 0
}

// Release returns the internal buffer to the pool.
// The writer must not be used after Release.
func (w *Writer) Release() {
	if w.buf != nil {
		pool.PutKeyBuffer(w.buf)
		w.buf = nil
	}
	w.count = 0
}

// writeMagnitude emits a positive integer payload: tagIntZero+n followed by
// the n-byte big-endian magnitude. u must be non-zero.
func (w *Writer) writeMagnitude(u uint64) {
	n := magnitudeWidth(u)
	w.buf.Grow(1 + n)
	w.buf.AppendByte(byte(tagIntZero + n))
	for i := n - 1; i >= 0; i-- {
		w.buf.AppendByte(byte(u >> (8 * i)))
	}
}

// writeEscaped emits tag, the payload with every 0x00 expanded to 0x00 0xFF,
// and the 0x00 terminator.
func (w *Writer) writeEscaped(tag byte, payload string) {
	w.buf.Grow(2 + len(payload))
	w.buf.AppendByte(tag)

	rest := payload
	for {
		i := strings.IndexByte(rest, 0x00)
		if i < 0 {
			w.buf.MustWriteString(rest)
			break
		}
		w.buf.MustWriteString(rest[:i+1])
		w.buf.AppendByte(0xFF)
		rest = rest[i+1:]
	}

	w.buf.AppendByte(0x00)
	w.count++
}

// magnitudeWidth returns the minimum number of bytes needed to represent a
// non-zero magnitude.
func magnitudeWidth(u uint64) int {
	return (bits.Len64(u) + 7) / 8
}
