// Package slice provides an immutable, zero-copy view over a byte buffer.
//
// A Slice names a contiguous window of bytes and is the value type every key
// and value in ordkv is expressed in. Copying a Slice copies the view, never
// the bytes; distinct Slices may alias the same backing buffer, which is
// logically read-only once any Slice points at it.
//
// A Slice is in one of three states:
//
//   - Nil: the zero value; carries no buffer, HasValue() is false.
//   - Empty: a valued window of length zero.
//   - Non-empty: a valued window of one or more bytes.
//
// Nil and Empty are distinct under Equal but both behave as length-0 byte
// sequences; Nil orders before every valued Slice, Empty included.
//
// Because backing buffers are shared, a Slice that must outlive the buffer it
// was carved from should be detached with Memoize, the only operation that
// transitions a view from shared to exclusive ownership of its bytes.
package slice
