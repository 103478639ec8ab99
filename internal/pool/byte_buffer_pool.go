package pool

import "sync"

const (
	// KeyBufferDefaultSize is the starting capacity of a pooled ByteBuffer.
	// Encoded keys are typically tens to a few hundred bytes, so buffers
	// start small and grow on demand.
	KeyBufferDefaultSize = 256

	// KeyBufferMaxThreshold is the largest buffer the pool will take back.
	// A buffer that grew past this (an unusually large value or batch)
	// is left for the garbage collector instead of pinning its memory in
	// the pool.
	KeyBufferMaxThreshold = 64 * 1024
)

// ByteBuffer is an append-only byte accumulator used by the tuple writer.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// MustWriteString appends the bytes of s to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWriteString(s string) {
	bb.B = append(bb.B, s...)
}

// AppendByte appends a single byte to the buffer.
func (bb *ByteBuffer) AppendByte(c byte) {
	bb.B = append(bb.B, c)
}

// Truncate shortens the buffer to n bytes.
// Panics if n is negative or greater than the current length.
func (bb *ByteBuffer) Truncate(n int) {
	if n < 0 || n > len(bb.B) {
		panic("Truncate: invalid length")
	}
	bb.B = bb.B[:n]
}

// Grow ensures the buffer can hold requiredBytes more bytes without a
// further allocation. Capacity at least doubles on each reallocation, so a
// run of small appends settles into zero allocations after the first few
// elements of a key.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	if cap(bb.B)-len(bb.B) >= requiredBytes {
		return
	}

	newCap := 2 * cap(bb.B)
	if newCap < KeyBufferDefaultSize {
		newCap = KeyBufferDefaultSize
	}
	if newCap < len(bb.B)+requiredBytes {
		newCap = len(bb.B) + requiredBytes
	}

	newBuf := make([]byte, len(bb.B), newCap)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// keyPool recycles the buffers behind tuple writers. One pool serves the
// whole process: every writer encodes the same kind of payload, so there is
// nothing to configure per call site.
var keyPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(KeyBufferDefaultSize)
	},
}

// GetKeyBuffer retrieves an empty ByteBuffer from the key pool.
func GetKeyBuffer() *ByteBuffer {
	bb, _ := keyPool.Get().(*ByteBuffer)
	return bb
}

// PutKeyBuffer returns a ByteBuffer to the key pool for reuse.
// Buffers over KeyBufferMaxThreshold are dropped rather than retained.
func PutKeyBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > KeyBufferMaxThreshold {
		return
	}

	bb.Reset()
	keyPool.Put(bb)
}
