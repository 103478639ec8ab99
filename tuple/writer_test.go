package tuple

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func packBytes(t *testing.T, elems ...Element) []byte {
	t.Helper()
	s, err := Pack(elems...)
	require.NoError(t, err)

	return s.Bytes()
}

func TestWriter_String(t *testing.T) {
	require.Equal(t,
		[]byte{0x02, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd', 0x00},
		packBytes(t, "hello world"))

	// Empty string is just tag and terminator.
	require.Equal(t, []byte{0x02, 0x00}, packBytes(t, ""))
}

func TestWriter_StringAndInt(t *testing.T) {
	require.Equal(t,
		[]byte{0x02, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd', 0x00, 0x15, 0x7B},
		packBytes(t, "hello world", 123))
}

func TestWriter_BoolPacksAsInteger(t *testing.T) {
	require.Equal(t,
		[]byte{0x02, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd', 0x00, 0x15, 0x7B, 0x14},
		packBytes(t, "hello world", 123, false))

	require.Equal(t, []byte{0x15, 0x01}, packBytes(t, true))
}

func TestWriter_IntBoundaries(t *testing.T) {
	require.Equal(t, []byte{0x14}, packBytes(t, 0))
	require.Equal(t, []byte{0x15, 0x01}, packBytes(t, 1))
	require.Equal(t, []byte{0x15, 0xFF}, packBytes(t, 255))
	require.Equal(t, []byte{0x16, 0x01, 0x00}, packBytes(t, 256))

	// Payloads are big-endian magnitudes of minimal width.
	require.Equal(t, []byte{0x18, 0x7F, 0xFF, 0xFF, 0xFF}, packBytes(t, math.MaxInt32))
	require.Equal(t, []byte{0x1C, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, packBytes(t, int64(math.MaxInt64)))

	// Full eight-byte unsigned magnitude.
	require.Equal(t,
		[]byte{0x1C, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
		packBytes(t, uint64(math.MaxUint64)))
}

func TestWriter_NegativeInts(t *testing.T) {
	// One's complement of the magnitude on the minimal payload width.
	require.Equal(t, []byte{0x13, 0xFE}, packBytes(t, -1))
	require.Equal(t, []byte{0x13, 0x00}, packBytes(t, -255))

	// |v| = 256 needs two bytes, so the tag drops to 0x12.
	require.Equal(t, []byte{0x12, 0xFE, 0xFF}, packBytes(t, -256))

	require.Equal(t, []byte{0x10, 0x7F, 0xFF, 0xFF, 0xFF}, packBytes(t, math.MinInt32))
	require.Equal(t, []byte{0x0C, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}, packBytes(t, int64(math.MinInt64)))
}

func TestWriter_BytesEscapesZeroBytes(t *testing.T) {
	require.Equal(t,
		[]byte{
			0x02, 'h', 'e', 'l', 'l', 'o', ' ', 'w', 'o', 'r', 'l', 'd', 0x00,
			0x15, 0x7B,
			0x14,
			0x01, 0x7B, 0x01, 0x42, 0x00, 0xFF, 0x2A, 0x00,
		},
		packBytes(t, "hello world", 123, false, []byte{0x7B, 0x01, 0x42, 0x00, 0x2A}))

	// Leading, trailing and consecutive zeros all escape.
	require.Equal(t,
		[]byte{0x01, 0x00, 0xFF, 0x00, 0xFF, 0x61, 0x00, 0xFF, 0x00},
		packBytes(t, []byte{0x00, 0x00, 0x61, 0x00}))
}

func TestWriter_StringWithZeroBytes(t *testing.T) {
	require.Equal(t,
		[]byte{0x02, 'a', 0x00, 0xFF, 'b', 0x00},
		packBytes(t, "a\x00b"))
}

func TestWriter_Nil(t *testing.T) {
	require.Equal(t, []byte{0x00}, packBytes(t, nil))
	require.Equal(t, []byte{0x00, 0x15, 0x01}, packBytes(t, nil, 1))
}

func TestWriter_Accounting(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	require.Equal(t, 0, w.Count())
	require.Equal(t, 0, w.Size())

	w.WriteString("ab")
	w.WriteInt(-7)
	require.Equal(t, 2, w.Count())
	require.Equal(t, 4+2, w.Size())

	first := w.ToSlice()
	w.Reset()
	require.Equal(t, 0, w.Count())
	require.Equal(t, 0, w.Size())

	// ToSlice returned an independent copy, unaffected by the reset.
	require.Equal(t, []byte{0x02, 'a', 'b', 0x00, 0x13, 0xF8}, first.Bytes())
}

func TestWriter_UnsupportedElement(t *testing.T) {
	w := NewWriter()
	defer w.Release()

	err := w.WriteElement(3.14)
	require.Error(t, err)
	requireIsType(t, err)

	err = w.WriteElement(struct{}{})
	require.Error(t, err)
}
