package slice

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlice_Escape(t *testing.T) {
	require.Equal(t, "", Nil.Escape())
	require.Equal(t, "", Empty.Escape())
	require.Equal(t, "hello world", FromString("hello world").Escape())

	// Bytes below 0x20, at or above 0x7F, and '<' are escaped as <HH>.
	s := FromBytes([]byte{'A', 0x00, '<'})
	require.Equal(t, "A<00><3C>", s.Escape())

	require.Equal(t, "<7F><80><FF>", FromBytes([]byte{0x7F, 0x80, 0xFF}).Escape())
	require.Equal(t, "tab<09>end", FromBytes([]byte("tab\tend")).Escape())

	// '>' is not special on output.
	require.Equal(t, "a>b", FromString("a>b").Escape())
}

func TestSlice_Unescape(t *testing.T) {
	s, err := Unescape("A<00><3C>")
	require.NoError(t, err)
	require.Equal(t, []byte{'A', 0x00, '<'}, s.Bytes())

	// Lowercase hex digits are accepted on input.
	s, err = Unescape("<ff>")
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF}, s.Bytes())

	s, err = Unescape("")
	require.NoError(t, err)
	require.True(t, s.Equal(Empty))

	for _, bad := range []string{"<", "<0", "<00", "<0G>", "<zz>", "a<1>b"} {
		_, err = Unescape(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestSlice_EscapeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for range 200 {
		b := make([]byte, rng.IntN(32))
		for i := range b {
			b[i] = byte(rng.IntN(256))
		}
		orig := FromBytes(b)

		back, err := Unescape(orig.Escape())
		require.NoError(t, err)
		require.True(t, orig.Equal(back), "bytes %x", b)
	}
}

func TestSlice_HexRoundTrip(t *testing.T) {
	s := FromBytes([]byte{0xDE, 0xAD, 0x00, 0xBE, 0xEF})

	// Output is lowercase.
	require.Equal(t, "dead00beef", s.ToHex())

	back, err := FromHex(s.ToHex())
	require.NoError(t, err)
	require.True(t, s.Equal(back))
}

func TestSlice_Base64RoundTrip(t *testing.T) {
	s := FromBytes([]byte{0x00, 0x01, 0xFE, 0xFF})
	back, err := FromBase64(s.ToBase64())
	require.NoError(t, err)
	require.True(t, s.Equal(back))
}

func TestSlice_String(t *testing.T) {
	require.Equal(t, "<nil>", Nil.String())
	require.Equal(t, "", Empty.String())
	require.Equal(t, "key<00>suffix", FromBytes([]byte("key\x00suffix")).String())
}
