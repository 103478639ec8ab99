package slice

import (
	"bytes"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlice_Equal(t *testing.T) {
	require.True(t, Nil.Equal(Nil))
	require.True(t, Empty.Equal(Empty))

	// Nil and Empty both hold zero bytes but are not equal.
	require.False(t, Nil.Equal(Empty))
	require.False(t, Empty.Equal(Nil))

	a := FromString("abc")
	require.True(t, a.Equal(FromString("abc")))
	require.False(t, a.Equal(FromString("abd")))
	require.False(t, a.Equal(FromString("ab")))
	require.False(t, a.Equal(Nil))
}

func TestSlice_Compare(t *testing.T) {
	require.Equal(t, 0, Nil.Compare(Nil))
	require.Equal(t, 0, Empty.Compare(Empty))

	// Nil orders before every valued slice, Empty included.
	require.Negative(t, Nil.Compare(Empty))
	require.Positive(t, Empty.Compare(Nil))
	require.Negative(t, Nil.Compare(FromString("a")))

	require.Negative(t, FromString("a").Compare(FromString("b")))
	require.Negative(t, FromString("a").Compare(FromString("aa")))
	require.Positive(t, FromBytes([]byte{0xFF}).Compare(FromBytes([]byte{0x00, 0xFF})))
	require.Equal(t, 0, FromString("abc").Compare(FromString("abc")))
}

func TestSlice_Compare_AgreesWithBytewiseOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	samples := make([]Slice, 0, 64)
	for range 64 {
		b := make([]byte, rng.IntN(6))
		for i := range b {
			b[i] = byte(rng.IntN(256))
		}
		samples = append(samples, FromBytes(b))
	}

	for _, a := range samples {
		for _, b := range samples {
			want := bytes.Compare(a.Bytes(), b.Bytes())
			require.Equal(t, sign(want), sign(a.Compare(b)), "%s vs %s", a.ToHex(), b.ToHex())

			// Antisymmetry.
			require.Equal(t, -sign(b.Compare(a)), sign(a.Compare(b)))
		}
	}
}

func TestSlice_Compare_Transitive(t *testing.T) {
	s := []Slice{
		FromBytes([]byte{0x00}),
		FromBytes([]byte{0x00, 0x01}),
		FromBytes([]byte{0x7F}),
		FromBytes([]byte{0xFE, 0xFF}),
		FromBytes([]byte{0xFF}),
	}
	sorted := make([]Slice, len(s))
	copy(sorted, s)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Compare(sorted[j]) < 0 })

	for i := 0; i+1 < len(sorted); i++ {
		require.LessOrEqual(t, sorted[i].Compare(sorted[i+1]), 0)
	}
}

func TestSlice_Hash(t *testing.T) {
	require.Equal(t, uint32(0), Nil.Hash())

	// Empty hashes to the FNV-1a offset basis, distinct from Nil.
	require.Equal(t, uint32(0x811C9DC5), Empty.Hash())

	// FNV-1a("a") is a known vector.
	require.Equal(t, uint32(0xE40C292C), FromString("a").Hash())
	require.Equal(t, uint32(0xBF9CF968), FromString("foobar").Hash())

	// Equal slices hash equal regardless of backing buffer.
	a := FromString("hello")
	b := CopyBytes([]byte("hello"))
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
