package kv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ordkv/slice"
	"github.com/arloliu/ordkv/tuple"
)

func TestSubspace_Pack(t *testing.T) {
	sub := NewSubspace("counters")

	key := sub.Pack("hits")
	require.Equal(t, tuple.MustPack("counters", "hits").Bytes(), key.Bytes())

	// PackSlice packs one byte-string element.
	id := slice.FromBytes([]byte{0x01, 0x02})
	require.Equal(t, tuple.MustPack("counters", []byte{0x01, 0x02}).Bytes(), sub.PackSlice(id).Bytes())
}

func TestSubspace_Sub(t *testing.T) {
	root := NewSubspace("app")
	nested := root.Sub("metrics", int64(1))

	require.Equal(t, tuple.MustPack("app", "metrics", int64(1)).Bytes(), nested.Prefix().Bytes())
	require.True(t, root.Contains(nested.Prefix()))
}

func TestSubspace_UnpackAndContains(t *testing.T) {
	sub := NewSubspace("s")
	key := sub.Pack(int64(7), "x")

	require.True(t, sub.Contains(key))
	require.False(t, sub.Contains(tuple.MustPack("t", int64(7))))
	require.False(t, sub.Contains(slice.Nil))

	tup, err := sub.Unpack(key)
	require.NoError(t, err)
	require.True(t, tup.Equal(tuple.Tuple{int64(7), "x"}))

	_, err = sub.Unpack(tuple.MustPack("other"))
	require.Error(t, err)
}

func TestSubspace_ToRange(t *testing.T) {
	sub := NewSubspace("r")
	r := sub.ToRange()

	require.True(t, r.Begin.Equal(sub.Prefix()))
	require.Positive(t, r.End.Compare(r.Begin))

	// Every packed key falls inside the range.
	for _, elems := range []tuple.Tuple{{int64(0)}, {"z"}, {[]byte{0xFF}}, {nil}} {
		key := sub.Pack(elems...)
		require.True(t, key.Compare(r.Begin) >= 0, "key %s", key.ToHex())
		require.Negative(t, key.Compare(r.End), "key %s", key.ToHex())
	}

	// Raw subspaces with no successor cannot form a range.
	require.Panics(t, func() { SubspaceAt(slice.FromBytes([]byte{0xFF})).ToRange() })
}
