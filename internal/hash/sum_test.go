package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum64(t *testing.T) {
	// Deterministic across calls and backing buffers.
	require.Equal(t, Sum64([]byte("key")), Sum64([]byte("key")))
	require.NotEqual(t, Sum64([]byte("key")), Sum64([]byte("yek")))

	// Empty input hashes to the xxHash64 seed-0 empty digest.
	require.Equal(t, uint64(0xEF46DB3751D8E999), Sum64(nil))
	require.Equal(t, Sum64(nil), Sum64([]byte{}))
}
