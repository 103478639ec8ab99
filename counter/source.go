package counter

import (
	"encoding/binary"
	"math/rand/v2"
)

// ShardIDLen is the length of a shard identifier in bytes. At 20 random
// bytes, id collisions are negligible, and a collision merely overwrites one
// shard with a fresh delta, never corrupting the key space.
const ShardIDLen = 20

// Source is the randomness strategy behind shard placement and the coalesce
// trigger. It is pluggable so deployments can choose the generator and tests
// can make shard placement deterministic.
//
// Implementations must be safe for concurrent use: Add draws from the source
// on the caller's goroutine, Coalesce on a background one.
type Source interface {
	// ShardID returns a fresh random shard identifier.
	ShardID() [ShardIDLen]byte

	// Coin reports true with probability p, for p in [0, 1].
	Coin(p float64) bool
}

// randSource is the default Source. It draws from math/rand/v2's top-level
// generators, which maintain lock-free per-thread state, keeping the Add hot
// path free of a shared generator mutex.
type randSource struct{}

var _ Source = randSource{}

func (randSource) ShardID() [ShardIDLen]byte {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], rand.Uint64())
	binary.LittleEndian.PutUint64(buf[8:], rand.Uint64())
	binary.LittleEndian.PutUint64(buf[16:], rand.Uint64())

	var id [ShardIDLen]byte
	copy(id[:], buf[:ShardIDLen])

	return id
}

func (randSource) Coin(p float64) bool {
	return rand.Float64() < p
}
