// Package ordkv is the data-plane core of a client library for an ordered,
// transactional key/value database.
//
// Every key the database sees is built from two primitives: an immutable,
// zero-copy byte Slice, and an order-preserving tuple codec whose packed
// bytes sort exactly the way the decoded tuples do. On top of them sit
// subspaces (tuple-packed key prefixes), an abstract transaction surface,
// and a sharded high-contention counter that exercises the whole stack.
//
// # Core Packages
//
//   - slice: immutable byte windows with value equality, total ordering,
//     and hex/escape/base64 renderings.
//   - tuple: pack/unpack of typed element sequences, lazy SlicedTuple views,
//     typed access with numeric coercion.
//   - kv: the database interfaces, subspaces, and retrying helpers; kv/memdb
//     is an in-process serializable engine for tests and local development.
//   - counter: a contention-free sharded counter with probabilistic
//     background coalescing.
//
// # Basic Usage
//
// Packing a key and reading it back:
//
//	key := ordkv.Pack("inventory", int64(42))
//	tup, _ := ordkv.Unpack(key)
//	id, _ := tuple.GetAs[int64](tup, 1)
//
// Keys pack in tuple order, so ranges over encoded keys walk tuples in
// their natural order:
//
//	sub := kv.NewSubspace("inventory")
//	r := sub.ToRange() // every key under the "inventory" prefix
//
// This package provides thin convenience wrappers over the slice and tuple
// packages for the most common operations; use those packages directly for
// fine-grained control.
package ordkv

import (
	"github.com/arloliu/ordkv/slice"
	"github.com/arloliu/ordkv/tuple"
)

// Pack encodes the elements into an order-preserving key.
// Panics on unsupported element kinds; see tuple.Pack for the error-returning
// form.
func Pack(elems ...tuple.Element) slice.Slice {
	return tuple.MustPack(elems...)
}

// Unpack decodes a packed key into its elements.
func Unpack(key slice.Slice) (tuple.Tuple, error) {
	return tuple.Unpack(key)
}

// FromBytes wraps a byte slice in a Slice view without copying.
func FromBytes(b []byte) slice.Slice {
	return slice.FromBytes(b)
}

// Escape renders bytes for logs: printable ASCII other than '<' stays
// literal, everything else becomes <HH>.
func Escape(b []byte) string {
	return slice.FromBytes(b).Escape()
}
