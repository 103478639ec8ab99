// Package tuple implements the order-preserving binary codec that maps
// ordered sequences of typed elements to byte strings suitable for use as
// database keys.
//
// The defining property of the encoding is that lexicographic unsigned-byte
// comparison of two packed tuples agrees with the natural element-wise
// ordering of the tuples themselves, so a range scan over encoded keys walks
// tuples in tuple order. Each element is emitted as a type tag byte followed
// by a payload:
//
//   - 0x00: nil, no payload.
//   - 0x01: byte string, 0x00-escaped, 0x00-terminated.
//   - 0x02: unicode string, UTF-8 with the same escape and terminator.
//   - 0x0C..0x13: negative integers of 8..1 payload bytes, stored as the
//     one's complement of the magnitude.
//   - 0x14: integer zero, no payload.
//   - 0x15..0x1C: positive integers of 1..8 payload bytes, big-endian.
//
// Integers use the shortest payload that represents the magnitude, and
// Pack always emits this canonical form. The decoder is permissive: it
// accepts non-minimal integer payloads and decodes them to the same value.
//
// Booleans have no tag of their own in this dialect; they pack as the
// integers 0 and 1 and decode back as integers.
//
// Two decoding surfaces exist. Unpack eagerly materializes a Tuple of
// decoded elements. FromSlice wraps the encoded bytes in a SlicedTuple that
// indexes element boundaries on first use and decodes payloads only on
// demand, which keeps range-scan processing cheap when most elements are
// never looked at.
package tuple
