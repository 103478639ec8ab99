package tuple

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/slice"
)

// Element is any value of a supported element kind: nil, booleans, signed
// and unsigned integers of any width, strings, []byte, and slice.Slice.
type Element = any

// Element kind ranks, ordered the way the wire format orders kinds.
const (
	kindNil = iota
	kindBytes
	kindString
	kindInt
)

// normalize maps an element to its canonical in-memory form:
// nil, int64, uint64 (only for magnitudes above math.MaxInt64), string, or a
// valued slice.Slice. A Nil slice normalizes to the nil element.
func normalize(e Element) (Element, error) {
	switch v := e.(type) {
	case nil:
		return nil, nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return normUint(uint64(v)), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return normUint(v), nil
	case string:
		return v, nil
	case []byte:
		if v == nil {
			return slice.Empty, nil
		}
		return slice.FromBytes(v), nil
	case slice.Slice:
		if !v.HasValue() {
			return nil, nil
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unsupported element kind %T", errs.ErrType, e)
	}
}

func normUint(u uint64) Element {
	if u > math.MaxInt64 {
		return u
	}
	return int64(u)
}

func kindOf(e Element) int {
	switch e.(type) {
	case nil:
		return kindNil
	case slice.Slice:
		return kindBytes
	case string:
		return kindString
	default:
		return kindInt
	}
}

// compareElements orders two elements the way their encodings order:
// nil < byte strings < strings < integers, bytes and strings
// lexicographically, integers numerically.
func compareElements(a, b Element) (int, error) {
	na, err := normalize(a)
	if err != nil {
		return 0, err
	}
	nb, err := normalize(b)
	if err != nil {
		return 0, err
	}

	ka, kb := kindOf(na), kindOf(nb)
	if ka != kb {
		if ka < kb {
			return -1, nil
		}
		return 1, nil
	}

	switch ka {
	case kindNil:
		return 0, nil
	case kindBytes:
		return na.(slice.Slice).Compare(nb.(slice.Slice)), nil
	case kindString:
		return strings.Compare(na.(string), nb.(string)), nil
	default:
		return compareInts(na, nb), nil
	}
}

// compareInts orders two normalized integers, where each is either an int64
// or a uint64 above the signed range.
func compareInts(a, b Element) int {
	av, aBig := a.(uint64)
	bv, bBig := b.(uint64)
	switch {
	case aBig && bBig:
		return cmpOrdered(av, bv)
	case aBig:
		return 1
	case bBig:
		return -1
	default:
		return cmpOrdered(a.(int64), b.(int64))
	}
}

func cmpOrdered[T int64 | uint64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// decodeElement materializes exactly one element encoding.
// The input must span the element precisely, tag through terminator.
func decodeElement(enc []byte) (Element, error) {
	tag := enc[0]
	switch {
	case tag == tagNil:
		return nil, nil
	case tag == tagBytes:
		return slice.FromBytes(unescapeContent(enc[1 : len(enc)-1])), nil
	case tag == tagString:
		return string(unescapeContent(enc[1 : len(enc)-1])), nil
	default:
		return decodeInt(tag, enc[1:])
	}
}

// unescapeContent collapses every 0x00 0xFF pair back to a single 0x00.
// Content with no zero bytes is returned as-is without copying.
func unescapeContent(content []byte) []byte {
	i := bytes.IndexByte(content, 0x00)
	if i < 0 {
		return content
	}

	out := make([]byte, 0, len(content)-1)
	for i >= 0 {
		out = append(out, content[:i+1]...)
		content = content[i+2:] // skip the 0xFF of the escape pair
		i = bytes.IndexByte(content, 0x00)
	}

	return append(out, content...)
}

// decodeInt materializes an integer payload. Positive magnitudes above the
// signed 64-bit range decode to uint64; negative magnitudes below it are an
// overflow error. Non-minimal payloads are accepted.
func decodeInt(tag byte, payload []byte) (Element, error) {
	width := int(tag) - tagIntZero
	if width == 0 {
		return int64(0), nil
	}

	if width > 0 {
		var u uint64
		for _, c := range payload {
			u = u<<8 | uint64(c)
		}

		return normUint(u), nil
	}

	// Negative payload: the stored bytes are the one's complement of the
	// magnitude, so complement them back.
	var p uint64
	for _, c := range payload {
		p = p<<8 | uint64(c)
	}
	mask := uint64(math.MaxUint64)
	if n := -width; n < 8 {
		mask = uint64(1)<<(8*n) - 1
	}
	u := mask - p

	switch {
	case u > 1<<63:
		return nil, fmt.Errorf("%w: negative magnitude %d exceeds 64-bit signed range", errs.ErrOverflow, u)
	case u == 1<<63:
		return int64(math.MinInt64), nil
	default:
		return -int64(u), nil
	}
}

// As coerces a decoded element to the requested type, applying numeric
// widening and overflow-checked narrowing. Supported targets: the signed and
// unsigned integer types, bool, string, []byte, slice.Slice, and Element.
func As[T any](e Element) (T, error) {
	var zero T

	n, err := normalize(e)
	if err != nil {
		return zero, err
	}

	switch p := any(&zero).(type) {
	case *Element:
		*p = n
	case *int64:
		v, err := asInt64(n)
		if err != nil {
			return zero, err
		}
		*p = v
	case *int:
		v, err := asSigned(n, math.MinInt, math.MaxInt)
		if err != nil {
			return zero, err
		}
		*p = int(v)
	case *int32:
		v, err := asSigned(n, math.MinInt32, math.MaxInt32)
		if err != nil {
			return zero, err
		}
		*p = int32(v)
	case *int16:
		v, err := asSigned(n, math.MinInt16, math.MaxInt16)
		if err != nil {
			return zero, err
		}
		*p = int16(v)
	case *int8:
		v, err := asSigned(n, math.MinInt8, math.MaxInt8)
		if err != nil {
			return zero, err
		}
		*p = int8(v)
	case *uint64:
		v, err := asUint64(n)
		if err != nil {
			return zero, err
		}
		*p = v
	case *uint32:
		v, err := asUnsigned(n, math.MaxUint32)
		if err != nil {
			return zero, err
		}
		*p = uint32(v)
	case *uint16:
		v, err := asUnsigned(n, math.MaxUint16)
		if err != nil {
			return zero, err
		}
		*p = uint16(v)
	case *uint8:
		v, err := asUnsigned(n, math.MaxUint8)
		if err != nil {
			return zero, err
		}
		*p = uint8(v)
	case *uint:
		v, err := asUnsigned(n, math.MaxUint)
		if err != nil {
			return zero, err
		}
		*p = uint(v)
	case *bool:
		v, err := asInt64(n)
		if err != nil {
			return zero, err
		}
		*p = v != 0
	case *string:
		s, ok := n.(string)
		if !ok {
			return zero, fmt.Errorf("%w: cannot decode %T as string", errs.ErrType, n)
		}
		*p = s
	case *slice.Slice:
		s, err := asSlice(n)
		if err != nil {
			return zero, err
		}
		*p = s
	case *[]byte:
		s, err := asSlice(n)
		if err != nil {
			return zero, err
		}
		*p = s.Bytes()
	default:
		return zero, fmt.Errorf("%w: unsupported target type %T", errs.ErrType, zero)
	}

	return zero, nil
}

func asInt64(n Element) (int64, error) {
	switch v := n.(type) {
	case int64:
		return v, nil
	case uint64:
		return 0, fmt.Errorf("%w: %d exceeds 64-bit signed range", errs.ErrOverflow, v)
	default:
		return 0, fmt.Errorf("%w: cannot decode %T as integer", errs.ErrType, n)
	}
}

func asSigned(n Element, minValue, maxValue int64) (int64, error) {
	v, err := asInt64(n)
	if err != nil {
		return 0, err
	}
	if v < minValue || v > maxValue {
		return 0, fmt.Errorf("%w: %d outside [%d, %d]", errs.ErrOverflow, v, minValue, maxValue)
	}

	return v, nil
}

func asUint64(n Element) (uint64, error) {
	switch v := n.(type) {
	case uint64:
		return v, nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: %d is negative", errs.ErrOverflow, v)
		}
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot decode %T as integer", errs.ErrType, n)
	}
}

func asUnsigned(n Element, maxValue uint64) (uint64, error) {
	v, err := asUint64(n)
	if err != nil {
		return 0, err
	}
	if v > maxValue {
		return 0, fmt.Errorf("%w: %d exceeds %d", errs.ErrOverflow, v, maxValue)
	}

	return v, nil
}

func asSlice(n Element) (slice.Slice, error) {
	s, ok := n.(slice.Slice)
	if !ok {
		return slice.Nil, fmt.Errorf("%w: cannot decode %T as bytes", errs.ErrType, n)
	}

	return s, nil
}
