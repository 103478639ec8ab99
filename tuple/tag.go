package tuple

import (
	"bytes"
	"fmt"

	"github.com/arloliu/ordkv/errs"
)

// Wire-format type tags. The numeric tag values double as the sort rank of
// the element kinds, which is what makes the encoding order-preserving
// across kinds.
const (
	tagNil    = 0x00
	tagBytes  = 0x01
	tagString = 0x02

	// Integer tags encode sign and payload width in one byte:
	// tagIntZero-n for an n-byte negative magnitude, tagIntZero+n for an
	// n-byte positive magnitude.
	tagNegIntMin = 0x0C // eight-byte negative magnitude
	tagIntZero   = 0x14
	tagPosIntMax = 0x1C // eight-byte positive magnitude
)

// elementEnd scans one element encoding starting at off and returns the
// offset one past its end. It validates framing (tag known, payload present,
// string terminated) but does not decode payloads.
func elementEnd(data []byte, off int) (int, error) {
	tag := data[off]
	switch {
	case tag == tagNil:
		return off + 1, nil

	case tag == tagBytes || tag == tagString:
		p := off + 1
		for {
			i := bytes.IndexByte(data[p:], 0x00)
			if i < 0 {
				return 0, fmt.Errorf("%w at offset %d", errs.ErrUnterminatedString, off)
			}
			p += i + 1
			// An 0x00 followed by 0xFF is an escaped zero byte, not the
			// terminator.
			if p < len(data) && data[p] == 0xFF {
				p++
				continue
			}

			return p, nil
		}

	case tag >= tagNegIntMin && tag <= tagPosIntMax:
		width := int(tag) - tagIntZero
		if width < 0 {
			width = -width
		}
		end := off + 1 + width
		if end > len(data) {
			return 0, fmt.Errorf("%w at offset %d", errs.ErrTruncated, off)
		}

		return end, nil

	default:
		return 0, fmt.Errorf("%w 0x%02X at offset %d", errs.ErrUnknownTag, tag, off)
	}
}
