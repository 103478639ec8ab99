// Package errs defines the sentinel errors shared across ordkv packages.
//
// Errors are classified by category sentinel (ErrCodec, ErrType, ...) and
// matched with errors.Is. Detail sites wrap a sentinel with fmt.Errorf("%w: ...")
// so callers can branch on the category without parsing messages.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrCodec is the category for malformed tuple bytes: unknown tags,
	// truncated payloads, unterminated strings.
	ErrCodec = errors.New("malformed tuple encoding")

	// ErrUnknownTag reports a type tag outside the supported set.
	ErrUnknownTag = fmt.Errorf("%w: unknown type tag", ErrCodec)

	// ErrTruncated reports an element whose payload extends past the end of
	// the encoded bytes.
	ErrTruncated = fmt.Errorf("%w: truncated element", ErrCodec)

	// ErrUnterminatedString reports a byte-string or unicode-string element
	// with no unescaped 0x00 terminator.
	ErrUnterminatedString = fmt.Errorf("%w: unterminated string element", ErrCodec)

	// ErrType reports a decode or coercion to an incompatible type.
	ErrType = errors.New("incompatible element type")

	// ErrIndexRange reports an element index outside [-count, count).
	ErrIndexRange = errors.New("index out of range")

	// ErrOverflow reports 64-bit integer arithmetic or narrowing overflow.
	ErrOverflow = errors.New("integer overflow")

	// ErrCancelled reports an operation abandoned at a suspension point
	// because its context was cancelled. It is a distinguished outcome, not
	// a failure: background work treats it as a no-op.
	ErrCancelled = errors.New("operation cancelled")

	// ErrConflict reports a serializable transaction that lost a conflict
	// check at commit. It is the only retryable database error.
	ErrConflict = errors.New("transaction conflict")

	// ErrTransactionDone reports use of a transaction after Commit or Cancel.
	ErrTransactionDone = errors.New("transaction already committed or cancelled")
)
