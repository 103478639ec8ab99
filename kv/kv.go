// Package kv defines the database surface the ordkv layers are written
// against: serializable transactions over an ordered key space, subspaces
// that confine a layer's keys under a tuple-packed prefix, and retry helpers
// for transient transaction failures.
//
// The interfaces are intentionally small so that both a native client
// binding and the in-process memdb engine can satisfy them. Every blocking
// operation takes a context.Context; cancellation takes effect at the next
// database round-trip and surfaces as errs.ErrCancelled.
package kv

import (
	"context"

	"github.com/arloliu/ordkv/slice"
)

// KeyValue is one key and its value as returned by range reads.
type KeyValue struct {
	Key   slice.Slice
	Value slice.Slice
}

// KeyRange is the half-open key interval [Begin, End).
type KeyRange struct {
	Begin slice.Slice
	End   slice.Slice
}

// RangeOptions controls a range read. A Limit of zero or less means
// unlimited; Reverse walks the range from End toward Begin.
type RangeOptions struct {
	Limit   int
	Reverse bool
}

// ReadTransaction is the read-only transaction surface.
//
// Get returns slice.Nil (no error) for a missing key. Snapshot returns a
// view whose reads do not enter the transaction's conflict ranges: snapshot
// reads see the same data but cannot cause the transaction to conflict with
// concurrent writers.
type ReadTransaction interface {
	Get(ctx context.Context, key slice.Slice) (slice.Slice, error)
	GetRange(ctx context.Context, r KeyRange, opts RangeOptions) ([]KeyValue, error)
	Snapshot() ReadTransaction
}

// Transaction is a read-write serializable transaction. Writes are buffered
// locally, visible to the transaction's own reads, and applied atomically by
// Commit. A transaction that loses its conflict check fails with
// errs.ErrConflict and may be retried by the caller; Retryable does this
// automatically.
//
// After Commit or Cancel the transaction is done and every further
// operation fails with errs.ErrTransactionDone.
type Transaction interface {
	ReadTransaction

	Set(key, value slice.Slice)
	Clear(key slice.Slice)
	ClearRange(r KeyRange)
	Commit(ctx context.Context) error
	Cancel()
}

// Database hands out transactions.
type Database interface {
	BeginTransaction(ctx context.Context) (Transaction, error)
}
