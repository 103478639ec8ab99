package memdb

import (
	"context"
	"sort"
	"sync"

	"github.com/google/btree"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/kv"
	"github.com/arloliu/ordkv/slice"
)

// writeOp is one buffered mutation. seq orders point writes against range
// clears so that a Set after a ClearRange resurrects the key.
type writeOp struct {
	value []byte
	clear bool
	seq   int
}

// seqSpan is a buffered range clear.
type seqSpan struct {
	span
	seq int
}

type transaction struct {
	db          *Database
	snap        *btree.BTreeG[item]
	readVersion uint64

	mu      sync.Mutex
	nextSeq int
	writes  map[string]writeOp
	clears  []seqSpan

	readKeys  map[string]struct{}
	readSpans []span

	done bool
}

var _ kv.Transaction = (*transaction)(nil)

func (tx *transaction) Get(ctx context.Context, key slice.Slice) (slice.Slice, error) {
	return tx.get(ctx, key, true)
}

func (tx *transaction) GetRange(ctx context.Context, r kv.KeyRange, opts kv.RangeOptions) ([]kv.KeyValue, error) {
	return tx.getRange(ctx, r, opts, true)
}

// Snapshot returns a view whose reads bypass conflict tracking.
// Snapshot reads still see the transaction's own buffered writes.
func (tx *transaction) Snapshot() kv.ReadTransaction {
	return snapshotView{tx}
}

func (tx *transaction) Set(key, value slice.Slice) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return
	}

	// A Nil value stores as empty: the buffered-write overlay reserves nil
	// for cleared keys.
	v := value.Memoize().Bytes()
	if v == nil {
		v = []byte{}
	}
	tx.writes[string(key.Bytes())] = writeOp{value: v, seq: tx.seq()}
}

func (tx *transaction) Clear(key slice.Slice) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return
	}

	tx.writes[string(key.Bytes())] = writeOp{clear: true, seq: tx.seq()}
}

func (tx *transaction) ClearRange(r kv.KeyRange) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return
	}

	tx.clears = append(tx.clears, seqSpan{
		span: span{begin: r.Begin.Memoize().Bytes(), end: r.End.Memoize().Bytes()},
		seq:  tx.seq(),
	})
}

func (tx *transaction) Commit(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return errs.ErrTransactionDone
	}
	tx.done = true

	return tx.db.commit(tx)
}

func (tx *transaction) Cancel() {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.done = true
}

// seq must be called with tx.mu held.
func (tx *transaction) seq() int {
	tx.nextSeq++
	return tx.nextSeq
}

func (tx *transaction) get(ctx context.Context, key slice.Slice, recordRead bool) (slice.Slice, error) {
	if err := ctxErr(ctx); err != nil {
		return slice.Nil, err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return slice.Nil, errs.ErrTransactionDone
	}

	k := key.Bytes()
	if recordRead {
		tx.readKeys[string(k)] = struct{}{}
	}

	if v, overridden := tx.lookupBuffered(k); overridden {
		if v == nil {
			return slice.Nil, nil
		}
		return slice.FromBytes(v), nil
	}

	it, ok := tx.snap.Get(item{key: k})
	if !ok {
		return slice.Nil, nil
	}

	return slice.FromBytes(it.value), nil
}

// lookupBuffered resolves key against the transaction's own writes.
// The second result reports whether the buffered state overrides the
// snapshot; a nil value with true means the key is cleared.
func (tx *transaction) lookupBuffered(key []byte) ([]byte, bool) {
	clearSeq := 0
	for _, cl := range tx.clears {
		if cl.contains(key) && cl.seq > clearSeq {
			clearSeq = cl.seq
		}
	}

	if op, ok := tx.writes[string(key)]; ok && op.seq > clearSeq {
		if op.clear {
			return nil, true
		}
		return op.value, true
	}

	if clearSeq > 0 {
		return nil, true
	}

	return nil, false
}

func (tx *transaction) getRange(ctx context.Context, r kv.KeyRange, opts kv.RangeOptions, recordRead bool) ([]kv.KeyValue, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil, errs.ErrTransactionDone
	}

	begin, end := r.Begin.Bytes(), r.End.Bytes()
	if recordRead {
		tx.readSpans = append(tx.readSpans, span{begin: begin, end: end})
	}

	// Merge the snapshot with the transaction's buffered writes.
	merged := make(map[string][]byte)
	tx.snap.AscendRange(item{key: begin}, item{key: end}, func(it item) bool {
		merged[string(it.key)] = it.value
		return true
	})
	probe := span{begin: begin, end: end}
	for k := range merged {
		if v, overridden := tx.lookupBuffered([]byte(k)); overridden {
			if v == nil {
				delete(merged, k)
			} else {
				merged[k] = v
			}
		}
	}
	for k := range tx.writes {
		if !probe.contains([]byte(k)) {
			continue
		}
		if v, overridden := tx.lookupBuffered([]byte(k)); overridden && v != nil {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if opts.Reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}
	if opts.Limit > 0 && len(keys) > opts.Limit {
		keys = keys[:opts.Limit]
	}

	out := make([]kv.KeyValue, 0, len(keys))
	for _, k := range keys {
		out = append(out, kv.KeyValue{
			Key:   slice.CopyBytes([]byte(k)),
			Value: slice.FromBytes(merged[k]),
		})
	}

	return out, nil
}

// conflictsWith reports whether rec's writes intersect the transaction's
// recorded reads. Called with the database lock held, after the transaction
// is done, so the conflict set is stable.
func (tx *transaction) conflictsWith(rec *commitRecord) bool {
	for _, key := range rec.keys {
		if _, ok := tx.readKeys[string(key)]; ok {
			return true
		}
		for _, rs := range tx.readSpans {
			if rs.contains(key) {
				return true
			}
		}
	}

	for _, sp := range rec.spans {
		for k := range tx.readKeys {
			if sp.contains([]byte(k)) {
				return true
			}
		}
		for _, rs := range tx.readSpans {
			if sp.overlaps(rs) {
				return true
			}
		}
	}

	return false
}

// snapshotView adapts a transaction to the snapshot read surface: same data,
// no conflict recording.
type snapshotView struct {
	tx *transaction
}

var _ kv.ReadTransaction = snapshotView{}

func (s snapshotView) Get(ctx context.Context, key slice.Slice) (slice.Slice, error) {
	return s.tx.get(ctx, key, false)
}

func (s snapshotView) GetRange(ctx context.Context, r kv.KeyRange, opts kv.RangeOptions) ([]kv.KeyValue, error) {
	return s.tx.getRange(ctx, r, opts, false)
}

func (s snapshotView) Snapshot() kv.ReadTransaction {
	return s
}
