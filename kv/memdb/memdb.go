// Package memdb provides an in-memory ordered store with serializable
// optimistic transactions, implementing the kv interfaces.
//
// The engine exists so the slice/tuple/counter layers are usable and
// testable without a native database binding. It is not a storage product:
// everything lives in one process, and durability is out of scope.
//
// Concurrency model: the committed key space is a copy-on-write B-tree.
// BeginTransaction clones the tree (cheap, structural sharing) as the
// transaction's read snapshot and records the commit version it saw.
// Reads are served from the snapshot overlaid with the transaction's own
// buffered writes; non-snapshot reads are recorded as the transaction's
// conflict set. Commit takes the store lock, replays the write logs of every
// commit newer than the transaction's read version against that conflict
// set, fails with errs.ErrConflict on overlap, and otherwise applies the
// buffered writes and appends its own write log.
package memdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"
	"go.uber.org/zap"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/internal/options"
	"github.com/arloliu/ordkv/kv"
)

const (
	btreeDegree = 32

	// DefaultConflictWindow is how many recent commit logs are retained for
	// conflict checking. A transaction older than the oldest retained log
	// conflicts conservatively.
	DefaultConflictWindow = 1024
)

type item struct {
	key   []byte
	value []byte
}

func lessItem(a, b item) bool {
	return bytes.Compare(a.key, b.key) < 0
}

// commitRecord is the write log of one committed transaction.
type commitRecord struct {
	version uint64
	keys    [][]byte
	spans   []span
}

// span is a half-open key interval [begin, end).
type span struct {
	begin []byte
	end   []byte
}

func (s span) contains(key []byte) bool {
	return bytes.Compare(s.begin, key) <= 0 && bytes.Compare(key, s.end) < 0
}

func (s span) overlaps(o span) bool {
	return bytes.Compare(s.begin, o.end) < 0 && bytes.Compare(o.begin, s.end) < 0
}

// Database is the in-memory store. It is safe for concurrent use.
type Database struct {
	mu      sync.Mutex
	tree    *btree.BTreeG[item]
	version uint64
	log     []commitRecord

	window int
	logger *zap.Logger
}

// Option configures a Database.
type Option = options.Option[*Database]

// WithConflictWindow sets how many recent commit logs are retained.
func WithConflictWindow(n int) Option {
	return options.New(func(db *Database) error {
		if n < 1 {
			return errors.New("memdb: conflict window must be at least 1")
		}
		db.window = n

		return nil
	})
}

// WithLogger sets the logger for commit and conflict debug records.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(db *Database) {
		db.logger = logger
	})
}

// New creates an empty database.
func New(opts ...Option) (*Database, error) {
	db := &Database{
		tree:   btree.NewG(btreeDegree, lessItem),
		window: DefaultConflictWindow,
		logger: zap.NewNop(),
	}
	if err := options.Apply(db, opts...); err != nil {
		return nil, err
	}

	return db, nil
}

// BeginTransaction starts a transaction reading from the current committed
// state.
func (db *Database) BeginTransaction(ctx context.Context) (kv.Transaction, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	db.mu.Lock()
	snap := db.tree.Clone()
	version := db.version
	db.mu.Unlock()

	return &transaction{
		db:          db,
		snap:        snap,
		readVersion: version,
		writes:      make(map[string]writeOp),
		readKeys:    make(map[string]struct{}),
	}, nil
}

// commit validates tx's conflict set and applies its buffered writes.
func (db *Database) commit(tx *transaction) error {
	// A read-only transaction saw a consistent snapshot; it commits
	// trivially with no conflict check and no version bump.
	if len(tx.writes) == 0 && len(tx.clears) == 0 {
		return nil
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// The logs must cover every version after the transaction's read
	// version; if pruning dropped some, fail conservatively.
	if len(db.log) > 0 && tx.readVersion+1 < db.log[0].version {
		db.logger.Debug("conflict window exceeded", zap.Uint64("readVersion", tx.readVersion))
		return fmt.Errorf("%w: transaction older than conflict window", errs.ErrConflict)
	}

	for i := range db.log {
		rec := &db.log[i]
		if rec.version <= tx.readVersion {
			continue
		}
		if tx.conflictsWith(rec) {
			db.logger.Debug("transaction conflict",
				zap.Uint64("readVersion", tx.readVersion),
				zap.Uint64("committed", rec.version),
			)

			return errs.ErrConflict
		}
	}

	rec := commitRecord{version: db.version + 1}

	for _, cl := range tx.clears {
		// Collect first: mutating the tree during iteration is undefined.
		var doomed [][]byte
		db.tree.AscendRange(item{key: cl.begin}, item{key: cl.end}, func(it item) bool {
			doomed = append(doomed, it.key)
			return true
		})
		for _, k := range doomed {
			db.tree.Delete(item{key: k})
		}
		rec.spans = append(rec.spans, cl.span)
	}

	for k := range tx.writes {
		key := []byte(k)
		// Resolve against seq so a range clear issued after a point write
		// supersedes it, exactly as the transaction's own reads saw it.
		if v, _ := tx.lookupBuffered(key); v == nil {
			db.tree.Delete(item{key: key})
		} else {
			db.tree.ReplaceOrInsert(item{key: key, value: v})
		}
		rec.keys = append(rec.keys, key)
	}

	db.version++
	db.log = append(db.log, rec)
	if len(db.log) > db.window {
		db.log = db.log[len(db.log)-db.window:]
	}

	db.logger.Debug("committed",
		zap.Uint64("version", db.version),
		zap.Int("writes", len(rec.keys)),
	)

	return nil
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", errs.ErrCancelled, ctx.Err())
	default:
		return nil
	}
}
