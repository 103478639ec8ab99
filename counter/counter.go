// Package counter implements a sharded integer counter for workloads where
// many writers increment concurrently.
//
// A plain counter key serializes every increment through one conflict range.
// This counter instead appends a shard — a randomly keyed entry holding one
// signed delta — on every Add, so increments land at effectively unique keys
// and never conflict with each other. Reading sums the shards in the
// counter's subspace. To bound storage and read cost, Add occasionally kicks
// off a background coalesce that collapses a window of shards into one.
//
// Coalescing is fire-and-forget: it runs on its own transaction, at most one
// in flight per counter, and swallows failures after logging them. A lost
// coalesce costs read performance, never correctness.
package counter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/internal/options"
	"github.com/arloliu/ordkv/kv"
	"github.com/arloliu/ordkv/slice"
	"github.com/arloliu/ordkv/tuple"
)

const (
	// DefaultSampleSize is how many shards one coalesce pass collapses.
	DefaultSampleSize = 20

	// DefaultCoalesceProbability is the chance that one Add triggers a
	// background coalesce.
	DefaultCoalesceProbability = 0.1
)

// Counter is a sharded counter confined to one subspace. All state lives in
// the database; a Counter value is safe for concurrent use.
type Counter struct {
	db       kv.Database
	subspace kv.Subspace

	sampleSize   int
	coalesceProb float64
	source       Source
	logger       *zap.Logger

	// backgroundCtx cancels in-flight coalesces on shutdown.
	backgroundCtx context.Context

	// coalescing admits at most one background coalesce at a time;
	// triggers while one is in flight are skipped.
	coalescing atomic.Bool
}

// Option configures a Counter.
type Option = options.Option[*Counter]

// WithSampleSize sets how many shards one coalesce pass collapses.
func WithSampleSize(n int) Option {
	return options.New(func(c *Counter) error {
		if n < 1 {
			return errors.New("counter: sample size must be at least 1")
		}
		c.sampleSize = n

		return nil
	})
}

// WithCoalesceProbability sets the chance that one Add triggers a background
// coalesce. Zero disables automatic coalescing; Coalesce remains callable.
func WithCoalesceProbability(p float64) Option {
	return options.New(func(c *Counter) error {
		if p < 0 || p > 1 {
			return errors.New("counter: coalesce probability must be in [0, 1]")
		}
		c.coalesceProb = p

		return nil
	})
}

// WithSource sets the randomness strategy for shard placement and the
// coalesce trigger.
func WithSource(s Source) Option {
	return options.New(func(c *Counter) error {
		if s == nil {
			return errors.New("counter: source must not be nil")
		}
		c.source = s

		return nil
	})
}

// WithLogger sets the logger that records swallowed coalesce failures.
// The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(c *Counter) {
		c.logger = logger
	})
}

// WithBackgroundContext sets the context background coalesces run under,
// typically tied to the database's shutdown. Cancellation abandons an
// in-flight coalesce without effect and is not treated as a failure.
func WithBackgroundContext(ctx context.Context) Option {
	return options.New(func(c *Counter) error {
		if ctx == nil {
			return errors.New("counter: background context must not be nil")
		}
		c.backgroundCtx = ctx

		return nil
	})
}

// New creates a counter over the given subspace.
func New(db kv.Database, subspace kv.Subspace, opts ...Option) (*Counter, error) {
	c := &Counter{
		db:            db,
		subspace:      subspace,
		sampleSize:    DefaultSampleSize,
		coalesceProb:  DefaultCoalesceProbability,
		source:        randSource{},
		logger:        zap.NewNop(),
		backgroundCtx: context.Background(),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Add records a delta within the caller's transaction by writing one shard
// at a fresh random key. Adds never conflict with each other or with
// readers' snapshots. With probability WithCoalesceProbability, a background
// coalesce is kicked off on its own transaction.
func (c *Counter) Add(_ context.Context, tr kv.Transaction, delta int64) error {
	id := c.source.ShardID()
	tr.Set(c.subspace.Pack(id[:]), tuple.MustPack(delta))

	if c.source.Coin(c.coalesceProb) {
		c.triggerCoalesce()
	}

	return nil
}

// GetTransactional returns the counter's total by scanning every shard in
// the subspace. The scan enters the transaction's conflict ranges, so a
// concurrent coalesce invalidates the reader.
func (c *Counter) GetTransactional(ctx context.Context, tr kv.ReadTransaction) (int64, error) {
	return c.sum(ctx, tr)
}

// GetSnapshot returns the counter's total via the transaction's snapshot
// view: the read is consistent at the transaction's read version but enters
// no conflict ranges.
func (c *Counter) GetSnapshot(ctx context.Context, tr kv.ReadTransaction) (int64, error) {
	return c.sum(ctx, tr.Snapshot())
}

// SetTotal adjusts the counter so its total becomes total: it reads the
// snapshot total and adds the difference. The net effect commits atomically
// with the caller's transaction.
func (c *Counter) SetTotal(ctx context.Context, tr kv.Transaction, total int64) error {
	current, err := c.GetSnapshot(ctx, tr)
	if err != nil {
		return err
	}

	delta, err := subChecked(total, current)
	if err != nil {
		return err
	}

	return c.Add(ctx, tr, delta)
}

// Coalesce collapses up to limit shards into one, preserving the total. It
// runs on its own transaction: a random pivot key is drawn, a coin picks the
// scan direction, the window of shards is read (snapshot), each shard is
// then point-read to enter its conflict range, cleared, and replaced by a
// single shard holding the sum.
//
// Concurrent coalesces conflict with each other but never with Add; a
// conflict here is reported, not retried, since a lost coalesce only defers
// cleanup.
func (c *Counter) Coalesce(ctx context.Context, limit int) error {
	tr, err := c.db.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tr.Cancel()

	full := c.subspace.ToRange()
	pivotID := c.source.ShardID()
	pivot := c.subspace.Pack(pivotID[:])

	var window kv.KeyRange
	opts := kv.RangeOptions{Limit: limit}
	if c.source.Coin(0.5) {
		window = kv.KeyRange{Begin: pivot, End: full.End}
	} else {
		window = kv.KeyRange{Begin: full.Begin, End: pivot}
		opts.Reverse = true
	}

	// Snapshot scan: the window read itself must not conflict with Adds
	// landing nearby. Conflict ranges are entered per shard below.
	shards, err := tr.Snapshot().GetRange(ctx, window, opts)
	if err != nil {
		return err
	}
	if len(shards) == 0 {
		return nil
	}

	var total int64
	for _, shard := range shards {
		v, err := decodeShard(shard.Value)
		if err != nil {
			return err
		}
		total, err = addChecked(total, v)
		if err != nil {
			return err
		}
	}

	for _, shard := range shards {
		// The point read enters the shard's conflict range, so two
		// coalesces collapsing the same shards cannot both commit.
		if _, err := tr.Get(ctx, shard.Key); err != nil {
			return err
		}
		tr.Clear(shard.Key)
	}

	newID := c.source.ShardID()
	tr.Set(c.subspace.Pack(newID[:]), tuple.MustPack(total))

	return tr.Commit(ctx)
}

// triggerCoalesce starts a background coalesce unless one is already in
// flight. Failures are observed and logged, never propagated; cancellation
// is a no-op.
func (c *Counter) triggerCoalesce() {
	if !c.coalescing.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer c.coalescing.Store(false)

		err := c.Coalesce(c.backgroundCtx, c.sampleSize)
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrCancelled):
			// Shutdown while coalescing: the transaction is abandoned
			// without effect.
		default:
			c.logger.Warn("background coalesce failed", zap.Error(err))
		}
	}()
}

// sum scans the whole subspace and totals the shard deltas with overflow
// checking.
func (c *Counter) sum(ctx context.Context, tr kv.ReadTransaction) (int64, error) {
	shards, err := tr.GetRange(ctx, c.subspace.ToRange(), kv.RangeOptions{})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, shard := range shards {
		v, err := decodeShard(shard.Value)
		if err != nil {
			return 0, err
		}
		total, err = addChecked(total, v)
		if err != nil {
			return 0, err
		}
	}

	return total, nil
}

// decodeShard extracts the signed delta from a shard value.
func decodeShard(v slice.Slice) (int64, error) {
	tup, err := tuple.Unpack(v)
	if err != nil {
		return 0, err
	}

	return tuple.First[int64](tup)
}

func addChecked(a, b int64) (int64, error) {
	s := a + b
	if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
		return 0, fmt.Errorf("%w: counter total exceeds 64-bit signed range", errs.ErrOverflow)
	}

	return s, nil
}

func subChecked(a, b int64) (int64, error) {
	d := a - b
	if (b < 0 && d < a) || (b > 0 && d > a) {
		return 0, fmt.Errorf("%w: counter adjustment exceeds 64-bit signed range", errs.ErrOverflow)
	}

	return d, nil
}
