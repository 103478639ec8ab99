package kv

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/arloliu/ordkv/errs"
	"github.com/arloliu/ordkv/internal/options"
)

const (
	retryInitialInterval  = 5 * time.Millisecond
	retryMaxInterval      = 250 * time.Millisecond
	retryDefaultMaxElapse = 15 * time.Second
)

// Retryable runs transactional functions under automatic retry: a function
// that fails with errs.ErrConflict is re-invoked on a fresh transaction
// after an exponential backoff, until it succeeds, a non-transient error
// occurs, the context is cancelled, or the elapsed budget runs out.
//
// The retried function may run multiple times and must be idempotent apart
// from its transaction writes, which are discarded on every failed attempt.
type Retryable struct {
	db         Database
	logger     *zap.Logger
	maxElapsed time.Duration
}

// RetryOption configures a Retryable.
type RetryOption = options.Option[*Retryable]

// WithRetryLogger sets the logger that records retried attempts.
// The default is a no-op logger.
func WithRetryLogger(logger *zap.Logger) RetryOption {
	return options.NoError(func(r *Retryable) {
		r.logger = logger
	})
}

// WithMaxElapsed bounds the total time spent retrying one function.
func WithMaxElapsed(d time.Duration) RetryOption {
	return options.New(func(r *Retryable) error {
		if d <= 0 {
			return errors.New("kv: max elapsed retry time must be positive")
		}
		r.maxElapsed = d

		return nil
	})
}

// NewRetryable creates a retry helper over db.
func NewRetryable(db Database, opts ...RetryOption) (*Retryable, error) {
	r := &Retryable{
		db:         db,
		logger:     zap.NewNop(),
		maxElapsed: retryDefaultMaxElapse,
	}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// Read runs fn on a read-only view of a fresh transaction.
// The transaction is never committed; reads alone need no commit.
func (r *Retryable) Read(ctx context.Context, fn func(ReadTransaction) error) error {
	return r.run(ctx, func(tr Transaction) error {
		return fn(tr)
	}, false)
}

// Write runs fn on a fresh transaction and commits it.
func (r *Retryable) Write(ctx context.Context, fn func(Transaction) error) error {
	return r.run(ctx, fn, true)
}

// ReadWrite runs fn on a fresh transaction and commits it.
func (r *Retryable) ReadWrite(ctx context.Context, fn func(Transaction) error) error {
	return r.run(ctx, fn, true)
}

func (r *Retryable) run(ctx context.Context, fn func(Transaction) error, commit bool) error {
	op := func() error {
		tr, err := r.db.BeginTransaction(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		defer tr.Cancel()

		if err := fn(tr); err != nil {
			return classify(err)
		}
		if commit {
			if err := tr.Commit(ctx); err != nil {
				return classify(err)
			}
		}

		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = retryInitialInterval
	eb.MaxInterval = retryMaxInterval
	eb.MaxElapsedTime = r.maxElapsed

	notify := func(err error, next time.Duration) {
		r.logger.Debug("retrying transaction",
			zap.Error(err),
			zap.Duration("backoff", next),
		)
	}

	return backoff.RetryNotify(op, backoff.WithContext(eb, ctx), notify)
}

// classify keeps conflicts retryable and makes everything else permanent.
func classify(err error) error {
	if errors.Is(err, errs.ErrConflict) {
		return err
	}

	return backoff.Permanent(err)
}
