package memdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ordkv/kv"
	"github.com/arloliu/ordkv/slice"
)

func TestRetryable_ReadWriteRetriesConflicts(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	seed := begin(t, db)
	seed.Set(key("n"), value("0"))
	require.NoError(t, seed.Commit(ctx))

	r, err := kv.NewRetryable(db)
	require.NoError(t, err)

	attempts := 0
	err = r.ReadWrite(ctx, func(tr kv.Transaction) error {
		attempts++

		cur, err := tr.Get(ctx, key("n"))
		if err != nil {
			return err
		}

		// On the first attempt, race a competing writer past this
		// transaction to force a conflict at commit.
		if attempts == 1 {
			rival := begin(t, db)
			rival.Set(key("n"), value("9"))
			require.NoError(t, rival.Commit(ctx))
		}

		tr.Set(key("n"), slice.FromString(string(cur.Bytes())+"+1"))

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)

	tr := begin(t, db)
	defer tr.Cancel()
	got, err := tr.Get(ctx, key("n"))
	require.NoError(t, err)
	require.Equal(t, "9+1", string(got.Bytes()))
}

func TestRetryable_PermanentErrorNotRetried(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	r, err := kv.NewRetryable(db)
	require.NoError(t, err)

	boom := errors.New("boom")
	attempts := 0
	err = r.Write(ctx, func(kv.Transaction) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, attempts)
}

func TestRetryable_Read(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	seed := begin(t, db)
	seed.Set(key("k"), value("v"))
	require.NoError(t, seed.Commit(ctx))

	r, err := kv.NewRetryable(db)
	require.NoError(t, err)

	var got string
	err = r.Read(ctx, func(tr kv.ReadTransaction) error {
		v, err := tr.Get(ctx, key("k"))
		if err != nil {
			return err
		}
		got = string(v.Bytes())

		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "v", got)
}
