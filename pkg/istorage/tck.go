/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package istorage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TechnologyCompatibilityKit test suit
func TechnologyCompatibilityKit(t *testing.T, store IStore) {
	t.Run("TestStore_PutGet", func(t *testing.T) { testStore_PutGet(t, store) })
	t.Run("TestStore_Rollback", func(t *testing.T) { testStore_Rollback(t, store) })
	t.Run("TestStore_ReadOnly", func(t *testing.T) { testStore_ReadOnly(t, store) })
	t.Run("TestStore_Delete", func(t *testing.T) { testStore_Delete(t, store) })
	t.Run("TestStore_List", func(t *testing.T) { testStore_List(t, store) })
	t.Run("TestStore_NextKey", func(t *testing.T) { testStore_NextKey(t, store) })
	t.Run("TestStore_Isolation", func(t *testing.T) { testStore_Isolation(t, store) })
	t.Run("TestStore_Context", func(t *testing.T) { testStore_Context(t, store) })
}

func testStore_PutGet(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()

	rec := &Record{
		Set:        "tck_putget",
		Key:        1,
		Version:    3,
		Properties: map[string]any{"Name": "Alfreds", "Total": 42.5},
		Links:      map[string][]string{"Orders": {"Orders(1)", "Orders(2)"}},
		Streams:    map[string]*Stream{"Photo": {ContentType: "image/png", Content: []byte{1, 2, 3}, Version: 1}},
	}
	require.NoError(store.Update(ctx, func(tx ITx) error { return tx.Put(rec) }))

	require.NoError(store.View(ctx, func(tx ITx) error {
		got, ok, err := tx.Get("tck_putget", 1)
		require.NoError(err)
		require.True(ok)
		require.Equal(rec, got)

		_, ok, err = tx.Get("tck_putget", 2)
		require.NoError(err)
		require.False(ok)

		_, ok, err = tx.Get("tck_unknown_set", 1)
		require.NoError(err)
		require.False(ok)
		return nil
	}))

	t.Run("empty set", func(t *testing.T) {
		err := store.Update(ctx, func(tx ITx) error { return tx.Put(&Record{Key: 1}) })
		require.ErrorIs(err, ErrEmptySet)
	})
}

func testStore_Rollback(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	testErr := errors.New("test error")

	err := store.Update(ctx, func(tx ITx) error {
		require.NoError(tx.Put(&Record{Set: "tck_rollback", Key: 1}))
		require.NoError(tx.Put(&Record{Set: "tck_rollback", Key: 2}))
		_, ok, err := tx.Get("tck_rollback", 1)
		require.NoError(err)
		require.True(ok, "own writes must be visible inside the transaction")
		return testErr
	})
	require.ErrorIs(err, testErr)

	require.NoError(store.View(ctx, func(tx ITx) error {
		_, ok, err := tx.Get("tck_rollback", 1)
		require.NoError(err)
		require.False(ok)
		_, ok, err = tx.Get("tck_rollback", 2)
		require.NoError(err)
		require.False(ok)
		return nil
	}))
}

func testStore_ReadOnly(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.View(ctx, func(tx ITx) error {
		require.ErrorIs(tx.Put(&Record{Set: "tck_readonly", Key: 1}), ErrReadOnlyTx)
		_, err := tx.Delete("tck_readonly", 1)
		require.ErrorIs(err, ErrReadOnlyTx)
		_, err = tx.NextKey("tck_readonly")
		require.ErrorIs(err, ErrReadOnlyTx)
		return nil
	}))
}

func testStore_Delete(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Update(ctx, func(tx ITx) error {
		return tx.Put(&Record{Set: "tck_delete", Key: 1})
	}))
	require.NoError(store.Update(ctx, func(tx ITx) error {
		ok, err := tx.Delete("tck_delete", 1)
		require.NoError(err)
		require.True(ok)
		ok, err = tx.Delete("tck_delete", 1)
		require.NoError(err)
		require.False(ok)
		ok, err = tx.Delete("tck_unknown_set", 1)
		require.NoError(err)
		require.False(ok)
		return nil
	}))
	require.NoError(store.View(ctx, func(tx ITx) error {
		_, ok, err := tx.Get("tck_delete", 1)
		require.NoError(err)
		require.False(ok)
		return nil
	}))
}

func testStore_List(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Update(ctx, func(tx ITx) error {
		for _, key := range []int64{3, 1, 20, 2} {
			if err := tx.Put(&Record{Set: "tck_list", Key: key}); err != nil {
				return err
			}
		}
		return tx.Put(&Record{Set: "tck_list_other", Key: 5})
	}))

	keys := []int64{}
	require.NoError(store.View(ctx, func(tx ITx) error {
		return tx.List("tck_list", func(r *Record) error {
			keys = append(keys, r.Key)
			return nil
		})
	}))
	require.Equal([]int64{1, 2, 3, 20}, keys)

	t.Run("callback error stops listing", func(t *testing.T) {
		testErr := errors.New("stop")
		count := 0
		err := store.View(ctx, func(tx ITx) error {
			return tx.List("tck_list", func(r *Record) error {
				count++
				return testErr
			})
		})
		require.ErrorIs(err, testErr)
		require.Equal(1, count)
	})

	t.Run("unknown set", func(t *testing.T) {
		require.NoError(store.View(ctx, func(tx ITx) error {
			return tx.List("tck_unknown_set", func(r *Record) error {
				require.Fail("must not be called")
				return nil
			})
		}))
	})
}

func testStore_NextKey(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	require.NoError(store.Update(ctx, func(tx ITx) error {
		return tx.Put(&Record{Set: "tck_nextkey", Key: 1})
	}))
	used := map[int64]bool{1: true}
	for i := 0; i < 3; i++ {
		require.NoError(store.Update(ctx, func(tx ITx) error {
			key, err := tx.NextKey("tck_nextkey")
			require.NoError(err)
			require.Positive(key)
			require.False(used[key])
			used[key] = true
			return tx.Put(&Record{Set: "tck_nextkey", Key: key})
		}))
	}
}

func testStore_Isolation(t *testing.T, store IStore) {
	require := require.New(t)
	ctx := context.Background()
	rec := &Record{Set: "tck_isolation", Key: 1, Properties: map[string]any{"Name": "a"}}
	require.NoError(store.Update(ctx, func(tx ITx) error { return tx.Put(rec) }))
	rec.Properties["Name"] = "changed after put"

	require.NoError(store.View(ctx, func(tx ITx) error {
		got, _, err := tx.Get("tck_isolation", 1)
		require.NoError(err)
		require.Equal("a", got.Properties["Name"])
		got.Properties["Name"] = "changed after get"
		return nil
	}))
	require.NoError(store.View(ctx, func(tx ITx) error {
		got, _, err := tx.Get("tck_isolation", 1)
		require.NoError(err)
		require.Equal("a", got.Properties["Name"])
		return nil
	}))
}

func testStore_Context(t *testing.T, store IStore) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := store.Update(ctx, func(tx ITx) error {
		called = true
		return nil
	})
	require.ErrorIs(err, context.Canceled)
	require.False(called)
	err = store.View(ctx, func(tx ITx) error {
		called = true
		return nil
	})
	require.ErrorIs(err, context.Canceled)
	require.False(called)
}
