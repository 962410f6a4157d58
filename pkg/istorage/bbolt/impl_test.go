/*
 * Copyright (c) 2025-present unTill Software Development Group B.V.
 */

package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voedger/odata/pkg/istorage"
)

func TestTCK(t *testing.T) {
	require := require.New(t)
	store, err := Provide(ParamsType{DBPath: filepath.Join(t.TempDir(), "tck.db")})
	require.NoError(err)
	defer store.Close()
	istorage.TechnologyCompatibilityKit(t, store)
}

func TestReopen(t *testing.T) {
	require := require.New(t)
	params := ParamsType{DBPath: filepath.Join(t.TempDir(), "sub", "data.db")}
	ctx := context.Background()

	store, err := Provide(params)
	require.NoError(err)
	require.NoError(store.Update(ctx, func(tx istorage.ITx) error {
		key, err := tx.NextKey("Customers")
		if err != nil {
			return err
		}
		return tx.Put(&istorage.Record{Set: "Customers", Key: key, Version: 1, Properties: map[string]any{"Name": "a"}})
	}))
	require.NoError(store.Close())

	err = store.View(ctx, func(tx istorage.ITx) error { return nil })
	require.ErrorIs(err, istorage.ErrStoreClosed)

	store, err = Provide(params)
	require.NoError(err)
	defer store.Close()
	require.NoError(store.View(ctx, func(tx istorage.ITx) error {
		r, ok, err := tx.Get("Customers", 1)
		require.NoError(err)
		require.True(ok)
		require.Equal("a", r.Properties["Name"])
		return nil
	}))
	require.NoError(store.Update(ctx, func(tx istorage.ITx) error {
		key, err := tx.NextKey("Customers")
		require.NoError(err)
		require.Equal(int64(2), key)
		return nil
	}))
}

func TestKeyOrder(t *testing.T) {
	require := require.New(t)
	keys := []int64{-5, -1, 0, 1, 256, 1 << 40}
	for i := 1; i < len(keys); i++ {
		require.Less(string(encodeKey(keys[i-1])), string(encodeKey(keys[i])))
	}
}
