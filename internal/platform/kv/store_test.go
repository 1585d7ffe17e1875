package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "corporate:accounts")
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, store.Save(ctx, "corporate:accounts", []byte(`[{"id":1}]`)))
	data, err := store.Load(ctx, "corporate:accounts")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":1}]`, string(data))

	require.NoError(t, store.Save(ctx, "corporate:accounts", []byte(`[]`)))
	data, err = store.Load(ctx, "corporate:accounts")
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	require.NoError(t, store.Delete(ctx, "corporate:accounts"))
	_, err = store.Load(ctx, "corporate:accounts")
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMemoryStoreCopiesData(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	buf := []byte(`{"n":1}`)
	require.NoError(t, store.Save(ctx, "k", buf))
	buf[0] = 'X'

	data, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, string(data))

	// mutating a loaded slice must not leak back into the store
	data[0] = 'X'
	again, err := store.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `{"n":1}`, string(again))
}
