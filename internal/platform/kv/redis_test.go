package kv

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, prefix), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newTestRedisStore(t, "smartdine")
	ctx := context.Background()

	_, err := store.Load(ctx, "corporate:invoices")
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, store.Save(ctx, "corporate:invoices", []byte(`[{"id":7}]`)))
	data, err := store.Load(ctx, "corporate:invoices")
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":7}]`, string(data))

	require.NoError(t, store.Delete(ctx, "corporate:invoices"))
	_, err = store.Load(ctx, "corporate:invoices")
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestRedisStorePrefixesKeys(t *testing.T) {
	store, mr := newTestRedisStore(t, "smartdine")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "corporate:orders", []byte(`[]`)))
	require.True(t, mr.Exists("smartdine:corporate:orders"))
	require.False(t, mr.Exists("corporate:orders"))

	// no TTL: snapshots persist until the next replace
	require.Equal(t, int64(0), int64(mr.TTL("smartdine:corporate:orders")))
}

func TestRedisStoreEmptyPrefix(t *testing.T) {
	store, mr := newTestRedisStore(t, "")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "corporate:orders", []byte(`[]`)))
	require.True(t, mr.Exists("corporate:orders"))
}
