package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(t *testing.T) (SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client), mr
}

func TestRedisSessionStore_RevokeAndExpire(t *testing.T) {
	store, mr := newTestSessionStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "tok-1", time.Minute))

	revoked, err = store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)

	revoked, err = store.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, revoked, "revocation lapses once the token would have expired")
}

func TestRedisSessionStore_ZeroTTLIsIgnored(t *testing.T) {
	store, mr := newTestSessionStore(t)
	require.NoError(t, store.Revoke(context.Background(), "tok-2", 0))
	assert.False(t, mr.Exists(revokedKeyPrefix+"tok-2"))
}

func TestRedisSessionStore_ServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisSessionStore(client)
	mr.Close()

	_, err = store.IsRevoked(context.Background(), "tok-3")
	assert.Error(t, err)
}

func TestNoopSessionStore(t *testing.T) {
	store := NewNoopSessionStore()
	require.NoError(t, store.Revoke(context.Background(), "x", time.Minute))
	revoked, err := store.IsRevoked(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, revoked)
}
