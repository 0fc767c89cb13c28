package redis

import (
	"context"
	"testing"
	"time"

	"github.com/pscheid92/wincounter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurableStore_Ping(t *testing.T) {
	store := NewDurableStore(setupTestClient(t))

	require.NoError(t, store.Ping(context.Background()))
}

func TestDurableStore_GetMissingKey(t *testing.T) {
	store := NewDurableStore(setupTestClient(t))

	_, err := store.Get(context.Background(), "session:KIRA-NONE")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDurableStore_PutThenGet(t *testing.T) {
	store := NewDurableStore(setupTestClient(t))
	ctx := context.Background()

	err := store.Put(ctx, "session:KIRA-1", []byte(`{"mode":"dual"}`), time.Hour)
	require.NoError(t, err)

	got, err := store.Get(ctx, "session:KIRA-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"dual"}`, string(got))
}

func TestDurableStore_PutSetsTTL(t *testing.T) {
	client := setupTestClient(t)
	store := NewDurableStore(client)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:KIRA-2", []byte(`{}`), 24*time.Hour))

	ttl, err := client.TTL(ctx, "session:KIRA-2").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)
	assert.LessOrEqual(t, ttl, 24*time.Hour)
}

func TestDurableStore_PutOverwrites(t *testing.T) {
	store := NewDurableStore(setupTestClient(t))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session:KIRA-3", []byte(`{"maxWins":3}`), time.Hour))
	require.NoError(t, store.Put(ctx, "session:KIRA-3", []byte(`{"maxWins":5}`), time.Hour))

	got, err := store.Get(ctx, "session:KIRA-3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"maxWins":5}`, string(got))
}
