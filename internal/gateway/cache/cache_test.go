package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/campaignstack/ai-gateway/internal/shared/redis"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.New(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestStore_GetMiss(t *testing.T) {
	store, _ := newTestStore(t)

	entry, found, err := store.Get(context.Background(), "t1", "openai", "deadbeef")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, entry)
}

func TestStore_PutGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "t1", "openai", "abc123", "user: Hi", "Hello!", "gpt-4o", 15, time.Hour)
	require.NoError(t, err)

	entry, found, err := store.Get(ctx, "t1", "openai", "abc123")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Hello!", entry.Response)
	require.Equal(t, "user: Hi", entry.Prompt)
	require.Equal(t, "gpt-4o", entry.Model)
	require.Equal(t, 15, entry.TotalTokens)
}

func TestStore_KeyIsolation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "t1", "openai", "h1", "p", "r", "m", 1, time.Hour))

	// Same hash, different tenant or vendor, must miss.
	_, found, err := store.Get(ctx, "t2", "openai", "h1")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = store.Get(ctx, "t1", "groq", "h1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "t1", "openai", "h1", "p", "r", "m", 1, time.Minute))

	_, found, err := store.Get(ctx, "t1", "openai", "h1")
	require.NoError(t, err)
	require.True(t, found)

	mr.FastForward(2 * time.Minute)

	_, found, err = store.Get(ctx, "t1", "openai", "h1")
	require.NoError(t, err)
	require.False(t, found)
}

func TestStore_HitCounting(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "t1", "openai", "h1", "p", "r", "m", 1, time.Hour))

	var last *Entry
	for i := 0; i < 3; i++ {
		entry, found, err := store.Get(ctx, "t1", "openai", "h1")
		require.NoError(t, err)
		require.True(t, found)
		last = entry
	}
	require.Equal(t, 3, last.Hits)

	// Overwrite resets the counter.
	require.NoError(t, store.Put(ctx, "t1", "openai", "h1", "p", "r2", "m", 2, time.Hour))

	entry, found, err := store.Get(ctx, "t1", "openai", "h1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "r2", entry.Response)
	require.Equal(t, 1, entry.Hits)
}

func TestStore_DefaultTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "t1", "openai", "h1", "p", "r", "m", 1, 0))

	ttl := mr.TTL("llmcache:t1:openai:h1")
	require.Equal(t, DefaultTTL, ttl)
}
