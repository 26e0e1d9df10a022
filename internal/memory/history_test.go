package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHistory(t *testing.T) (*HistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewHistoryStore(client), mr
}

func TestHistoryStore_AppendAndRecent(t *testing.T) {
	store, _ := setupHistory(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "alice", Exchange{Question: "q1", Response: "r1", AskedAt: time.Now()}, 50, time.Hour))
	require.NoError(t, store.Append(ctx, "alice", Exchange{Question: "q2", Response: "r2", AskedAt: time.Now()}, 50, time.Hour))

	got, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Question)
	assert.Equal(t, "q2", got[1].Question)

	other, err := store.Recent(ctx, "bob", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistoryStore_Trim(t *testing.T) {
	store, _ := setupHistory(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, "alice", Exchange{Question: fmt.Sprintf("q%d", i)}, 3, time.Hour))
	}

	got, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "q2", got[0].Question)
	assert.Equal(t, "q4", got[2].Question)
}

func TestHistoryStore_TTL(t *testing.T) {
	store, mr := setupHistory(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "alice", Exchange{Question: "q"}, 10, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("history:alice"))

	mr.FastForward(2 * time.Minute)
	got, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryStore_SkipsMalformed(t *testing.T) {
	store, mr := setupHistory(t)
	ctx := context.Background()

	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { raw.Close() })
	require.NoError(t, raw.RPush(ctx, "history:alice", "not-json").Err())
	require.NoError(t, store.Append(ctx, "alice", Exchange{Question: "ok"}, 10, time.Hour))

	got, err := store.Recent(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].Question)
}

func TestHistoryStore_Clear(t *testing.T) {
	store, mr := setupHistory(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "alice", Exchange{Question: "q"}, 10, time.Hour))
	require.NoError(t, store.Clear(ctx, "alice"))
	assert.False(t, mr.Exists("history:alice"))
}
