package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementKeepsWindow(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{Prefix: "test"})

	for i := int64(1); i <= 3; i++ {
		got, err := store.Increment(ctx, "login:alice", 1, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	ttl, ok := store.TTL(ctx, "login:alice")
	require.True(t, ok)
	assert.LessOrEqual(t, ttl, time.Minute)

	_, err := store.Increment(ctx, "  ", 1, time.Minute)
	require.Error(t, err)
}

func TestWindowExpires(t *testing.T) {
	ctx := context.Background()
	store := NewStore(Options{})

	_, err := store.Increment(ctx, "k", 5, 20*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)

	_, ok := store.TTL(ctx, "k")
	assert.False(t, ok)
	got, err := store.Increment(ctx, "k", 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestNamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	root := NewStore(Options{Prefix: "mazpan:"})
	a := root.Namespace("a")
	b := root.Namespace("b")

	_, err := a.Increment(ctx, "k", 2, 0)
	require.NoError(t, err)
	_, ok := b.TTL(ctx, "k")
	assert.False(t, ok)

	n, err := root.Increment(ctx, "a:k", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	a.Delete(ctx, "k")
	_, ok = root.TTL(ctx, "a:k")
	assert.False(t, ok)
}
