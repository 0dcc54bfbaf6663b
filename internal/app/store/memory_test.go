package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryScalars(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	_, err := mem.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mem.Set(ctx, "k", "v1"))
	require.NoError(t, mem.Set(ctx, "k", "v2"))

	val, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

func TestMemorySets(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()

	require.NoError(t, mem.SAdd(ctx, "s", "b"))
	require.NoError(t, mem.SAdd(ctx, "s", "a"))
	require.NoError(t, mem.SAdd(ctx, "s", "a"))

	ok, err := mem.SIsMember(ctx, "s", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	members, err := mem.SMembers(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)

	require.NoError(t, mem.SRem(ctx, "s", "a"))
	require.NoError(t, mem.SRem(ctx, "s", "a"))

	ok, err = mem.SIsMember(ctx, "s", "a")
	require.NoError(t, err)
	assert.False(t, ok)

	members, err = mem.SMembers(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestMemoryZSet(t *testing.T) {
	ctx := context.Background()

	t.Run("orders by ascending score", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.ZAdd(ctx, "z", 3, "c"))
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "a"))
		require.NoError(t, mem.ZAdd(ctx, "z", 2, "b"))

		members, err := mem.ZRange(ctx, "z", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, members)
	})

	t.Run("equal scores keep insertion order", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "zebra"))
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "apple"))
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "mango"))

		members, err := mem.ZRange(ctx, "z", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"zebra", "apple", "mango"}, members)
	})

	t.Run("re-adding a member updates its score", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "a"))
		require.NoError(t, mem.ZAdd(ctx, "z", 2, "b"))
		require.NoError(t, mem.ZAdd(ctx, "z", 3, "a"))

		members, err := mem.ZRange(ctx, "z", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, members)
	})

	t.Run("negative indices count from the tail", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "a"))
		require.NoError(t, mem.ZAdd(ctx, "z", 2, "b"))
		require.NoError(t, mem.ZAdd(ctx, "z", 3, "c"))

		members, err := mem.ZRange(ctx, "z", -1, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"c"}, members)

		members, err = mem.ZRange(ctx, "z", -2, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "c"}, members)
	})

	t.Run("out of range yields empty slice", func(t *testing.T) {
		mem := NewMemory()
		require.NoError(t, mem.ZAdd(ctx, "z", 1, "a"))

		members, err := mem.ZRange(ctx, "z", 5, 10)
		require.NoError(t, err)
		assert.Empty(t, members)

		members, err = mem.ZRange(ctx, "missing", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}
