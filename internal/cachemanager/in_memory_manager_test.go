package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type board struct {
	Limit   int
	Leaders []string
}

func newBoardCache() *InMemoryCacheManager[string, board] {
	return NewInMemoryCacheManager[string, board]("leaderboard", DefaultExpiration, DefaultCleanupInterval)
}

func TestInMemory_SetThenGet(t *testing.T) {
	c := newBoardCache()
	want := board{Limit: 3, Leaders: []string{"ana", "bo"}}
	c.Set(context.Background(), "top:3", want, DefaultExpiration)

	got, ok := c.Get(context.Background(), "top:3")
	require.True(t, ok)
	require.Equal(t, want, got)
	require.Equal(t, 1, c.Len())
}

func TestInMemory_Miss(t *testing.T) {
	c := newBoardCache()
	got, ok := c.Get(context.Background(), "top:10")
	require.False(t, ok)
	require.Zero(t, got)
}

func TestInMemory_WrongTypeIsMiss(t *testing.T) {
	c := newBoardCache()
	c.cache.Set("top:3", 123, DefaultExpiration)

	_, ok := c.Get(context.Background(), "top:3")
	require.False(t, ok)
}

func TestInMemory_Expiry(t *testing.T) {
	c := newBoardCache()
	c.Set(context.Background(), "top:3", board{Limit: 3}, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get(context.Background(), "top:3")
	require.False(t, ok)
}

func TestInMemory_GetWithRefreshExtendsTTL(t *testing.T) {
	c := newBoardCache()
	ctx := context.Background()
	c.Set(ctx, "top:3", board{Limit: 3}, 50*time.Millisecond)

	_, ok := c.GetWithRefresh(ctx, "top:3", time.Hour)
	require.True(t, ok)

	_, exp, found := c.cache.GetWithExpiration("top:3")
	require.True(t, found)
	require.Greater(t, time.Until(exp), time.Minute)
}

func TestInMemory_DeleteAndFlush(t *testing.T) {
	c := newBoardCache()
	ctx := context.Background()
	c.Set(ctx, "top:3", board{Limit: 3}, DefaultExpiration)
	c.Set(ctx, "top:5", board{Limit: 5}, DefaultExpiration)
	c.Set(ctx, "top:10", board{Limit: 10}, DefaultExpiration)

	c.Delete(ctx, "top:3", "top:5")
	require.Equal(t, 1, c.Len())

	c.Flush(ctx)
	require.Equal(t, 0, c.Len())
}

type leaderKey string

func TestInMemory_NamedKeyType(t *testing.T) {
	c := NewInMemoryCacheManager[leaderKey, int]("counts", DefaultExpiration, DefaultCleanupInterval)
	c.Set(context.Background(), leaderKey("a"), 7, DefaultExpiration)

	got, ok := c.Get(context.Background(), "a")
	require.True(t, ok)
	require.Equal(t, 7, got)
}
