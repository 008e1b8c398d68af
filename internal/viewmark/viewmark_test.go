package viewmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func assertFirstViewOnly(t *testing.T, m Marker) {
	t.Helper()
	ctx := context.Background()

	seen, err := m.Seen(ctx, "v1", "blog", "b1")
	require.NoError(t, err)
	require.False(t, seen)

	first, err := m.Mark(ctx, "v1", "blog", "b1")
	require.NoError(t, err)
	require.True(t, first)

	again, err := m.Mark(ctx, "v1", "blog", "b1")
	require.NoError(t, err)
	require.False(t, again)
	seen, err = m.Seen(ctx, "v1", "blog", "b1")
	require.NoError(t, err)
	require.True(t, seen)

	other, _ := m.Mark(ctx, "v2", "blog", "b1")
	require.True(t, other, "another visitor counts")
	otherKind, _ := m.Mark(ctx, "v1", "case_study", "b1")
	require.True(t, otherKind, "same id under another kind counts")
}

func TestMemoryMarkerFirstViewOnly(t *testing.T) {
	assertFirstViewOnly(t, NewMemoryMarker(0, 0))
}

func TestMemoryMarkerIsBounded(t *testing.T) {
	m := NewMemoryMarker(100, time.Hour)
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_, err := m.Mark(ctx, fmt.Sprintf("visitor-%d", i), "blog", "b1")
		require.NoError(t, err)
	}
	require.Equal(t, 100, m.Len())

	// The oldest marks were evicted, the newest are kept.
	seen, _ := m.Seen(ctx, "visitor-0", "blog", "b1")
	require.False(t, seen)
	seen, _ = m.Seen(ctx, "visitor-999", "blog", "b1")
	require.True(t, seen)
}

func TestMemoryMarkerExpires(t *testing.T) {
	m := NewMemoryMarker(10, 50*time.Millisecond)
	ctx := context.Background()

	_, err := m.Mark(ctx, "v1", "blog", "b1")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		seen, _ := m.Seen(ctx, "v1", "blog", "b1")
		return !seen
	}, time.Second, 10*time.Millisecond)
}

func newRedisMarker(t *testing.T) (*RedisMarker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMarker(client), mr
}

func TestRedisMarkerFirstViewOnly(t *testing.T) {
	m, mr := newRedisMarker(t)
	assertFirstViewOnly(t, m)

	require.True(t, mr.Exists("view:v1:blog:b1"))
	require.Zero(t, mr.TTL("view:v1:blog:b1"), "marks are permanent")
}

func TestRedisMarkerReportsConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Close())
	m := NewRedisMarker(client)

	_, err := m.Seen(context.Background(), "v1", "blog", "b1")
	require.Error(t, err)
	_, err = m.Mark(context.Background(), "v1", "blog", "b1")
	require.Error(t, err)
}

func TestKeyFormat(t *testing.T) {
	require.Equal(t, "view:abc:blog:42", key("abc", "blog", "42"))
}
