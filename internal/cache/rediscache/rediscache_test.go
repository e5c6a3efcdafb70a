package rediscache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_GetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "stats:global", []byte(`{"total_lookups":3}`), time.Minute))

	b, ok, err := c.Get(ctx, "stats:global")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte(`{"total_lookups":3}`), b)
}

func TestRedisCache_Miss(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	_, ok, err := c.Get(context.Background(), "stats:global")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr())

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "stats:global", []byte("x"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := c.Get(ctx, "stats:global")
	require.NoError(t, err)
	require.False(t, ok)
}
