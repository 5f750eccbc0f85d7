package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devask/devask-hub/internal/application/cache"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache() (*Cache, *clock) {
	clk := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewCache()
	c.now = clk.now
	return c, clk
}

func TestCache_GetSetExpiry(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"n": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, 1, got["n"])

	clk.t = clk.t.Add(time.Minute)
	assert.ErrorIs(t, c.Get(ctx, "k", &got), cache.ErrMiss)
	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache()

	require.NoError(t, c.Set(ctx, "k", "v", 0))
	clk.t = clk.t.Add(365 * 24 * time.Hour)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCache_Purge(t *testing.T) {
	ctx := context.Background()
	c, clk := newTestCache()

	require.NoError(t, c.Set(ctx, "short", "v", time.Second))
	require.NoError(t, c.Set(ctx, "long", "v", time.Hour))
	require.NoError(t, c.Set(ctx, "forever", "v", 0))

	clk.t = clk.t.Add(time.Minute)
	removed, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "long", "forever", "missing"))
	assert.Zero(t, c.Len())
}
