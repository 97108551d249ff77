package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 42)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("a", "soon gone", -time.Second)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_InvalidateTag(t *testing.T) {
	c := New(time.Minute)
	c.Set("metrics:week", 1, "metrics")
	c.Set("metrics:month", 2, "metrics")
	c.Set("insights:u1", 3, "metrics", "user:u1")
	c.Set("other", 4, "unrelated")

	dropped := c.InvalidateTag("metrics")
	assert.Equal(t, 3, dropped)

	_, ok := c.Get("metrics:week")
	assert.False(t, ok)
	_, ok = c.Get("insights:u1")
	assert.False(t, ok)

	v, ok := c.Get("other")
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestCache_InvalidateTag_SingleUser(t *testing.T) {
	c := New(time.Minute)
	c.Set("insights:u1", 1, "user:u1")
	c.Set("insights:u2", 2, "user:u2")

	assert.Equal(t, 1, c.InvalidateTag("user:u1"))

	_, ok := c.Get("insights:u1")
	assert.False(t, ok)
	_, ok = c.Get("insights:u2")
	assert.True(t, ok)
}

func TestCache_CleanExpired(t *testing.T) {
	c := New(time.Minute)
	c.SetWithTTL("stale", 1, -time.Second)
	c.Set("fresh", 2)

	require.Equal(t, 2, c.Len())
	c.CleanExpired()
	assert.Equal(t, 1, c.Len())
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_OverwriteReplacesTags(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", 1, "old")
	c.Set("k", 2, "new")

	assert.Equal(t, 0, c.InvalidateTag("old"))

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
