package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/taskflow-bfa-go/internal/infra/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get("nonexistent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.NewWithClock[int](time.Minute, func() time.Time { return now })

	c.Set("k", 7)
	now = now.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry should be expired")

	assert.Equal(t, 1, c.Len())
	c.Sweep()
	assert.Equal(t, 0, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	_, ok := c.Get("key1")
	assert.False(t, ok)
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	c := cache.New[string](time.Minute)
	c.Close()
	c.Close()

	c.Set("still", "works")
	_, ok := c.Get("still")
	assert.True(t, ok)
}
