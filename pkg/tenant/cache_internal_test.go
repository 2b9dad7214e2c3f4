package tenant

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, size int) (*memoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newMemoryCache(size, time.Hour, clock.Now)
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func cacheTenant(sub string) *Tenant {
	return &Tenant{ID: uuid.New(), Subdomain: sub, Status: StatusActive, Plan: PlanBasic}
}

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 10)
		want := cacheTenant("acme")
		c.Set(ctx, "acme", want, time.Minute)

		got, ok := c.Get(ctx, "acme")
		require.True(t, ok)
		assert.Equal(t, *want, *got)
	})

	t.Run("returns copies", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 10)
		src := cacheTenant("acme")
		c.Set(ctx, "acme", src, time.Minute)
		src.Status = StatusSuspended

		got, ok := c.Get(ctx, "acme")
		require.True(t, ok)
		assert.Equal(t, StatusActive, got.Status)

		got.Status = StatusSuspended
		again, _ := c.Get(ctx, "acme")
		assert.Equal(t, StatusActive, again.Status)
	})

	t.Run("expires", func(t *testing.T) {
		t.Parallel()

		c, clock := newTestCache(t, 10)
		c.Set(ctx, "acme", cacheTenant("acme"), time.Minute)

		clock.Advance(59 * time.Second)
		_, ok := c.Get(ctx, "acme")
		assert.True(t, ok)

		clock.Advance(time.Second)
		_, ok = c.Get(ctx, "acme")
		assert.False(t, ok)
		assert.Equal(t, 0, c.len())
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 2)
		c.Set(ctx, "a1", cacheTenant("a1"), time.Minute)
		c.Set(ctx, "b1", cacheTenant("b1"), time.Minute)

		_, ok := c.Get(ctx, "a1")
		require.True(t, ok)

		c.Set(ctx, "c1", cacheTenant("c1"), time.Minute)

		_, ok = c.Get(ctx, "b1")
		assert.False(t, ok)
		_, ok = c.Get(ctx, "a1")
		assert.True(t, ok)
		_, ok = c.Get(ctx, "c1")
		assert.True(t, ok)
		assert.Equal(t, 2, c.len())
	})

	t.Run("overwrite keeps size", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 2)
		c.Set(ctx, "acme", cacheTenant("acme"), time.Minute)
		c.Set(ctx, "acme", cacheTenant("acme"), time.Minute)
		assert.Equal(t, 1, c.len())
	})

	t.Run("ignores nil and non-positive ttl", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 2)
		c.Set(ctx, "nil", nil, time.Minute)
		c.Set(ctx, "zero", cacheTenant("zero"), 0)
		assert.Equal(t, 0, c.len())
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 2)
		c.Set(ctx, "acme", cacheTenant("acme"), time.Minute)
		c.Delete(ctx, "acme")
		c.Delete(ctx, "missing")

		_, ok := c.Get(ctx, "acme")
		assert.False(t, ok)
	})

	t.Run("sweep removes expired entries", func(t *testing.T) {
		t.Parallel()

		c, clock := newTestCache(t, 10)
		c.Set(ctx, "short", cacheTenant("short"), time.Second)
		c.Set(ctx, "long", cacheTenant("long"), time.Hour)

		clock.Advance(time.Minute)
		c.removeExpired()

		assert.Equal(t, 1, c.len())
		_, ok := c.Get(ctx, "long")
		assert.True(t, ok)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestCache(t, 2)
		require.NoError(t, c.Close())
		require.NoError(t, c.Close())
	})
}

func TestNoOpCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewNoOpCache()
	c.Set(ctx, "acme", cacheTenant("acme"), time.Minute)
	_, ok := c.Get(ctx, "acme")
	assert.False(t, ok)
	c.Delete(ctx, "acme")
	assert.NoError(t, c.Close())
}
