package cache

import (
	"context"
	"testing"
	"time"

	"github.com/feesync/feesync/internal/config"
	"github.com/feesync/feesync/internal/logger"
	"github.com/stretchr/testify/assert"
)

func newTestCache(enabled bool) Cache {
	cfg := config.GetDefaultConfig()
	cfg.Cache.Enabled = enabled
	cfg.Cache.TTL = time.Minute
	return NewInMemoryCache(cfg, logger.NewNopLogger())
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	kpis := GenerateKey(PrefixDashboard, "kpis", "2024-05")
	assert.Equal(t, "dashboard:v1:kpis:2024-05", kpis)

	c.Set(ctx, kpis, 42, 0)
	c.Set(ctx, GenerateKey(PrefixOutstanding, "C1"), 500.0, 0)

	v, ok := c.Get(ctx, kpis)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	c.DeleteByPrefix(ctx, PrefixDashboard)
	_, ok = c.Get(ctx, kpis)
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixOutstanding, "C1"))
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, GenerateKey(PrefixOutstanding, "C1"))
	assert.False(t, ok)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(true)

	c.Set(ctx, "short", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(ctx, "short")
	assert.False(t, ok)
}

func TestDisabledCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(false)

	c.Set(ctx, "k", "v", 0)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
