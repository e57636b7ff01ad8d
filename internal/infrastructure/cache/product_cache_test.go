package cache

import (
	"context"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryProductCache(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Close()
	ctx := context.Background()

	data, err := c.Get(ctx, "list:p1:s20")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, c.Set(ctx, "list:p1:s20", []byte(`{"items":[]}`), time.Minute))
	require.NoError(t, c.Set(ctx, "list:p2:s20", []byte(`{"items":[]}`), time.Minute))

	data, err = c.Get(ctx, "list:p1:s20")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[]}`, string(data))

	require.NoError(t, c.InvalidateAll(ctx))
	data, err = c.Get(ctx, "list:p2:s20")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestNewStores(t *testing.T) {
	t.Run("in-memory when redis is not configured", func(t *testing.T) {
		stores, err := NewStores(context.Background(), config.RedisConfig{})
		require.NoError(t, err)
		defer stores.Close()

		assert.Nil(t, stores.Client)
		assert.IsType(t, &InMemoryIdempotencyStore{}, stores.Idempotency)
		assert.IsType(t, &InMemoryProductCache{}, stores.Products)
	})

	t.Run("fails without fallback when redis is unreachable", func(t *testing.T) {
		cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		_, err := NewStores(context.Background(), cfg, WithInMemoryFallback(false))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})

	t.Run("falls back when redis is unreachable", func(t *testing.T) {
		cfg := config.RedisConfig{Host: "127.0.0.1", Port: 1}
		stores, err := NewStores(context.Background(), cfg)
		require.NoError(t, err)
		defer stores.Close()
		assert.Nil(t, stores.Client)
	})
}
