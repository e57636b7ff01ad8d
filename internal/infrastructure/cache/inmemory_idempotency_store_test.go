package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("marks new key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "cf-evt-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("second mark reports duplicate", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "cf-evt-2", time.Hour)
		require.NoError(t, err)

		isNew, err := store.MarkProcessed(ctx, "cf-evt-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired mark can be taken again", func(t *testing.T) {
		now := time.Now()
		store.store.now = func() time.Time { return now }
		defer func() { store.store.now = time.Now }()

		isNew, err := store.MarkProcessed(ctx, "cf-evt-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		now = now.Add(2 * time.Minute)
		processed, err := store.IsProcessed(ctx, "cf-evt-3")
		require.NoError(t, err)
		assert.False(t, processed)

		isNew, err = store.MarkProcessed(ctx, "cf-evt-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	isNew, err := store.MarkProcessed(ctx, "cf-evt-9", time.Hour)
	require.NoError(t, err)
	require.True(t, isNew)

	require.NoError(t, store.Release(ctx, "cf-evt-9"))
	processed, err := store.IsProcessed(ctx, "cf-evt-9")
	require.NoError(t, err)
	assert.False(t, processed)

	isNew, err = store.MarkProcessed(ctx, "cf-evt-9", time.Hour)
	require.NoError(t, err)
	assert.True(t, isNew)

	assert.NoError(t, store.Release(ctx, "never-marked"))
}

func TestInMemoryIdempotencyStore_ConcurrentMarks(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.MarkProcessed(context.Background(), "same-delivery", time.Hour); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestInMemoryIdempotencyStore_Sweep(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	now := time.Now()
	store.store.now = func() time.Time { return now }
	_, _ = store.MarkProcessed(context.Background(), "old", time.Second)
	_, _ = store.MarkProcessed(context.Background(), "fresh", time.Hour)

	now = now.Add(time.Minute)
	store.store.sweep()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_CloseTwice(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
