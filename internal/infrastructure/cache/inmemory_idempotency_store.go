package cache

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore remembers processed webhook ids in process memory.
// Instances do not share state, so a second replica may process a delivery
// again; use the Redis store when running more than one.
type InMemoryIdempotencyStore struct {
	store *memStore
}

// NewInMemoryIdempotencyStore creates the store and starts its sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{store: newMemStore(5 * time.Minute)}
}

// MarkProcessed returns true if key was newly marked
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.store.setNX(key, nil, ttl), nil
}

// IsProcessed reports an unexpired mark for key
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	_, ok := s.store.get(key)
	return ok, nil
}

// Release forgets key
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.store.delete(key)
	return nil
}

// Close stops the sweeper; safe to call twice
func (s *InMemoryIdempotencyStore) Close() error {
	s.store.close()
	return nil
}

// Size returns the number of stored marks, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.store.size()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
