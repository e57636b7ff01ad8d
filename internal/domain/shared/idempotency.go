package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed keys (webhook event ids) for a TTL
type IdempotencyStore interface {
	// MarkProcessed returns true if the key was newly marked, false if it was already processed
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets key so a later delivery is processed again
	Release(ctx context.Context, key string) error

	Close() error
}
