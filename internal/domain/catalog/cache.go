package catalog

import (
	"context"
	"time"
)

// ProductCache stores serialized product listings.
// Get returns (nil, nil) on a miss.
type ProductCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// InvalidateAll drops every cached listing after a catalog write
	InvalidateAll(ctx context.Context) error
}
