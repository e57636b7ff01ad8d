package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the cache-backed ports the server wires
type Stores struct {
	// Client is nil when the in-memory fallback is in use
	Client      redis.UniversalClient
	Idempotency shared.IdempotencyStore
	Products    catalog.ProductCache
}

// Close releases the stores and the Redis client
func (s *Stores) Close() error {
	var errs []error
	if s.Idempotency != nil {
		errs = append(errs, s.Idempotency.Close())
	}
	if c, ok := s.Products.(*InMemoryProductCache); ok {
		errs = append(errs, c.Close())
	}
	if s.Client != nil {
		errs = append(errs, s.Client.Close())
	}
	return errors.Join(errs...)
}

// FactoryOption configures NewStores
type FactoryOption func(*factory)

type factory struct {
	logger                *zap.Logger
	allowInMemoryFallback bool
	pingTimeout           time.Duration
}

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// in-memory stores instead of failing. Default true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRedisClient connects and pings Redis
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewStores builds Redis-backed stores when Redis is configured and
// reachable, otherwise in-memory ones.
func NewStores(ctx context.Context, cfg config.RedisConfig, opts ...FactoryOption) (*Stores, error) {
	f := &factory{
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		pingTimeout:           5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled() {
		f.logger.Info("Redis not configured, using in-memory caches")
		return inMemoryStores(), nil
	}

	client, err := NewRedisClient(ctx, cfg, f.pingTimeout)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory caches. "+
			"Webhook deduplication is not shared across replicas.",
			zap.Error(err),
		)
		return inMemoryStores(), nil
	}

	f.logger.Info("using Redis caches", zap.String("addr", cfg.Addr()))
	return &Stores{
		Client:      client,
		Idempotency: NewRedisIdempotencyStore(client, ""),
		Products:    NewRedisProductCache(client, ""),
	}, nil
}

func inMemoryStores() *Stores {
	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(),
		Products:    NewInMemoryProductCache(),
	}
}
