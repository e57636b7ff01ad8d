package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimiter is a fixed-window in-memory limiter for single-replica setups
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	done    chan struct{}
	once    sync.Once
}

type window struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a new rate limiter. Call Stop to end its sweeper.
func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  per,
		done:    make(chan struct{}),
	}
	go rl.cleanup(per * 2)
	return rl
}

func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for key, w := range rl.clients {
				if now.Sub(w.lastReset) > rl.window*2 {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the background sweeper
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// Limit is the number of requests allowed per window
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// Allow consumes one token for key
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, exists := rl.clients[key]
	if !exists || now.Sub(w.lastReset) >= rl.window {
		rl.clients[key] = &window{tokens: rl.limit - 1, lastReset: now}
		return true, rl.limit - 1, nil
	}
	if w.tokens > 0 {
		w.tokens--
		return true, w.tokens, nil
	}
	return false, 0, nil
}

// RedisRateLimiter shares fixed-window counters across replicas
type RedisRateLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

// NewRedisRateLimiter creates a limiter keyed under prefix
func NewRedisRateLimiter(client redis.UniversalClient, prefix string, limit int, per time.Duration) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisRateLimiter{client: client, prefix: prefix, limit: limit, window: per}
}

// Limit is the number of requests allowed per window
func (rl *RedisRateLimiter) Limit() int {
	return rl.limit
}

// Allow increments the counter for the current window
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	redisKey := rl.prefix + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, rl.limit, err
	}

	count := int(incr.Val())
	if count > rl.limit {
		return false, 0, nil
	}
	return true, rl.limit - count, nil
}

// RateLimit limits requests per client IP
func RateLimit(limiter Limiter, log *zap.Logger) gin.HandlerFunc {
	return RateLimitByKey(limiter, log, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey returns a rate limiting middleware with custom key
// extractor. Limiter errors let the request through.
func RateLimitByKey(limiter Limiter, log *zap.Logger, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		allowed, remaining, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
