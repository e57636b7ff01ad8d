package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		allowed, remaining, err := rl.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, i, remaining)
	}

	allowed, _, err := rl.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, _, _ = rl.Allow(ctx, "5.6.7.8")
	assert.True(t, allowed, "keys are independent")
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()
	ctx := context.Background()

	allowed, _, _ := rl.Allow(ctx, "k")
	require.True(t, allowed)
	allowed, _, _ = rl.Allow(ctx, "k")
	require.False(t, allowed)

	time.Sleep(30 * time.Millisecond)
	allowed, _, _ = rl.Allow(ctx, "k")
	assert.True(t, allowed)
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	router := gin.New()
	router.Use(RateLimit(rl, nil))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		codes = append(codes, w.Code)
		if i == 0 {
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
		}
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, int, error) {
	return false, 0, errors.New("redis down")
}
func (brokenLimiter) Limit() int { return 1 }

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(brokenLimiter{}, nil))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
