// Package ratelimit provides a fixed-window request limiter for the API
// surface. Counters live in Redis so limits hold across restarts and
// replicas; when Redis is unreachable the limiter fails open.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultLimit is the number of requests allowed per window per client
	DefaultLimit = 100
	// DefaultWindow is the fixed window length
	DefaultWindow = 15 * time.Minute
)

// Store defines the counter operations the limiter needs
type Store interface {
	// Incr increments the counter for key, setting the window TTL on first
	// increment, and returns the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed counter store
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Limiter enforces a request budget per client IP
type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

// New creates a limiter with the default budget (100 requests / 15 minutes)
func New(store Store) *Limiter {
	return &Limiter{
		store:  store,
		limit:  DefaultLimit,
		window: DefaultWindow,
	}
}

// NewWithBudget creates a limiter with a custom budget
func NewWithBudget(store Store, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

// Middleware returns a gin middleware enforcing the limit per client IP
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()

		count, err := l.store.Incr(c.Request.Context(), key, l.window)
		if err != nil {
			// Fail open: an unavailable counter store must not take the
			// whole API down
			slog.Warn("Rate limit store unavailable, allowing request",
				"client_ip", c.ClientIP(),
				"error", err)
			c.Next()
			return
		}

		if count > l.limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests from this IP, please try again later.",
			})
			return
		}

		c.Next()
	}
}
