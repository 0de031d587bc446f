// internal/infrastructure/database/redis/rate_limiter.go
package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed window request counter
type RateLimiter struct {
	client *Client
	window time.Duration
}

// NewRateLimiter creates a limiter counting requests per window
func NewRateLimiter(client *Client, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, window: window}
}

// RateLimitKey returns the counter key of a client for the window containing now
func RateLimitKey(clientKey string, now time.Time, window time.Duration) string {
	return fmt.Sprintf("rate_limit:%s:%d", clientKey, now.Unix()/int64(window.Seconds()))
}

// Hit increments the counter of clientKey and returns the count in the
// current window
func (l *RateLimiter) Hit(ctx context.Context, clientKey string) (int, error) {
	key := RateLimitKey(clientKey, time.Now(), l.window)

	pipe := l.client.Redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count request: %w", err)
	}
	return int(incr.Val()), nil
}
