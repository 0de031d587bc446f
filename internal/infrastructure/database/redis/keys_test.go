package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCartKey(t *testing.T) {
	assert.Equal(t, "cart:01J9ZK3", CartKey("01J9ZK3"))
}

func TestRateLimitKeyWindows(t *testing.T) {
	base := time.Unix(1_700_000_040, 0)

	same := RateLimitKey("10.0.0.1", base.Add(10*time.Second), time.Minute)
	assert.Equal(t, RateLimitKey("10.0.0.1", base, time.Minute), same)

	next := RateLimitKey("10.0.0.1", base.Add(time.Minute), time.Minute)
	assert.NotEqual(t, same, next)
	assert.Contains(t, next, "rate_limit:10.0.0.1:")
}
