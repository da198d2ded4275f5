// File: internal/infra/redis/rate_limiter.go
package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter per key.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	return count <= int64(limit), nil
}

// SeenUpdate records a webhook update id and reports whether it was already
// seen inside the retention window. Telegram redelivers updates when the
// webhook answers slowly, so duplicates are expected.
func (r *RateLimiter) SeenUpdate(ctx context.Context, updateID int, retention time.Duration) (bool, error) {
	fresh, err := r.client.SetNX(ctx, fmt.Sprintf("update_seen:%d", updateID), 1, retention)
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, command)
}
