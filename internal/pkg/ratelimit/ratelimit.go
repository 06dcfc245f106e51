// internal/pkg/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 15 * time.Minute
)

// LoginLimiter throttles credential checks per ip+email. A nil redis client
// disables limiting (deployments without redis).
type LoginLimiter struct {
	client *redis.Client
}

func NewLoginLimiter(client *redis.Client) *LoginLimiter {
	return &LoginLimiter{client: client}
}

// Allow records a login attempt and reports whether it is still within the
// allowed budget.
func (r *LoginLimiter) Allow(ctx context.Context, ip, email string) (bool, error) {
	if r == nil || r.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment login attempt: %w", err)
	}

	// Set expiration on first attempt
	if count == 1 {
		r.client.Expire(ctx, key, loginWindow)
	}

	return count <= maxLoginAttempts, nil
}

// Reset clears the attempt counter after a successful login.
func (r *LoginLimiter) Reset(ctx context.Context, ip, email string) error {
	if r == nil || r.client == nil {
		return nil
	}
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, email)
	return r.client.Del(ctx, key).Err()
}
