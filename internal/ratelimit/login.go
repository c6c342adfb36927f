package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitlane-hq/pitlane/internal/config"
	redis "github.com/redis/go-redis/v9"
)

const keyLogin = "login:%s:%s"

// LoginLimiter throttles credential attempts per email+address pair. A nil
// limiter (no Redis configured) allows everything, so local development
// works without Redis.
type LoginLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewLoginLimiter(cfg config.Config) *LoginLimiter {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})

	return &LoginLimiter{
		bucket: NewTokenBucket(client),
		rate:   cfg.LoginRateLimit,
		burst:  cfg.LoginRateBurst,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) Allow(ctx context.Context, email, remoteAddr string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyLogin,
		strings.ToLower(strings.TrimSpace(email)),
		strings.TrimSpace(remoteAddr),
	)
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
