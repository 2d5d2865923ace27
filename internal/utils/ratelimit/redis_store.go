package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// counter is the subset of the redis client used for fixed windows.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisStore counts requests per client in fixed windows stored in redis.
type RedisStore struct {
	client counter
	window time.Duration
	prefix string
	now    func() time.Time

	mu    sync.RWMutex
	rates map[string]Rate
}

// NewRedisStore creates a shared limiter on top of a redis client.
func NewRedisStore(client counter, defaultRate Rate, window time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		window: window,
		prefix: "ratelimit:",
		now:    time.Now,
		rates:  map[string]Rate{defaultCategory: defaultRate},
	}
}

// SetRate sets a rate limit for a specific category.
func (s *RedisStore) SetRate(category string, rate Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[category] = rate
}

// Allow implements Backend. The window key expires on its own, so nothing needs cleanup.
func (s *RedisStore) Allow(ctx context.Context, category, clientID string) (bool, error) {
	bucket := s.now().UnixNano() / int64(s.window)
	key := fmt.Sprintf("%s%s:%s:%d", s.prefix, category, clientID, bucket)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit expiry: %w", err)
		}
	}

	return count <= s.limit(category), nil
}

// limit returns how many requests a category allows per window.
func (s *RedisStore) limit(category string) int64 {
	s.mu.RLock()
	rate, ok := s.rates[category]
	if !ok {
		rate = s.rates[defaultCategory]
	}
	s.mu.RUnlock()

	perWindow := int64(math.Ceil(rate.RequestsPerSecond*s.window.Seconds() - 1e-9))
	if burst := int64(rate.Burst); burst > perWindow {
		return burst
	}
	return perWindow
}

// Close is a no-op; the redis client is owned by the caller.
func (s *RedisStore) Close() error {
	return nil
}
