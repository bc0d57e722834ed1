package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"polychat/internal/ai"
)

// ReplyCache stores assistant replies keyed by the exact provider input, so a
// repeated window short-circuits the remote call. Misses and backend faults
// are both reported as "not found"; the caller falls through to the provider.
type ReplyCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, reply string)
}

// Key derives a stable cache key from the system prompt and the message
// window handed to a provider.
func Key(system string, messages []ai.Message) string {
	h := sha256.New()
	h.Write([]byte(system))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return fmt.Sprintf("polychat:reply:%x", h.Sum(nil))
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, key, reply string) {
	_ = c.rdb.Set(ctx, key, reply, c.ttl).Err()
}

func (c *RedisCache) Close() error { return c.rdb.Close() }
