// internal/cache/redis.go
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"paperforge/internal/common/logger"
)

// Redis backs the proxy response cache when several instances share state.
// Failures degrade to a miss; the proxy then just calls upstream.
type Redis struct {
	client *redis.Client
	prefix string
	log    logger.Logger
}

func NewRedis(client *redis.Client, prefix string, log logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{client: client, prefix: prefix, log: log}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("redis cache get failed", map[string]interface{}{"error": err.Error()})
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.log.Warn("redis cache set failed", map[string]interface{}{"error": err.Error()})
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warn("redis cache delete failed", map[string]interface{}{"error": err.Error()})
	}
}
