// internal/cache/cache.go
// Package cache provides the byte caches used by the assembler (validated
// source bytes) and the proxy (last known-good upstream responses). Both are
// best-effort: a miss or a failed store never fails the caller.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}
