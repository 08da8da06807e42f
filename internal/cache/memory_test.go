// internal/cache/memory_test.go
package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("alpha"), time.Minute)

	val, ok := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("alpha"), val)

	_, ok = m.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestMemory_TTLExpiry(t *testing.T) {
	m := NewMemory(4)
	ctx := context.Background()

	current := time.Now()
	m.now = func() time.Time { return current }

	m.Set(ctx, "a", []byte("alpha"), time.Minute)

	current = current.Add(30 * time.Second)
	_, ok := m.Get(ctx, "a")
	assert.True(t, ok)

	current = current.Add(31 * time.Second)
	_, ok = m.Get(ctx, "a")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len(), "expired entry is removed on read")
}

func TestMemory_LRUEviction(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("alpha"), time.Minute)
	m.Set(ctx, "b", []byte("beta"), time.Minute)

	// Touch "a" so "b" becomes the eviction candidate.
	m.Get(ctx, "a")
	m.Set(ctx, "c", []byte("gamma"), time.Minute)

	_, ok := m.Get(ctx, "a")
	assert.True(t, ok)
	_, ok = m.Get(ctx, "b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = m.Get(ctx, "c")
	assert.True(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestMemory_UpdateExistingKey(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("v1"), time.Minute)
	m.Set(ctx, "a", []byte("v2"), time.Minute)

	val, ok := m.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), val)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()

	m.Set(ctx, "a", []byte("alpha"), time.Minute)
	m.Delete(ctx, "a")
	m.Delete(ctx, "a") // idempotent

	_, ok := m.Get(ctx, "a")
	assert.False(t, ok)
}
