// Package viewmark remembers which visitor has already viewed which content
// item so repeat views are not counted.
package viewmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Marker is read before every increment and written once after it.
type Marker interface {
	Seen(ctx context.Context, visitor, kind, id string) (bool, error)
	// Mark records the view and reports whether it was the first one.
	Mark(ctx context.Context, visitor, kind, id string) (bool, error)
}

func key(visitor, kind, id string) string {
	return fmt.Sprintf("view:%s:%s:%s", visitor, kind, id)
}

// RedisMarker stores marks as keys without expiry so they survive restarts
// and are shared across instances.
type RedisMarker struct {
	Client *redis.Client
}

func NewRedisMarker(client *redis.Client) *RedisMarker {
	return &RedisMarker{Client: client}
}

func (m *RedisMarker) Seen(ctx context.Context, visitor, kind, id string) (bool, error) {
	n, err := m.Client.Exists(ctx, key(visitor, kind, id)).Result()
	if err != nil {
		return false, fmt.Errorf("check view mark: %w", err)
	}
	return n > 0, nil
}

func (m *RedisMarker) Mark(ctx context.Context, visitor, kind, id string) (bool, error) {
	ok, err := m.Client.SetNX(ctx, key(visitor, kind, id), 1, 0).Result()
	if err != nil {
		return false, fmt.Errorf("set view mark: %w", err)
	}
	return ok, nil
}

// Defaults for the in-memory marker.
const (
	DefaultMemorySize = 10000
	DefaultMemoryTTL  = 24 * time.Hour
)

// MemoryMarker is the single-instance fallback used when Redis is absent.
// It keeps at most size marks, each for ttl, evicting the least recently used
// first, so minting new visitor ids cannot grow it without bound.
type MemoryMarker struct {
	mu   sync.Mutex
	seen *expirable.LRU[string, struct{}]
}

// NewMemoryMarker falls back to the defaults for non-positive arguments.
func NewMemoryMarker(size int, ttl time.Duration) *MemoryMarker {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryMarker{seen: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

func (m *MemoryMarker) Seen(_ context.Context, visitor, kind, id string) (bool, error) {
	return m.seen.Contains(key(visitor, kind, id)), nil
}

func (m *MemoryMarker) Mark(_ context.Context, visitor, kind, id string) (bool, error) {
	k := key(visitor, kind, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen.Contains(k) {
		return false, nil
	}
	m.seen.Add(k, struct{}{})
	return true, nil
}

// Len reports how many marks are currently held.
func (m *MemoryMarker) Len() int { return m.seen.Len() }
