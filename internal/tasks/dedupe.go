package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper guards against the same link being queued twice for one use.
type Deduper interface {
	// Acquire returns false when key is already held.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryDeduper holds keys in process until released or expired.
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MemoryDeduper{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryDeduper) Acquire(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.keys[key] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryDeduper) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// RedisDeduper shares dedupe keys between processes via SETNX.
type RedisDeduper struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisDeduper(rdb redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisDeduper{rdb: rdb, ttl: ttl, prefix: "ytlinks:dispatch:"}
}

func (r *RedisDeduper) Acquire(ctx context.Context, key string) (bool, error) {
	return r.rdb.SetNX(ctx, r.prefix+key, 1, r.ttl).Result()
}

func (r *RedisDeduper) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}
