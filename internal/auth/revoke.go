package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker records token ids that must no longer be accepted.
type Revoker interface {
	// Revoke blocks jti until expiresAt, after which the token is expired anyway.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryRevoker keeps revocations in process memory.
type MemoryRevoker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevoker creates an empty [MemoryRevoker].
func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{entries: make(map[string]time.Time), now: time.Now}
}

func (m *MemoryRevoker) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purge()
	m.entries[jti] = expiresAt
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// purge drops expired entries. Callers hold mu.
func (m *MemoryRevoker) purge() {
	now := m.now()
	for jti, until := range m.entries {
		if !now.Before(until) {
			delete(m.entries, jti)
		}
	}
}

// RedisRevoker keeps revocations in Redis with a TTL matching the token lifetime.
type RedisRevoker struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRevoker creates a [RedisRevoker] storing keys under "ytlinks:revoked:".
func NewRedisRevoker(rdb redis.UniversalClient) *RedisRevoker {
	return &RedisRevoker{rdb: rdb, prefix: "ytlinks:revoked:", now: time.Now}
}

func (r *RedisRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.prefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return n > 0, nil
}
