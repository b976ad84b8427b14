package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

func TestTokenIssuer(t *testing.T) {
	user := &models.User{ID: 42, Email: "user@example.com"}

	t.Run("Issue And Parse", func(t *testing.T) {
		issuer := NewTokenIssuer("super-secret", time.Hour)

		token, claims, err := issuer.Issue(user)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.NotEmpty(t, claims.ID)

		parsed, err := issuer.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), parsed.UserID)
		assert.Equal(t, "user@example.com", parsed.Email)
		assert.Equal(t, claims.ID, parsed.ID)
	})

	t.Run("Unique Token IDs", func(t *testing.T) {
		issuer := NewTokenIssuer("secret", time.Hour)
		_, a, err := issuer.Issue(user)
		require.NoError(t, err)
		_, b, err := issuer.Issue(user)
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("Expired", func(t *testing.T) {
		issuer := NewTokenIssuer("secret", time.Minute)
		issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

		token, _, err := issuer.Issue(user)
		require.NoError(t, err)

		issuer.now = time.Now
		_, err = issuer.Parse(token)
		assert.ErrorIs(t, err, shared.ErrTokenExpired)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		token, _, err := NewTokenIssuer("right", time.Hour).Issue(user)
		require.NoError(t, err)

		_, err = NewTokenIssuer("wrong", time.Hour).Parse(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := NewTokenIssuer("k", time.Hour).Parse("not.a.jwt")
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("Rejects none algorithm", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: issuer, ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
			UserID:           1,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = NewTokenIssuer("k", time.Hour).Parse(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("Default TTL", func(t *testing.T) {
		issuer := NewTokenIssuer("k", 0)
		assert.Equal(t, DefaultTokenTTL, issuer.ttl)
	})
}

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := ClaimsFrom(ctx); ok {
		t.Fatal("empty context should have no claims")
	}

	ctx = WithClaims(ctx, &Claims{UserID: 7})
	claims, ok := ClaimsFrom(ctx)
	if !ok || claims.UserID != 7 {
		t.Errorf("expected claims for user 7, got %+v", claims)
	}
}

func TestRevokers(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	revokers := map[string]Revoker{
		"memory": NewMemoryRevoker(),
		"redis":  NewRedisRevoker(rdb),
	}

	for name, revoker := range revokers {
		t.Run(name, func(t *testing.T) {
			revoked, err := revoker.IsRevoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.False(t, revoked)

			require.NoError(t, revoker.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))

			revoked, err = revoker.IsRevoked(ctx, "jti-1")
			require.NoError(t, err)
			assert.True(t, revoked)

			revoked, err = revoker.IsRevoked(ctx, "jti-2")
			require.NoError(t, err)
			assert.False(t, revoked)
		})
	}

	t.Run("memory expiry", func(t *testing.T) {
		m := NewMemoryRevoker()
		require.NoError(t, m.Revoke(ctx, "old", time.Now().Add(time.Minute)))

		m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		revoked, err := m.IsRevoked(ctx, "old")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("redis expiry", func(t *testing.T) {
		r := NewRedisRevoker(rdb)
		require.NoError(t, r.Revoke(ctx, "short", time.Now().Add(time.Minute)))

		mr.FastForward(2 * time.Minute)
		revoked, err := r.IsRevoked(ctx, "short")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("redis unavailable", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
		t.Cleanup(func() { broken.Close() })

		_, err := NewRedisRevoker(broken).IsRevoked(ctx, "x")
		assert.Error(t, err)
		assert.False(t, errors.Is(err, shared.ErrTokenRevoked))
	})
}
