package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/desertthunder/ytlinks/internal/models"
	"github.com/desertthunder/ytlinks/internal/shared"
)

const issuer = "ytlinks"

// DefaultTokenTTL is used when no lifetime is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Claims are the JWT claims of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// TokenIssuer signs and verifies session tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a [TokenIssuer]. A non-positive ttl falls back to [DefaultTokenTTL].
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a new token for user.
func (i *TokenIssuer) Issue(user *models.User) (string, *Claims, error) {
	now := i.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        shared.GenerateID(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: user.ID,
		Email:  user.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, claims, nil
}

// Parse verifies a token and returns its claims.
//
// Expired tokens return [shared.ErrTokenExpired]; anything else that fails
// verification returns [shared.ErrInvalidToken].
func (i *TokenIssuer) Parse(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID <= 0 || claims.ID == "" {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}

type claimsKey struct{}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFrom returns the claims stored by [WithClaims].
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
