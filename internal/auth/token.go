// Package auth issues and verifies session tokens, hashes passwords and
// defines the authorization predicates applied to a resolved identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chirp/internal/cache"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "chirp-api"
	Audience = "chirp-client"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims is the verified content of a session token.
type Claims struct {
	UserID    uint
	JTI       string
	ExpiresAt time.Time
}

// TokenManager signs HS256 session tokens and tracks revocations in Redis.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	now    func() time.Time
}

// NewTokenManager returns a manager issuing tokens valid for expiryDays.
// rdb may be nil, in which case revocation is not tracked.
func NewTokenManager(secret string, expiryDays int, rdb *redis.Client) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    time.Duration(expiryDays) * 24 * time.Hour,
		rdb:    rdb,
		now:    time.Now,
	}
}

// TTL is the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for userID.
func (m *TokenManager) Issue(userID uint) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}

	now := m.now()
	expires := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature, issuer, audience, expiry and revocation.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	var rc jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &rc, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(rc.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}

	if m.rdb != nil && rc.ID != "" {
		n, err := m.rdb.Exists(ctx, cache.BlacklistKey(rc.ID)).Result()
		if err == nil && n > 0 {
			return nil, ErrRevokedToken
		}
	}

	return &Claims{UserID: uint(userID), JTI: rc.ID, ExpiresAt: rc.ExpiresAt.Time}, nil
}

// Revoke blacklists the token's jti for the rest of its lifetime.
func (m *TokenManager) Revoke(ctx context.Context, c *Claims) error {
	if m.rdb == nil || c == nil || c.JTI == "" {
		return nil
	}
	remaining := c.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, cache.BlacklistKey(c.JTI), "1", remaining).Err()
}
