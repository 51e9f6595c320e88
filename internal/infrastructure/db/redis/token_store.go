package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps session revocations in Redis.
// Key formats:
//
//	revoked:jti:<token_id>  → "1", expires with the token
//	revoked:user:<user_id>  → unix milliseconds of the revocation, expires after the token TTL
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Revoke marks a token id as revoked until expiresAt. Already expired tokens
// need no marker.
func (s *TokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) RevokeUser(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, userKey(userID), at.UnixMilli(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// IsRevoked checks both keys in one round trip.
func (s *TokenStore) IsRevoked(ctx context.Context, jti string, userID int64, issuedAt time.Time) (bool, error) {
	pipe := s.client.Pipeline()
	exists := pipe.Exists(ctx, jtiKey(jti))
	since := pipe.Get(ctx, userKey(userID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("revocation check: %w", err)
	}

	if exists.Val() > 0 {
		return true, nil
	}

	raw, err := since.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	at, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("revocation check: bad marker %q: %w", raw, err)
	}
	return issuedAt.UnixMilli() <= at, nil
}

func jtiKey(jti string) string {
	return "revoked:jti:" + jti
}

func userKey(userID int64) string {
	return fmt.Sprintf("revoked:user:%d", userID)
}
