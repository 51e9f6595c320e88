package ports

import (
	"context"
	"time"
)

// TokenStore tracks revoked session tokens.
type TokenStore interface {
	// Revoke marks a single token id as revoked until its expiry.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// RevokeUser invalidates every token of the user issued at or before at,
	// compared with millisecond precision.
	// ttl bounds how long the marker is kept and should match the token lifetime.
	RevokeUser(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
	// IsRevoked reports whether a token was revoked directly or by a user-wide
	// revocation issued after it.
	IsRevoked(ctx context.Context, jti string, userID int64, issuedAt time.Time) (bool, error)
}
