package ports

import (
	"context"
	"time"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// Session is an issued login token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Claims is the verified identity carried by a session token.
type Claims struct {
	UserID   int64
	Username string
	Roles    domain.RoleSet
	TokenID  string
	IssuedAt time.Time
	Expires  time.Time
}

type AuthService interface {
	Register(ctx context.Context, in domain.Registration) (*domain.User, error)
	// Login accepts a username or an email as identifier.
	Login(ctx context.Context, identifier, password string) (*Session, *domain.User, error)
	// Authenticate verifies a token and checks it against the revocation store.
	Authenticate(ctx context.Context, token string) (*Claims, error)
	Logout(ctx context.Context, claims *Claims) error
}
