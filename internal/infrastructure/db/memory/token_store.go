package memory

import (
	"context"
	"sync"
	"time"
)

// TokenStore keeps revocations in process. Expired entries are dropped lazily
// on lookup.
type TokenStore struct {
	mu      sync.Mutex
	tokens  map[string]time.Time
	users   map[int64]userRevocation
	nowFunc func() time.Time
}

type userRevocation struct {
	at      time.Time
	expires time.Time
}

func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens:  make(map[string]time.Time),
		users:   make(map[int64]userRevocation),
		nowFunc: time.Now,
	}
}

func (s *TokenStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[jti] = expiresAt
	return nil
}

func (s *TokenStore) RevokeUser(_ context.Context, userID int64, at time.Time, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = userRevocation{at: at, expires: s.nowFunc().Add(ttl)}
	return nil
}

func (s *TokenStore) IsRevoked(_ context.Context, jti string, userID int64, issuedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	if exp, ok := s.tokens[jti]; ok {
		if now.Before(exp) {
			return true, nil
		}
		delete(s.tokens, jti)
	}
	if rev, ok := s.users[userID]; ok {
		if !now.Before(rev.expires) {
			delete(s.users, userID)
			return false, nil
		}
		if issuedAt.UnixMilli() <= rev.at.UnixMilli() {
			return true, nil
		}
	}
	return false, nil
}
