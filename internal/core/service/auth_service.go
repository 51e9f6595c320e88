package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

// sessionClaims is the JWT payload of a login session.
// IssuedAtMs refines iat, which carries whole seconds, so that a login right
// after a user-wide revocation is not caught by it.
type sessionClaims struct {
	Username   string   `json:"username"`
	Roles      []string `json:"roles"`
	IssuedAtMs int64    `json:"iat_ms,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and session verification.
type AuthService struct {
	repo      ports.UserRepository
	tokens    ports.TokenStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAuthService(repo ports.UserRepository, tokens ports.TokenStore, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates an account holding only the USER role.
func (s *AuthService) Register(ctx context.Context, in domain.Registration) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        domain.NewRoleSet(domain.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", in.Username).Msg("failed to create user")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Login verifies the password of the account identified by username or email
// and issues a session token. Unknown accounts and wrong passwords both yield
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.Session, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.findByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.generateToken(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user logged in")
	return session, user, nil
}

func (s *AuthService) findByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, domain.ErrUserNotFound) {
		return user, err
	}
	if !strings.Contains(identifier, "@") {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, identifier)
}

// Authenticate parses and verifies a session token. Revoked tokens yield
// domain.ErrUnauthenticated; a failing revocation store is reported as-is so
// the caller can fail closed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*ports.Claims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.ErrUnauthenticated
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" || claims.IssuedAt == nil {
		return nil, domain.ErrUnauthenticated
	}

	out := &ports.Claims{
		UserID:   userID,
		Username: claims.Username,
		Roles:    domain.RoleSetFromStrings(claims.Roles),
		TokenID:  claims.ID,
		IssuedAt: claims.IssuedAt.Time,
		Expires:  claims.ExpiresAt.Time,
	}
	if claims.IssuedAtMs > 0 {
		out.IssuedAt = time.UnixMilli(claims.IssuedAtMs)
	}

	revoked, err := s.tokens.IsRevoked(ctx, out.TokenID, out.UserID, out.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if revoked {
		return nil, domain.ErrUnauthenticated
	}
	return out, nil
}

// Logout revokes the session's token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *ports.Claims) error {
	if claims == nil || claims.TokenID == "" {
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.TokenID, claims.Expires); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Int64("user_id", claims.UserID).Msg("user logged out")
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (*ports.Session, error) {
	now := s.now()
	expires := now.Add(s.tokenTTL)

	claims := sessionClaims{
		Username:   user.Username,
		Roles:      user.Roles.Strings(),
		IssuedAtMs: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &ports.Session{Token: signed, ExpiresAt: expires}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
