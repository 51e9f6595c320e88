package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

// UserService implements account administration and password changes.
type UserService struct {
	repo     ports.UserRepository
	tokens   ports.TokenStore
	tokenTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewUserService(repo ports.UserRepository, tokens ports.TokenStore, tokenTTL time.Duration, logger zerolog.Logger) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{repo: repo, tokens: tokens, tokenTTL: tokenTTL, logger: logger, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// ReplaceRoles sets the role set of a user and invalidates the user's existing
// sessions so the change takes effect on the next request.
func (s *UserService) ReplaceRoles(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if roles == nil {
		roles = domain.RoleSet{}
	}

	if err := s.repo.UpdateRoles(ctx, id, roles); err != nil {
		return nil, fmt.Errorf("update roles: %w", err)
	}
	user.Roles = roles.Clone()
	user.UpdatedAt = s.now().UTC()

	if len(roles) == 0 {
		s.logger.Warn().Int64("user_id", id).Msg("user left without roles")
	}
	s.revokeSessions(ctx, id)

	s.logger.Info().Int64("user_id", id).Strs("roles", roles.Strings()).Msg("user roles replaced")
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.revokeSessions(ctx, id)

	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, id int64, current, next string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrPasswordMismatch
	}
	if len(next) < domain.MinPasswordLength {
		ve := &domain.ValidationError{}
		ve.Add("new_password", fmt.Sprintf("must be at least %d characters", domain.MinPasswordLength))
		return ve
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info().Int64("user_id", id).Msg("password changed")
	return nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// revokeSessions is best effort: the store write has already succeeded and
// tokens expire on their own.
func (s *UserService) revokeSessions(ctx context.Context, id int64) {
	if err := s.tokens.RevokeUser(ctx, id, s.now(), s.tokenTTL); err != nil {
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to revoke user sessions")
	}
}
