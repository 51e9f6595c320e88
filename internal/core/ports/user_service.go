package ports

import (
	"context"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// UserService defines account administration and self-service operations.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	// ReplaceRoles sets the user's roles to exactly roles. An empty set leaves
	// the user with no roles.
	ReplaceRoles(ctx context.Context, id int64, roles domain.RoleSet) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, current, next string) error
	Count(ctx context.Context) (int64, error)
}
