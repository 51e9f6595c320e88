package ports

import (
	"context"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	// Create stores the user and assigns its ID. Returns domain.ErrUsernameTaken
	// or domain.ErrEmailTaken on a uniqueness conflict.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns every user ordered by ascending ID.
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateRoles replaces the role set.
	UpdateRoles(ctx context.Context, id int64, roles domain.RoleSet) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
