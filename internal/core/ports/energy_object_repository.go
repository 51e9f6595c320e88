package ports

import (
	"context"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// EnergyObjectRepository defines persistence operations for energy objects.
type EnergyObjectRepository interface {
	// Create stores the object and assigns its ID.
	Create(ctx context.Context, o *domain.EnergyObject) error
	FindByID(ctx context.Context, id int64) (*domain.EnergyObject, error)
	// Update overwrites every mutable field. Returns domain.ErrEnergyObjectNotFound
	// when no record has o.ID.
	Update(ctx context.Context, o *domain.EnergyObject) error
	Delete(ctx context.Context, id int64) error
	// List returns one page of records matching q and the total match count.
	// q must already be normalised.
	List(ctx context.Context, q domain.ObjectQuery) ([]*domain.EnergyObject, int64, error)
	// All returns every record ordered by ascending ID.
	All(ctx context.Context) ([]*domain.EnergyObject, error)
	Count(ctx context.Context) (int64, error)
}
