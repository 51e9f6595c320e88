package ports

import (
	"context"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

// ObjectPage is one page of search results.
type ObjectPage struct {
	Items      []*domain.EnergyObject
	Query      domain.ObjectQuery
	Total      int64
	TotalPages int
}

// EnergyObjectService defines use-case operations for the registry.
type EnergyObjectService interface {
	Search(ctx context.Context, q domain.ObjectQuery) (*ObjectPage, error)
	Get(ctx context.Context, id int64) (*domain.EnergyObject, error)
	Create(ctx context.Context, o *domain.EnergyObject) (*domain.EnergyObject, error)
	Update(ctx context.Context, id int64, o *domain.EnergyObject) (*domain.EnergyObject, error)
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]*domain.EnergyObject, error)
	Statistics(ctx context.Context) (*domain.StatisticsReport, error)
}
