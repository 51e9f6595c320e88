package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/energycompany/energy-registry/internal/core/domain"
	"github.com/energycompany/energy-registry/internal/core/ports"
)

type EnergyObjectService struct {
	repo   ports.EnergyObjectRepository
	logger zerolog.Logger
}

func NewEnergyObjectService(repo ports.EnergyObjectRepository, logger zerolog.Logger) *EnergyObjectService {
	return &EnergyObjectService{repo: repo, logger: logger}
}

// Search returns one page of energy objects. The query is normalised first, so
// out-of-range paging values never produce an error.
func (s *EnergyObjectService) Search(ctx context.Context, q domain.ObjectQuery) (*ports.ObjectPage, error) {
	q = q.Normalize()

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search energy objects: %w", err)
	}
	if items == nil {
		items = []*domain.EnergyObject{}
	}

	return &ports.ObjectPage{
		Items:      items,
		Query:      q,
		Total:      total,
		TotalPages: q.TotalPages(total),
	}, nil
}

func (s *EnergyObjectService) Get(ctx context.Context, id int64) (*domain.EnergyObject, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Create validates the input and stores it under a fresh ID.
func (s *EnergyObjectService) Create(ctx context.Context, o *domain.EnergyObject) (*domain.EnergyObject, error) {
	o.ID = 0
	o.Normalize()
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		s.logger.Error().Err(err).Str("name", o.Name).Msg("failed to create energy object")
		return nil, fmt.Errorf("create energy object: %w", err)
	}

	s.logger.Info().Int64("id", o.ID).Str("name", o.Name).Str("type", o.Type).Msg("energy object created")
	return o, nil
}

// Update overwrites every mutable field of the object with id. A record
// removed concurrently yields domain.ErrEnergyObjectNotFound.
func (s *EnergyObjectService) Update(ctx context.Context, id int64, in *domain.EnergyObject) (*domain.EnergyObject, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current.ApplyFrom(in)

	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, domain.ErrEnergyObjectNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to update energy object")
		return nil, fmt.Errorf("update energy object: %w", err)
	}

	s.logger.Info().Int64("id", id).Msg("energy object updated")
	return current, nil
}

func (s *EnergyObjectService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrEnergyObjectNotFound) {
			s.logger.Warn().Int64("id", id).Msg("delete of missing energy object")
			return err
		}
		s.logger.Error().Err(err).Int64("id", id).Msg("failed to delete energy object")
		return fmt.Errorf("delete energy object: %w", err)
	}

	s.logger.Info().Int64("id", id).Msg("energy object deleted")
	return nil
}

// All returns every record ordered by ID.
func (s *EnergyObjectService) All(ctx context.Context) ([]*domain.EnergyObject, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list energy objects: %w", err)
	}
	if items == nil {
		items = []*domain.EnergyObject{}
	}
	return items, nil
}

// Statistics aggregates the full record set.
func (s *EnergyObjectService) Statistics(ctx context.Context) (*domain.StatisticsReport, error) {
	items, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	return domain.Aggregate(items), nil
}
