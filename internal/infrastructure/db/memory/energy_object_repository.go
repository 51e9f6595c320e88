// Package memory provides mutex-guarded in-process implementations of the
// repository and token-store ports. It backs STORAGE_DRIVER=memory and tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/energycompany/energy-registry/internal/core/domain"
)

type EnergyObjectRepository struct {
	mu      sync.RWMutex
	objects map[int64]*domain.EnergyObject
	nextID  int64
}

func NewEnergyObjectRepository() *EnergyObjectRepository {
	return &EnergyObjectRepository{objects: make(map[int64]*domain.EnergyObject)}
}

func (r *EnergyObjectRepository) Create(_ context.Context, o *domain.EnergyObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	o.ID = r.nextID
	r.objects[o.ID] = o.Clone()
	return nil
}

func (r *EnergyObjectRepository) FindByID(_ context.Context, id int64) (*domain.EnergyObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.objects[id]
	if !ok {
		return nil, domain.ErrEnergyObjectNotFound
	}
	return o.Clone(), nil
}

func (r *EnergyObjectRepository) Update(_ context.Context, o *domain.EnergyObject) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[o.ID]; !ok {
		return domain.ErrEnergyObjectNotFound
	}
	r.objects[o.ID] = o.Clone()
	return nil
}

func (r *EnergyObjectRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.objects[id]; !ok {
		return domain.ErrEnergyObjectNotFound
	}
	delete(r.objects, id)
	return nil
}

// List filters by keyword, sorts, then slices the requested page.
func (r *EnergyObjectRepository) List(_ context.Context, q domain.ObjectQuery) ([]*domain.EnergyObject, int64, error) {
	r.mu.RLock()
	matched := make([]*domain.EnergyObject, 0, len(r.objects))
	for _, o := range r.objects {
		if q.Matches(o) {
			matched = append(matched, o.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matched, q.Compare)

	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []*domain.EnergyObject{}, total, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *EnergyObjectRepository) All(_ context.Context) ([]*domain.EnergyObject, error) {
	r.mu.RLock()
	out := make([]*domain.EnergyObject, 0, len(r.objects))
	for _, o := range r.objects {
		out = append(out, o.Clone())
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *domain.EnergyObject) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *EnergyObjectRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.objects)), nil
}
