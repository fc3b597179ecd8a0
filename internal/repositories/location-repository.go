package repositories

import (
	"context"
	"sort"
	"sync"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

type LocationRepositoryInterface interface {
	CreateLocation(ctx context.Context, location *entities.Location) error
	FindLocation(ctx context.Context, id uint64) (*entities.Location, error)
	GetLocations(ctx context.Context, warehousesOnly bool) ([]entities.Location, error)
}

type LocationRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]entities.Location
	nextID uint64
}

func NewLocationRepository() LocationRepositoryInterface {
	return &LocationRepository{byID: make(map[uint64]entities.Location)}
}

func (r *LocationRepository) CreateLocation(ctx context.Context, location *entities.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	location.ID = r.nextID
	r.byID[location.ID] = *location
	return nil
}

func (r *LocationRepository) FindLocation(ctx context.Context, id uint64) (*entities.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("локация", id)
	}
	return &l, nil
}

func (r *LocationRepository) GetLocations(ctx context.Context, warehousesOnly bool) ([]entities.Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]entities.Location, 0, len(r.byID))
	for _, l := range r.byID {
		if warehousesOnly && !l.IsWarehouse {
			continue
		}
		list = append(list, l)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
