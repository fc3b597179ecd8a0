package repositories

import (
	"context"
	"sync"

	"inventory-system/internal/entities"
)

type HistoryRepositoryInterface interface {
	Append(ctx context.Context, event *entities.HistoryEvent) error
	FindByEquipmentID(ctx context.Context, equipmentID uint64, limit, offset uint64) ([]entities.HistoryEvent, error)
	CountByEquipmentID(ctx context.Context, equipmentID uint64) (uint64, error)
}

// HistoryRepository - журнал только на дозапись. Записи по оборудованию хранятся в порядке добавления.
type HistoryRepository struct {
	mu          sync.RWMutex
	byEquipment map[uint64][]entities.HistoryEvent
	nextID      uint64
}

func NewHistoryRepository() HistoryRepositoryInterface {
	return &HistoryRepository{byEquipment: make(map[uint64][]entities.HistoryEvent)}
}

func (r *HistoryRepository) Append(ctx context.Context, event *entities.HistoryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	r.byEquipment[event.EquipmentID] = append(r.byEquipment[event.EquipmentID], *event)
	return nil
}

// FindByEquipmentID: limit = 0 означает "все записи".
func (r *HistoryRepository) FindByEquipmentID(ctx context.Context, equipmentID uint64, limit, offset uint64) ([]entities.HistoryEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.byEquipment[equipmentID]
	total := uint64(len(events))
	if offset >= total {
		return []entities.HistoryEvent{}, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	result := make([]entities.HistoryEvent, end-offset)
	copy(result, events[offset:end])
	return result, nil
}

func (r *HistoryRepository) CountByEquipmentID(ctx context.Context, equipmentID uint64) (uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.byEquipment[equipmentID])), nil
}
