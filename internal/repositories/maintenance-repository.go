package repositories

import (
	"context"
	"sync"

	"inventory-system/internal/entities"
)

type MaintenanceRepositoryInterface interface {
	CreateMaintenance(ctx context.Context, record *entities.MaintenanceRecord) error
	FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRecord, error)
}

type MaintenanceRepository struct {
	mu          sync.RWMutex
	byEquipment map[uint64][]entities.MaintenanceRecord
	nextID      uint64
}

func NewMaintenanceRepository() MaintenanceRepositoryInterface {
	return &MaintenanceRepository{byEquipment: make(map[uint64][]entities.MaintenanceRecord)}
}

func (r *MaintenanceRepository) CreateMaintenance(ctx context.Context, record *entities.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	record.ID = r.nextID
	r.byEquipment[record.EquipmentID] = append(r.byEquipment[record.EquipmentID], *record)
	return nil
}

func (r *MaintenanceRepository) FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.MaintenanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]entities.MaintenanceRecord, len(r.byEquipment[equipmentID]))
	copy(result, r.byEquipment[equipmentID])
	return result, nil
}
