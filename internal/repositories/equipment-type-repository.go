package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
)

type EquipmentTypeRepositoryInterface interface {
	CreateEquipmentType(ctx context.Context, equipmentType *entities.EquipmentType) error
	FindEquipmentType(ctx context.Context, id uint64) (*entities.EquipmentType, error)
	FindByName(ctx context.Context, name string) (*entities.EquipmentType, error)
	GetEquipmentTypes(ctx context.Context) ([]entities.EquipmentType, error)
}

type EquipmentTypeRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]entities.EquipmentType
	nextID uint64
}

func NewEquipmentTypeRepository() EquipmentTypeRepositoryInterface {
	return &EquipmentTypeRepository{byID: make(map[uint64]entities.EquipmentType)}
}

func (r *EquipmentTypeRepository) CreateEquipmentType(ctx context.Context, equipmentType *entities.EquipmentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if strings.EqualFold(existing.Name, equipmentType.Name) {
			return apperrors.NewValidationError("name", "тип оборудования «%s» уже существует", equipmentType.Name)
		}
	}
	r.nextID++
	equipmentType.ID = r.nextID
	equipmentType.Touch(time.Now())
	r.byID[equipmentType.ID] = *equipmentType
	return nil
}

func (r *EquipmentTypeRepository) FindEquipmentType(ctx context.Context, id uint64) (*entities.EquipmentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("тип оборудования", id)
	}
	return &t, nil
}

func (r *EquipmentTypeRepository) FindByName(ctx context.Context, name string) (*entities.EquipmentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.byID {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			found := t
			return &found, nil
		}
	}
	return nil, apperrors.NewNotFoundError("тип оборудования", name)
}

func (r *EquipmentTypeRepository) GetEquipmentTypes(ctx context.Context) ([]entities.EquipmentType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]entities.EquipmentType, 0, len(r.byID))
	for _, t := range r.byID {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
