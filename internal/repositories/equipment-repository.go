package repositories

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/types"
)

// Фильтры, которые понимает список оборудования.
var equipmentAllowedFilterColumns = []string{"state", "equipment_type_id", "responsible_user_id", "location_id"}

type EquipmentRepositoryInterface interface {
	CreateEquipment(ctx context.Context, equipment *entities.Equipment) error
	UpdateEquipment(ctx context.Context, equipment entities.Equipment) error
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindByAssetCode(ctx context.Context, assetCode string) (*entities.Equipment, error)
	GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error)
	// FindHeldByUser - оборудование, где пользователь ответственный или ждет возврата после обслуживания.
	FindHeldByUser(ctx context.Context, userID uint64) ([]entities.Equipment, error)
	// Snapshot - вся коллекция на момент вызова, для отчетов только на чтение.
	Snapshot(ctx context.Context) ([]entities.Equipment, error)
}

// EquipmentRepository - индексированное хранилище в памяти: по ID и по инвентарному номеру.
type EquipmentRepository struct {
	mu          sync.RWMutex
	byID        map[uint64]entities.Equipment
	byAssetCode map[string]uint64
	nextID      uint64
}

func NewEquipmentRepository() EquipmentRepositoryInterface {
	return &EquipmentRepository{
		byID:        make(map[uint64]entities.Equipment),
		byAssetCode: make(map[string]uint64),
	}
}

func normalizeAssetCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment *entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := normalizeAssetCode(equipment.AssetCode)
	if _, exists := r.byAssetCode[code]; exists {
		return apperrors.NewValidationError("asset_code", "инвентарный номер %s уже занят", equipment.AssetCode)
	}

	r.nextID++
	equipment.ID = r.nextID
	equipment.Touch(time.Now())

	r.byID[equipment.ID] = equipment.Clone()
	r.byAssetCode[code] = equipment.ID
	return nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment entities.Equipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[equipment.ID]
	if !ok {
		return apperrors.NewNotFoundError("оборудование", equipment.ID)
	}
	// Инвентарный номер неизменяем.
	equipment.AssetCode = current.AssetCode
	equipment.CreatedAt = current.CreatedAt
	equipment.UpdatedAt = time.Now()

	r.byID[equipment.ID] = equipment.Clone()
	return nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	equipment, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("оборудование", id)
	}
	clone := equipment.Clone()
	return &clone, nil
}

func (r *EquipmentRepository) FindByAssetCode(ctx context.Context, assetCode string) (*entities.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byAssetCode[normalizeAssetCode(assetCode)]
	if !ok {
		return nil, apperrors.NewNotFoundError("оборудование", assetCode)
	}
	clone := r.byID[id].Clone()
	return &clone, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	r.mu.RLock()
	matched := make([]entities.Equipment, 0, len(r.byID))
	for _, e := range r.byID {
		if matchesEquipmentFilter(e, filter) {
			matched = append(matched, e.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if dir, ok := filter.Sort["purchase_date"]; ok {
		sort.SliceStable(matched, func(i, j int) bool {
			if dir == "desc" {
				return matched[i].PurchaseDate.After(matched[j].PurchaseDate)
			}
			return matched[i].PurchaseDate.Before(matched[j].PurchaseDate)
		})
	}

	total := uint64(len(matched))
	from, to := filter.Window(len(matched))
	return matched[from:to], total, nil
}

func (r *EquipmentRepository) FindHeldByUser(ctx context.Context, userID uint64) ([]entities.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var held []entities.Equipment
	for _, e := range r.byID {
		responsible := e.ResponsibleUserID != nil && *e.ResponsibleUserID == userID
		remembered := e.PreMaintenanceHolderID != nil && *e.PreMaintenanceHolderID == userID
		if responsible || remembered {
			held = append(held, e.Clone())
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })
	return held, nil
}

func (r *EquipmentRepository) Snapshot(ctx context.Context) ([]entities.Equipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]entities.Equipment, 0, len(r.byID))
	for _, e := range r.byID {
		all = append(all, e.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func matchesEquipmentFilter(e entities.Equipment, filter types.Filter) bool {
	for key, raw := range filter.Filter {
		if !contains(equipmentAllowedFilterColumns, key) {
			continue
		}
		values := splitFilterValues(raw)
		if len(values) == 0 {
			continue
		}
		var actual string
		switch key {
		case "state":
			actual = string(e.State)
		case "equipment_type_id":
			actual = strconv.FormatUint(e.EquipmentTypeID, 10)
		case "responsible_user_id":
			if e.ResponsibleUserID == nil {
				return false
			}
			actual = strconv.FormatUint(*e.ResponsibleUserID, 10)
		case "location_id":
			actual = strconv.FormatUint(e.LocationID, 10)
		}
		if !containsExact(values, actual) {
			return false
		}
	}

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			e.AssetCode, e.SerialNumber, e.Brand, e.Model, e.ResponsibleUserName, e.LocationName,
		}, "|"))
		if !strings.Contains(haystack, search) {
			return false
		}
	}
	return true
}
