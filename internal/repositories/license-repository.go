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

type LicenseTypeRepositoryInterface interface {
	CreateLicenseType(ctx context.Context, licenseType *entities.LicenseType) error
	UpdateLicenseType(ctx context.Context, licenseType entities.LicenseType) error
	FindLicenseType(ctx context.Context, id uint64) (*entities.LicenseType, error)
	GetLicenseTypes(ctx context.Context) ([]entities.LicenseType, error)
}

type LicenseUnitRepositoryInterface interface {
	CreateUnits(ctx context.Context, units []*entities.LicenseUnit) error
	UpdateUnit(ctx context.Context, unit entities.LicenseUnit) error
	FindUnit(ctx context.Context, id uint64) (*entities.LicenseUnit, error)
	FindByTypeID(ctx context.Context, licenseTypeID uint64) ([]entities.LicenseUnit, error)
	FindByUserID(ctx context.Context, userID uint64) ([]entities.LicenseUnit, error)
	// FindHeldByUser возвращает единицу данного типа у пользователя или nil.
	FindHeldByUser(ctx context.Context, licenseTypeID, userID uint64) (*entities.LicenseUnit, error)
	FindExpiringBefore(ctx context.Context, deadline time.Time) ([]entities.LicenseUnit, error)
}

type LicenseTypeRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]entities.LicenseType
	nextID uint64
}

func NewLicenseTypeRepository() LicenseTypeRepositoryInterface {
	return &LicenseTypeRepository{byID: make(map[uint64]entities.LicenseType)}
}

func (r *LicenseTypeRepository) CreateLicenseType(ctx context.Context, licenseType *entities.LicenseType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if strings.EqualFold(existing.Name, licenseType.Name) {
			return apperrors.NewValidationError("name", "тип лицензии «%s» уже существует", licenseType.Name)
		}
	}
	r.nextID++
	licenseType.ID = r.nextID
	licenseType.Touch(time.Now())
	r.byID[licenseType.ID] = *licenseType
	return nil
}

func (r *LicenseTypeRepository) UpdateLicenseType(ctx context.Context, licenseType entities.LicenseType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[licenseType.ID]
	if !ok {
		return apperrors.NewNotFoundError("тип лицензии", licenseType.ID)
	}
	licenseType.CreatedAt = current.CreatedAt
	licenseType.UpdatedAt = time.Now()
	r.byID[licenseType.ID] = licenseType
	return nil
}

func (r *LicenseTypeRepository) FindLicenseType(ctx context.Context, id uint64) (*entities.LicenseType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("тип лицензии", id)
	}
	return &t, nil
}

func (r *LicenseTypeRepository) GetLicenseTypes(ctx context.Context) ([]entities.LicenseType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]entities.LicenseType, 0, len(r.byID))
	for _, t := range r.byID {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// LicenseUnitRepository - пул единиц лицензий с индексом ключей.
type LicenseUnitRepository struct {
	mu     sync.RWMutex
	byID   map[uint64]entities.LicenseUnit
	keys   map[string]uint64
	nextID uint64
}

func NewLicenseUnitRepository() LicenseUnitRepositoryInterface {
	return &LicenseUnitRepository{
		byID: make(map[uint64]entities.LicenseUnit),
		keys: make(map[string]uint64),
	}
}

// CreateUnits добавляет партию целиком или не добавляет ничего.
func (r *LicenseUnitRepository) CreateUnits(ctx context.Context, units []*entities.LicenseUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(units))
	for _, u := range units {
		if _, dup := r.keys[u.Key]; dup {
			return apperrors.NewValidationError("key", "ключ лицензии %s уже существует", u.Key)
		}
		if _, dup := seen[u.Key]; dup {
			return apperrors.NewValidationError("key", "ключ лицензии %s повторяется в партии", u.Key)
		}
		seen[u.Key] = struct{}{}
	}

	for _, u := range units {
		r.nextID++
		u.ID = r.nextID
		r.byID[u.ID] = u.Clone()
		r.keys[u.Key] = u.ID
	}
	return nil
}

func (r *LicenseUnitRepository) UpdateUnit(ctx context.Context, unit entities.LicenseUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[unit.ID]
	if !ok {
		return apperrors.NewNotFoundError("лицензия", unit.ID)
	}
	// Ключ и тип неизменяемы.
	unit.Key = current.Key
	unit.LicenseTypeID = current.LicenseTypeID
	r.byID[unit.ID] = unit.Clone()
	return nil
}

func (r *LicenseUnitRepository) FindUnit(ctx context.Context, id uint64) (*entities.LicenseUnit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("лицензия", id)
	}
	clone := u.Clone()
	return &clone, nil
}

func (r *LicenseUnitRepository) FindByTypeID(ctx context.Context, licenseTypeID uint64) ([]entities.LicenseUnit, error) {
	return r.filter(func(u entities.LicenseUnit) bool { return u.LicenseTypeID == licenseTypeID }), nil
}

func (r *LicenseUnitRepository) FindByUserID(ctx context.Context, userID uint64) ([]entities.LicenseUnit, error) {
	return r.filter(func(u entities.LicenseUnit) bool {
		return u.AssignedUserID != nil && *u.AssignedUserID == userID
	}), nil
}

func (r *LicenseUnitRepository) FindHeldByUser(ctx context.Context, licenseTypeID, userID uint64) (*entities.LicenseUnit, error) {
	held := r.filter(func(u entities.LicenseUnit) bool {
		return u.LicenseTypeID == licenseTypeID && u.AssignedUserID != nil && *u.AssignedUserID == userID
	})
	if len(held) == 0 {
		return nil, nil
	}
	return &held[0], nil
}

func (r *LicenseUnitRepository) FindExpiringBefore(ctx context.Context, deadline time.Time) ([]entities.LicenseUnit, error) {
	list := r.filter(func(u entities.LicenseUnit) bool { return u.ExpirationDate.Before(deadline) })
	sort.SliceStable(list, func(i, j int) bool { return list[i].ExpirationDate.Before(list[j].ExpirationDate) })
	return list, nil
}

func (r *LicenseUnitRepository) filter(match func(entities.LicenseUnit) bool) []entities.LicenseUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []entities.LicenseUnit{}
	for _, u := range r.byID {
		if match(u) {
			result = append(result, u.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}
