package repositories

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"inventory-system/internal/entities"
)

// ErrOpenAssignmentExists - у оборудования уже есть незакрытая выдача.
var ErrOpenAssignmentExists = errors.New("у оборудования уже есть открытая запись о выдаче")

type AssignmentRepositoryInterface interface {
	OpenAssignment(ctx context.Context, record *entities.AssignmentRecord) error
	// CloseOpenAssignment закрывает открытую запись; если ее нет, возвращает nil без ошибки.
	CloseOpenAssignment(ctx context.Context, equipmentID uint64, endDate time.Time) (*entities.AssignmentRecord, error)
	// FindOpenAssignment возвращает nil, если открытой записи нет.
	FindOpenAssignment(ctx context.Context, equipmentID uint64) (*entities.AssignmentRecord, error)
	FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.AssignmentRecord, error)
	FindByUserID(ctx context.Context, userID uint64) ([]entities.AssignmentRecord, error)
}

// AssignmentRepository - журнал выдач. Открытая запись индексируется по ID оборудования.
type AssignmentRepository struct {
	mu          sync.RWMutex
	records     []entities.AssignmentRecord
	openByEquip map[uint64]int
	nextID      uint64
}

func NewAssignmentRepository() AssignmentRepositoryInterface {
	return &AssignmentRepository{openByEquip: make(map[uint64]int)}
}

func (r *AssignmentRepository) OpenAssignment(ctx context.Context, record *entities.AssignmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.openByEquip[record.EquipmentID]; exists {
		return ErrOpenAssignmentExists
	}

	r.nextID++
	record.ID = r.nextID
	record.EndDate = nil

	r.records = append(r.records, record.Clone())
	r.openByEquip[record.EquipmentID] = len(r.records) - 1
	return nil
}

func (r *AssignmentRepository) CloseOpenAssignment(ctx context.Context, equipmentID uint64, endDate time.Time) (*entities.AssignmentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, exists := r.openByEquip[equipmentID]
	if !exists {
		return nil, nil
	}
	end := endDate
	r.records[idx].EndDate = &end
	delete(r.openByEquip, equipmentID)

	closed := r.records[idx].Clone()
	return &closed, nil
}

func (r *AssignmentRepository) FindOpenAssignment(ctx context.Context, equipmentID uint64) (*entities.AssignmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, exists := r.openByEquip[equipmentID]
	if !exists {
		return nil, nil
	}
	open := r.records[idx].Clone()
	return &open, nil
}

func (r *AssignmentRepository) FindByEquipmentID(ctx context.Context, equipmentID uint64) ([]entities.AssignmentRecord, error) {
	return r.filter(func(a entities.AssignmentRecord) bool { return a.EquipmentID == equipmentID }), nil
}

func (r *AssignmentRepository) FindByUserID(ctx context.Context, userID uint64) ([]entities.AssignmentRecord, error) {
	return r.filter(func(a entities.AssignmentRecord) bool { return a.UserID == userID }), nil
}

func (r *AssignmentRepository) filter(match func(entities.AssignmentRecord) bool) []entities.AssignmentRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []entities.AssignmentRecord{}
	for _, a := range r.records {
		if match(a) {
			result = append(result, a.Clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result
}
