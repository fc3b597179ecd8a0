package repositories

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// PlanExclusionRepositoryInterface - оборудование, уже включенное в сохраненный план замены.
// Наполняет его внешняя операция "сохранить план"; подбор кандидатов только читает.
type PlanExclusionRepositoryInterface interface {
	PlannedEquipmentIDs(ctx context.Context) (map[uint64]struct{}, error)
	Add(ctx context.Context, equipmentIDs ...uint64) error
	Remove(ctx context.Context, equipmentIDs ...uint64) error
}

type MemoryPlanExclusionRepository struct {
	mu  sync.RWMutex
	ids map[uint64]struct{}
}

func NewMemoryPlanExclusionRepository() PlanExclusionRepositoryInterface {
	return &MemoryPlanExclusionRepository{ids: make(map[uint64]struct{})}
}

func (r *MemoryPlanExclusionRepository) PlannedEquipmentIDs(ctx context.Context) (map[uint64]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[uint64]struct{}, len(r.ids))
	for id := range r.ids {
		result[id] = struct{}{}
	}
	return result, nil
}

func (r *MemoryPlanExclusionRepository) Add(ctx context.Context, equipmentIDs ...uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range equipmentIDs {
		r.ids[id] = struct{}{}
	}
	return nil
}

func (r *MemoryPlanExclusionRepository) Remove(ctx context.Context, equipmentIDs ...uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range equipmentIDs {
		delete(r.ids, id)
	}
	return nil
}

// parsePlannedIDs переводит члены множества Redis в ID, пропуская мусор.
func parsePlannedIDs(members []string, logger *zap.Logger) map[uint64]struct{} {
	result := make(map[uint64]struct{}, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			logger.Warn("В множестве плана замены найден некорректный ID", zap.String("member", m))
			continue
		}
		result[id] = struct{}{}
	}
	return result
}

func formatIDs(ids []uint64) []interface{} {
	members := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		members = append(members, strconv.FormatUint(id, 10))
	}
	return members
}
