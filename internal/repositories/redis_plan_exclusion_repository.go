package repositories

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisPlanExclusionRepository - множество ID в Redis, общее с сервисом планов замены.
type RedisPlanExclusionRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisPlanExclusionRepository - конструктор для репозитория.
// Он возвращает объект, который соответствует PlanExclusionRepositoryInterface.
func NewRedisPlanExclusionRepository(client *redis.Client, key string, logger *zap.Logger) PlanExclusionRepositoryInterface {
	return &RedisPlanExclusionRepository{client: client, key: key, logger: logger}
}

func (r *RedisPlanExclusionRepository) PlannedEquipmentIDs(ctx context.Context) (map[uint64]struct{}, error) {
	members, err := r.client.SMembers(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать план замены из Redis: %w", err)
	}
	return parsePlannedIDs(members, r.logger), nil
}

func (r *RedisPlanExclusionRepository) Add(ctx context.Context, equipmentIDs ...uint64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}
	return r.client.SAdd(ctx, r.key, formatIDs(equipmentIDs)...).Err()
}

func (r *RedisPlanExclusionRepository) Remove(ctx context.Context, equipmentIDs ...uint64) error {
	if len(equipmentIDs) == 0 {
		return nil
	}
	return r.client.SRem(ctx, r.key, formatIDs(equipmentIDs)...).Err()
}
