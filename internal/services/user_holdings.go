package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
)

type UserHoldingsServiceInterface interface {
	ReleaseEverything(ctx context.Context, userID uint64, payload dto.ReleaseUserHoldingsDTO) (*dto.ReleaseUserHoldingsResultDTO, error)
}

// UserHoldingsService снимает с пользователя всё, что за ним числится: оборудование, ожидание
// возврата из ремонта и лицензии. Используется при деактивации.
type UserHoldingsService struct {
	userRepository      repositories.UserRepositoryInterface
	locationRepository  repositories.LocationRepositoryInterface
	equipmentRepository repositories.EquipmentRepositoryInterface
	lifecycle           EquipmentLifecycleServiceInterface
	licensePool         LicensePoolServiceInterface
	logger              *zap.Logger
}

func NewUserHoldingsService(
	userRepository repositories.UserRepositoryInterface,
	locationRepository repositories.LocationRepositoryInterface,
	equipmentRepository repositories.EquipmentRepositoryInterface,
	lifecycle EquipmentLifecycleServiceInterface,
	licensePool LicensePoolServiceInterface,
	logger *zap.Logger,
) *UserHoldingsService {
	return &UserHoldingsService{
		userRepository:      userRepository,
		locationRepository:  locationRepository,
		equipmentRepository: equipmentRepository,
		lifecycle:           lifecycle,
		licensePool:         licensePool,
		logger:              logger,
	}
}

// ReleaseEverything сначала деактивирует пользователя, чтобы параллельно ему ничего не выдали,
// затем возвращает оборудование на склад и освобождает лицензии. Повторный вызов безопасен.
func (s *UserHoldingsService) ReleaseEverything(ctx context.Context, userID uint64, payload dto.ReleaseUserHoldingsDTO) (*dto.ReleaseUserHoldingsResultDTO, error) {
	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload.WarehouseID == 0 {
		return nil, apperrors.NewValidationError("warehouse_id", "нужно указать склад для возврата оборудования")
	}
	warehouse, err := s.locationRepository.FindLocation(ctx, payload.WarehouseID)
	if err != nil {
		return nil, err
	}
	if !warehouse.IsWarehouse {
		return nil, apperrors.NewValidationError("warehouse_id", "локация «%s» не является складом", warehouse.Name)
	}

	if user.IsActive {
		user.IsActive = false
		if err := s.userRepository.UpdateUser(ctx, *user); err != nil {
			return nil, err
		}
	}

	result := &dto.ReleaseUserHoldingsResultDTO{
		UserID:             userID,
		ReturnedEquipment:  []uint64{},
		ReleasedFromRepair: []uint64{},
		Deactivated:        true,
	}

	held, err := s.equipmentRepository.FindHeldByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range held {
		// Выборка сделана без блокировки: решение по единице принимает переход под ее ключом.
		released, err := s.lifecycle.ReleaseFromUser(ctx, e.ID, userID, dto.ReturnEquipmentDTO{
			WarehouseID: warehouse.ID,
			Notes:       "Возврат при деактивации пользователя",
		})
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			s.logger.Warn("Оборудование пропущено при деактивации: уже не числится за пользователем",
				zap.Uint64("equipment_id", e.ID),
				zap.Uint64("user_id", userID),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			return result, err
		}

		if released.State == constants.StateInMaintenance.String() {
			result.ReleasedFromRepair = append(result.ReleasedFromRepair, e.ID)
		} else {
			result.ReturnedEquipment = append(result.ReturnedEquipment, e.ID)
		}
	}

	released, err := s.licensePool.ReleaseAllForUser(ctx, userID)
	if err != nil {
		return result, err
	}
	result.ReleasedLicenses = released

	s.logger.Info("С пользователя сняты все ценности",
		zap.Uint64("user_id", userID),
		zap.Int("equipment", len(result.ReturnedEquipment)),
		zap.Int("maintenance", len(result.ReleasedFromRepair)),
		zap.Int("licenses", len(released)),
	)
	return result, nil
}
