package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/internal/repositories"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/keylock"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/utils"
)

type LicensePoolServiceInterface interface {
	CreateLicenseType(ctx context.Context, payload dto.CreateLicenseTypeDTO) (*entities.LicenseType, error)
	UpdateLicenseType(ctx context.Context, id uint64, payload dto.UpdateLicenseTypeDTO) (*entities.LicenseType, error)
	GetLicenseTypes(ctx context.Context) ([]entities.LicenseType, error)

	IssueStock(ctx context.Context, licenseTypeID uint64, payload dto.IssueLicenseStockDTO) ([]dto.LicenseUnitDTO, error)
	Assign(ctx context.Context, unitID, userID uint64) (*dto.LicenseUnitDTO, error)
	Release(ctx context.Context, unitID uint64) (*dto.LicenseUnitDTO, error)
	ReleaseAllForUser(ctx context.Context, userID uint64) ([]uint64, error)

	GetUnitsByType(ctx context.Context, licenseTypeID uint64) ([]dto.LicenseUnitDTO, error)
	GetUnitsByUser(ctx context.Context, userID uint64) ([]dto.LicenseUnitDTO, error)
	GetExpiring(ctx context.Context, withinDays int) ([]dto.LicenseUnitDTO, error)
	GetPoolSummary(ctx context.Context) ([]dto.LicensePoolSummaryDTO, error)
}

// LicensePoolService - пул лицензий. Один пользователь держит не больше одной единицы каждого типа;
// выдача и возврат в пределах типа идут строго по очереди, чтобы проверка дубля не гонялась.
type LicensePoolService struct {
	licenseTypeRepository repositories.LicenseTypeRepositoryInterface
	licenseUnitRepository repositories.LicenseUnitRepositoryInterface
	userRepository        repositories.UserRepositoryInterface
	eventBus              *eventbus.Bus
	metrics               *metrics.Metrics
	locks                 *keylock.KeyedMutex
	logger                *zap.Logger
	now                   func() time.Time
}

func NewLicensePoolService(
	licenseTypeRepository repositories.LicenseTypeRepositoryInterface,
	licenseUnitRepository repositories.LicenseUnitRepositoryInterface,
	userRepository repositories.UserRepositoryInterface,
	eventBus *eventbus.Bus,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *LicensePoolService {
	return &LicensePoolService{
		licenseTypeRepository: licenseTypeRepository,
		licenseUnitRepository: licenseUnitRepository,
		userRepository:        userRepository,
		eventBus:              eventBus,
		metrics:               metrics,
		locks:                 keylock.New(),
		logger:                logger,
		now:                   time.Now,
	}
}

func licenseTypeLockKey(id uint64) string {
	return "license-type:" + strconv.FormatUint(id, 10)
}

func (s *LicensePoolService) CreateLicenseType(ctx context.Context, payload dto.CreateLicenseTypeDTO) (*entities.LicenseType, error) {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "название обязательно")
	}
	licenseType := &entities.LicenseType{
		Name:        name,
		Vendor:      strings.TrimSpace(payload.Vendor),
		Description: payload.Description,
	}
	if err := s.licenseTypeRepository.CreateLicenseType(ctx, licenseType); err != nil {
		return nil, err
	}
	s.logger.Info("Создан тип лицензии", zap.Uint64("license_type_id", licenseType.ID), zap.String("name", name))
	return licenseType, nil
}

// UpdateLicenseType меняет только описательные поля.
func (s *LicensePoolService) UpdateLicenseType(ctx context.Context, id uint64, payload dto.UpdateLicenseTypeDTO) (*entities.LicenseType, error) {
	licenseType, err := s.licenseTypeRepository.FindLicenseType(ctx, id)
	if err != nil {
		return nil, err
	}
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "название не может быть пустым")
		}
		licenseType.Name = name
	}
	if payload.Vendor != nil {
		licenseType.Vendor = strings.TrimSpace(*payload.Vendor)
	}
	if payload.Description != nil {
		licenseType.Description = *payload.Description
	}
	if err := s.licenseTypeRepository.UpdateLicenseType(ctx, *licenseType); err != nil {
		return nil, err
	}
	return licenseType, nil
}

func (s *LicensePoolService) GetLicenseTypes(ctx context.Context) ([]entities.LicenseType, error) {
	return s.licenseTypeRepository.GetLicenseTypes(ctx)
}

// IssueStock выпускает партию свободных единиц с уникальными ключами.
func (s *LicensePoolService) IssueStock(ctx context.Context, licenseTypeID uint64, payload dto.IssueLicenseStockDTO) (result []dto.LicenseUnitDTO, err error) {
	defer func() { s.metrics.LicenseOperation("issue_stock", err) }()

	if payload.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity", "количество должно быть больше нуля")
	}
	licenseType, err := s.licenseTypeRepository.FindLicenseType(ctx, licenseTypeID)
	if err != nil {
		return nil, err
	}

	purchaseDate := s.now()
	if payload.PurchaseDate != nil {
		purchaseDate = *payload.PurchaseDate
	}
	if payload.ExpirationDate.IsZero() {
		return nil, apperrors.NewValidationError("expiration_date", "нужно указать срок действия")
	}
	if !payload.ExpirationDate.After(purchaseDate) {
		return nil, apperrors.NewValidationError("expiration_date", "срок действия должен быть позже даты покупки")
	}

	units := make([]*entities.LicenseUnit, 0, payload.Quantity)
	for i := 0; i < payload.Quantity; i++ {
		units = append(units, &entities.LicenseUnit{
			LicenseTypeID:  licenseType.ID,
			Key:            strings.ToUpper(uuid.NewString()),
			PurchaseDate:   purchaseDate,
			ExpirationDate: payload.ExpirationDate,
		})
	}

	unlock := s.locks.Lock(licenseTypeLockKey(licenseType.ID))
	defer unlock()

	if err := s.licenseUnitRepository.CreateUnits(ctx, units); err != nil {
		return nil, err
	}

	result = make([]dto.LicenseUnitDTO, 0, len(units))
	for _, u := range units {
		result = append(result, licenseUnitToDTO(*u))
	}
	s.logger.Info("Выпущена партия лицензий",
		zap.Uint64("license_type_id", licenseType.ID),
		zap.String("name", licenseType.Name),
		zap.Int("quantity", len(units)),
	)
	return result, nil
}

// Assign закрепляет свободную единицу за пользователем. Дубль по типу проверяется по всему пулу.
func (s *LicensePoolService) Assign(ctx context.Context, unitID, userID uint64) (result *dto.LicenseUnitDTO, err error) {
	defer func() { s.metrics.LicenseOperation("assign", err) }()

	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	unit, err := s.licenseUnitRepository.FindUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(licenseTypeLockKey(unit.LicenseTypeID))
	defer unlock()

	// Перечитываем под блокировкой типа.
	unit, err = s.licenseUnitRepository.FindUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if unit.IsAssigned() {
		return nil, apperrors.NewInvalidTransitionError(constants.ActionLicenseAssign.String(), "ASSIGNED")
	}
	now := s.now()
	if !unit.ExpirationDate.After(now) {
		return nil, apperrors.NewValidationError("license_unit_id", "срок действия лицензии истек %s", unit.ExpirationDate.Format(utils.DateLayout))
	}

	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewValidationError("user_id", "пользователь %s деактивирован", user.Fio)
	}

	licenseType, err := s.licenseTypeRepository.FindLicenseType(ctx, unit.LicenseTypeID)
	if err != nil {
		return nil, err
	}

	held, err := s.licenseUnitRepository.FindHeldByUser(ctx, unit.LicenseTypeID, userID)
	if err != nil {
		return nil, err
	}
	if held != nil {
		return nil, &apperrors.DuplicateLicenseAssignmentError{
			LicenseTypeID:   licenseType.ID,
			LicenseTypeName: licenseType.Name,
			UserID:          userID,
			HeldUnitID:      held.ID,
		}
	}

	unit.AssignedUserID = utils.ToPtr(userID)
	unit.AssignedAt = utils.ToPtr(now)
	if err := s.licenseUnitRepository.UpdateUnit(ctx, *unit); err != nil {
		return nil, err
	}

	s.logger.Info("Лицензия выдана",
		zap.Uint64("license_unit_id", unit.ID),
		zap.String("license_type", licenseType.Name),
		zap.Uint64("user_id", userID),
		zap.Uint64("actor_id", actorID),
	)
	s.publish(ctx, events.LicenseAssignedEvent{Unit: unit.Clone(), Type: *licenseType, User: *user, ActorID: actorID})

	out := licenseUnitToDTO(*unit)
	return &out, nil
}

// Release освобождает единицу. В историю оборудования не пишется.
func (s *LicensePoolService) Release(ctx context.Context, unitID uint64) (result *dto.LicenseUnitDTO, err error) {
	defer func() { s.metrics.LicenseOperation("release", err) }()

	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	unit, err := s.licenseUnitRepository.FindUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(licenseTypeLockKey(unit.LicenseTypeID))
	defer unlock()

	released, err := s.releaseLocked(ctx, unitID, actorID)
	if err != nil {
		return nil, err
	}
	out := licenseUnitToDTO(*released)
	return &out, nil
}

// ReleaseAllForUser - массовый возврат при деактивации пользователя. Возвращает ID освобожденных единиц.
func (s *LicensePoolService) ReleaseAllForUser(ctx context.Context, userID uint64) (released []uint64, err error) {
	defer func() { s.metrics.LicenseOperation("release_all", err) }()

	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepository.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}

	held, err := s.licenseUnitRepository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	released = []uint64{}
	for _, u := range held {
		unit, err := s.releaseOne(ctx, u, userID, actorID)
		if err != nil {
			return released, err
		}
		if unit != nil {
			released = append(released, unit.ID)
		}
	}

	s.logger.Info("Лицензии пользователя освобождены", zap.Uint64("user_id", userID), zap.Int("count", len(released)))
	return released, nil
}

// releaseOne освобождает единицу, если она все еще у этого пользователя.
func (s *LicensePoolService) releaseOne(ctx context.Context, u entities.LicenseUnit, userID, actorID uint64) (*entities.LicenseUnit, error) {
	unlock := s.locks.Lock(licenseTypeLockKey(u.LicenseTypeID))
	defer unlock()

	current, err := s.licenseUnitRepository.FindUnit(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if current.AssignedUserID == nil || *current.AssignedUserID != userID {
		return nil, nil
	}
	return s.releaseLocked(ctx, u.ID, actorID)
}

// releaseLocked вызывается под блокировкой типа.
func (s *LicensePoolService) releaseLocked(ctx context.Context, unitID, actorID uint64) (*entities.LicenseUnit, error) {
	unit, err := s.licenseUnitRepository.FindUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if !unit.IsAssigned() {
		return nil, apperrors.NewInvalidTransitionError(constants.ActionLicenseRelease.String(), "UNASSIGNED")
	}

	previousUserID := *unit.AssignedUserID
	unit.AssignedUserID = nil
	unit.AssignedAt = nil
	if err := s.licenseUnitRepository.UpdateUnit(ctx, *unit); err != nil {
		return nil, err
	}

	s.logger.Info("Лицензия освобождена",
		zap.Uint64("license_unit_id", unit.ID),
		zap.Uint64("previous_user_id", previousUserID),
		zap.Uint64("actor_id", actorID),
	)
	s.publish(ctx, events.LicenseReleasedEvent{Unit: unit.Clone(), PreviousUserID: previousUserID, ActorID: actorID})
	return unit, nil
}

func (s *LicensePoolService) GetUnitsByType(ctx context.Context, licenseTypeID uint64) ([]dto.LicenseUnitDTO, error) {
	if _, err := s.licenseTypeRepository.FindLicenseType(ctx, licenseTypeID); err != nil {
		return nil, err
	}
	units, err := s.licenseUnitRepository.FindByTypeID(ctx, licenseTypeID)
	if err != nil {
		return nil, err
	}
	return licenseUnitsToDTO(units), nil
}

func (s *LicensePoolService) GetUnitsByUser(ctx context.Context, userID uint64) ([]dto.LicenseUnitDTO, error) {
	if _, err := s.userRepository.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	units, err := s.licenseUnitRepository.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return licenseUnitsToDTO(units), nil
}

// GetExpiring - единицы, срок которых истекает в ближайшие withinDays дней (включая уже истекшие).
func (s *LicensePoolService) GetExpiring(ctx context.Context, withinDays int) ([]dto.LicenseUnitDTO, error) {
	if withinDays < 0 {
		return nil, apperrors.NewValidationError("days", "количество дней не может быть отрицательным")
	}
	deadline := s.now().AddDate(0, 0, withinDays)
	units, err := s.licenseUnitRepository.FindExpiringBefore(ctx, deadline)
	if err != nil {
		return nil, err
	}
	return licenseUnitsToDTO(units), nil
}

func (s *LicensePoolService) GetPoolSummary(ctx context.Context) ([]dto.LicensePoolSummaryDTO, error) {
	licenseTypes, err := s.licenseTypeRepository.GetLicenseTypes(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()

	result := make([]dto.LicensePoolSummaryDTO, 0, len(licenseTypes))
	for _, t := range licenseTypes {
		units, err := s.licenseUnitRepository.FindByTypeID(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		summary := dto.LicensePoolSummaryDTO{LicenseTypeID: t.ID, Name: t.Name, Vendor: t.Vendor, Total: len(units)}
		for _, u := range units {
			expired := !u.ExpirationDate.After(now)
			switch {
			case u.IsAssigned():
				summary.Assigned++
			case !expired:
				summary.Free++
			}
			if expired {
				summary.Expired++
			}
		}
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *LicensePoolService) publish(ctx context.Context, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}

func licenseUnitToDTO(u entities.LicenseUnit) dto.LicenseUnitDTO {
	return dto.LicenseUnitDTO{
		ID:             u.ID,
		LicenseTypeID:  u.LicenseTypeID,
		Key:            u.Key,
		PurchaseDate:   u.PurchaseDate.Format(utils.DateLayout),
		ExpirationDate: u.ExpirationDate.Format(utils.DateLayout),
		AssignedUserID: u.AssignedUserID,
		AssignedAt:     utils.FormatTimePtr(u.AssignedAt),
	}
}

func licenseUnitsToDTO(units []entities.LicenseUnit) []dto.LicenseUnitDTO {
	result := make([]dto.LicenseUnitDTO, 0, len(units))
	for _, u := range units {
		result = append(result, licenseUnitToDTO(u))
	}
	return result
}
