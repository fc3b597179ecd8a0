package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

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
	"inventory-system/pkg/types"
	"inventory-system/pkg/utils"
)

type EquipmentLifecycleServiceInterface interface {
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	FindByAssetCode(ctx context.Context, assetCode string) (*dto.EquipmentDTO, error)
	GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	GetHistory(ctx context.Context, id uint64, limit, offset uint64) ([]dto.HistoryEventDTO, uint64, error)
	GetAssignments(ctx context.Context, id uint64) ([]dto.AssignmentRecordDTO, error)
	GetMaintenanceRecords(ctx context.Context, id uint64) ([]dto.MaintenanceRecordDTO, error)

	Assign(ctx context.Context, id uint64, payload dto.AssignEquipmentDTO) (*dto.EquipmentDTO, error)
	Return(ctx context.Context, id uint64, payload dto.ReturnEquipmentDTO) (*dto.EquipmentDTO, error)
	MarkForDisposal(ctx context.Context, id uint64, payload dto.MarkForDisposalDTO) (*dto.EquipmentDTO, error)
	SendToMaintenance(ctx context.Context, id uint64, payload dto.SendToMaintenanceDTO) (*dto.EquipmentDTO, error)
	FinalizeMaintenance(ctx context.Context, id uint64, payload dto.FinalizeMaintenanceDTO) (*dto.EquipmentDTO, error)
	Decommission(ctx context.Context, id uint64, payload dto.DecommissionDTO) (*dto.EquipmentDTO, error)
	// DropMaintenanceHolder забывает пользователя, к которому оборудование вернулось бы после ремонта.
	DropMaintenanceHolder(ctx context.Context, id uint64, userID uint64) (*dto.EquipmentDTO, error)
	ReleaseFromUser(ctx context.Context, id uint64, userID uint64, payload dto.ReturnEquipmentDTO) (*dto.EquipmentDTO, error)
}

// EquipmentLifecycleService - владелец состояния оборудования. Все изменения идут через переходы,
// каждый переход сериализуется по ID оборудования и дает ровно одну запись в истории.
type EquipmentLifecycleService struct {
	equipmentRepository     repositories.EquipmentRepositoryInterface
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface
	locationRepository      repositories.LocationRepositoryInterface
	userRepository          repositories.UserRepositoryInterface
	assignmentRepository    repositories.AssignmentRepositoryInterface
	historyRepository       repositories.HistoryRepositoryInterface
	maintenanceRepository   repositories.MaintenanceRepositoryInterface
	eventBus                *eventbus.Bus
	metrics                 *metrics.Metrics
	locks                   *keylock.KeyedMutex
	logger                  *zap.Logger
	now                     func() time.Time
}

func NewEquipmentLifecycleService(
	equipmentRepository repositories.EquipmentRepositoryInterface,
	equipmentTypeRepository repositories.EquipmentTypeRepositoryInterface,
	locationRepository repositories.LocationRepositoryInterface,
	userRepository repositories.UserRepositoryInterface,
	assignmentRepository repositories.AssignmentRepositoryInterface,
	historyRepository repositories.HistoryRepositoryInterface,
	maintenanceRepository repositories.MaintenanceRepositoryInterface,
	eventBus *eventbus.Bus,
	metrics *metrics.Metrics,
	logger *zap.Logger,
) *EquipmentLifecycleService {
	return &EquipmentLifecycleService{
		equipmentRepository:     equipmentRepository,
		equipmentTypeRepository: equipmentTypeRepository,
		locationRepository:      locationRepository,
		userRepository:          userRepository,
		assignmentRepository:    assignmentRepository,
		historyRepository:       historyRepository,
		maintenanceRepository:   maintenanceRepository,
		eventBus:                eventBus,
		metrics:                 metrics,
		locks:                   keylock.New(),
		logger:                  logger,
		now:                     time.Now,
	}
}

func equipmentLockKey(id uint64) string {
	return "equipment:" + strconv.FormatUint(id, 10)
}

// CreateEquipment - прием на учет. Начальное состояние любое, по умолчанию AVAILABLE.
func (s *EquipmentLifecycleService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	action := constants.ActionCreate.String()

	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, s.reject(action, err)
	}

	equipment, holder, err := s.buildNewEquipment(ctx, payload)
	if err != nil {
		return nil, s.reject(action, err)
	}

	// Один и тот же инвентарный номер не должен приниматься параллельно дважды.
	unlock := s.locks.Lock("asset:" + equipment.AssetCode)
	defer unlock()

	if _, err := s.equipmentRepository.FindByAssetCode(ctx, equipment.AssetCode); err == nil {
		return nil, s.reject(action, apperrors.NewValidationError("asset_code", "инвентарный номер %s уже занят", equipment.AssetCode))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	if err := s.equipmentRepository.CreateEquipment(ctx, &equipment); err != nil {
		s.logger.Error("Ошибка при создании оборудования", zap.String("asset_code", equipment.AssetCode), zap.Error(err))
		return nil, s.reject(action, err)
	}

	if holder != nil {
		record := &entities.AssignmentRecord{
			EquipmentID: equipment.ID,
			UserID:      holder.ID,
			UserName:    holder.Fio,
			StartDate:   now,
			Location:    equipment.LocationName,
		}
		if err := s.assignmentRepository.OpenAssignment(ctx, record); err != nil {
			return nil, err
		}
	}

	history := entities.HistoryEvent{
		EquipmentID: equipment.ID,
		Action:      constants.HistoryCreate,
		Date:        now,
		ActorID:     actorID,
		Detail:      fmt.Sprintf("Оборудование принято на учет в состоянии %s", equipment.State),
	}
	if err := s.historyRepository.Append(ctx, &history); err != nil {
		return nil, err
	}

	s.metrics.TransitionCommitted(action, equipment.State.String())
	s.logger.Info("Оборудование принято на учет",
		zap.Uint64("equipment_id", equipment.ID),
		zap.String("asset_code", equipment.AssetCode),
		zap.String("state", equipment.State.String()),
		zap.Uint64("actor_id", actorID),
	)
	s.publish(ctx, events.EquipmentHistoryCreatedEvent{History: history, Equipment: equipment.Clone(), User: holder})

	return s.toEquipmentDTO(ctx, equipment), nil
}

// buildNewEquipment проверяет данные приема и собирает сущность, ничего не сохраняя.
func (s *EquipmentLifecycleService) buildNewEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (entities.Equipment, *entities.User, error) {
	var empty entities.Equipment

	assetCode := strings.ToUpper(strings.TrimSpace(payload.AssetCode))
	if assetCode == "" {
		return empty, nil, apperrors.NewValidationError("asset_code", "инвентарный номер обязателен")
	}
	if strings.TrimSpace(payload.SerialNumber) == "" {
		return empty, nil, apperrors.NewValidationError("serial_number", "серийный номер обязателен")
	}
	if payload.PurchaseDate.IsZero() {
		return empty, nil, apperrors.NewValidationError("purchase_date", "дата покупки обязательна")
	}
	if payload.PurchaseDate.After(s.now()) {
		return empty, nil, apperrors.NewValidationError("purchase_date", "дата покупки в будущем")
	}
	if payload.PurchaseValue < 0 || payload.WarrantyYears < 0 {
		return empty, nil, apperrors.NewValidationError("purchase_value", "стоимость и гарантия не могут быть отрицательными")
	}
	if _, err := s.equipmentTypeRepository.FindEquipmentType(ctx, payload.EquipmentTypeID); err != nil {
		return empty, nil, err
	}

	state := constants.StateAvailable
	if payload.InitialState != "" {
		state = constants.EquipmentState(strings.ToUpper(payload.InitialState))
		if !state.IsValid() {
			return empty, nil, apperrors.NewValidationError("initial_state", "неизвестное состояние %s", payload.InitialState)
		}
	}

	equipment := entities.Equipment{
		AssetCode:       assetCode,
		SerialNumber:    strings.TrimSpace(payload.SerialNumber),
		Brand:           strings.TrimSpace(payload.Brand),
		Model:           strings.TrimSpace(payload.Model),
		EquipmentTypeID: payload.EquipmentTypeID,
		PurchaseDate:    payload.PurchaseDate,
		PurchaseValue:   payload.PurchaseValue,
		WarrantyYears:   payload.WarrantyYears,
		ChargerSerial:   payload.ChargerSerial,
		State:           state,
		Notes:           payload.Notes,
	}

	if state == constants.StateActive {
		if !payload.ResponsibleUserID.Valid {
			return empty, nil, apperrors.NewValidationError("responsible_user_id", "для состояния ACTIVE нужен ответственный")
		}
		user, err := s.activeUser(ctx, payload.ResponsibleUserID.Uint64)
		if err != nil {
			return empty, nil, err
		}
		location := strings.TrimSpace(payload.LocationName.String)
		if !payload.LocationName.Valid || location == "" {
			return empty, nil, apperrors.NewValidationError("location_name", "для состояния ACTIVE нужно место использования")
		}
		equipment.ResponsibleUserID = utils.ToPtr(user.ID)
		equipment.ResponsibleUserName = user.Fio
		equipment.LocationName = location
		return equipment, user, nil
	}

	if payload.ResponsibleUserID.Valid {
		return empty, nil, apperrors.NewValidationError("responsible_user_id", "ответственный допустим только в состоянии ACTIVE")
	}
	if payload.LocationID.Valid {
		warehouse, err := s.warehouse(ctx, payload.LocationID.Uint64)
		if err != nil {
			return empty, nil, err
		}
		equipment.LocationID = warehouse.ID
		equipment.LocationName = warehouse.Name
	}
	return equipment, nil, nil
}

// UpdateEquipment - правка описательных полей. Состояние, ответственный и место не трогаются.
func (s *EquipmentLifecycleService) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionEdit, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State.IsTerminal() {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionEdit.String(), current.State.String())
		}

		next := current.Clone()
		var changed []string

		if payload.SerialNumber != nil && strings.TrimSpace(*payload.SerialNumber) != next.SerialNumber {
			if strings.TrimSpace(*payload.SerialNumber) == "" {
				return nil, apperrors.NewValidationError("serial_number", "серийный номер не может быть пустым")
			}
			next.SerialNumber = strings.TrimSpace(*payload.SerialNumber)
			changed = append(changed, "serial_number")
		}
		if payload.Brand != nil && strings.TrimSpace(*payload.Brand) != next.Brand {
			next.Brand = strings.TrimSpace(*payload.Brand)
			changed = append(changed, "brand")
		}
		if payload.Model != nil && strings.TrimSpace(*payload.Model) != next.Model {
			next.Model = strings.TrimSpace(*payload.Model)
			changed = append(changed, "model")
		}
		if payload.PurchaseValue != nil && *payload.PurchaseValue != next.PurchaseValue {
			if *payload.PurchaseValue < 0 {
				return nil, apperrors.NewValidationError("purchase_value", "стоимость не может быть отрицательной")
			}
			next.PurchaseValue = *payload.PurchaseValue
			changed = append(changed, "purchase_value")
		}
		if payload.WarrantyYears != nil && *payload.WarrantyYears != next.WarrantyYears {
			if *payload.WarrantyYears < 0 {
				return nil, apperrors.NewValidationError("warranty_years", "гарантия не может быть отрицательной")
			}
			next.WarrantyYears = *payload.WarrantyYears
			changed = append(changed, "warranty_years")
		}
		if payload.ChargerSerial.Valid && payload.ChargerSerial != next.ChargerSerial {
			next.ChargerSerial = payload.ChargerSerial
			changed = append(changed, "charger_serial")
		}
		if payload.Notes != nil && *payload.Notes != next.Notes {
			next.Notes = *payload.Notes
			changed = append(changed, "notes")
		}

		if len(changed) == 0 {
			return nil, errNothingChanged
		}

		return &transitionPlan{
			next:    next,
			history: constants.HistoryEdit,
			detail:  "Изменены поля: " + strings.Join(changed, ", "),
		}, nil
	})
}

func (s *EquipmentLifecycleService) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	equipment, err := s.equipmentRepository.FindEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toEquipmentDTO(ctx, *equipment), nil
}

func (s *EquipmentLifecycleService) FindByAssetCode(ctx context.Context, assetCode string) (*dto.EquipmentDTO, error) {
	equipment, err := s.equipmentRepository.FindByAssetCode(ctx, assetCode)
	if err != nil {
		return nil, err
	}
	return s.toEquipmentDTO(ctx, *equipment), nil
}

func (s *EquipmentLifecycleService) GetEquipments(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	list, total, err := s.equipmentRepository.GetEquipments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	equipmentTypes := s.equipmentTypesByID(ctx)
	result := make([]dto.EquipmentDTO, 0, len(list))
	for _, e := range list {
		result = append(result, equipmentToDTO(e, equipmentTypes[e.EquipmentTypeID]))
	}
	return result, total, nil
}

func (s *EquipmentLifecycleService) GetHistory(ctx context.Context, id uint64, limit, offset uint64) ([]dto.HistoryEventDTO, uint64, error) {
	if _, err := s.equipmentRepository.FindEquipment(ctx, id); err != nil {
		return nil, 0, err
	}

	total, err := s.historyRepository.CountByEquipmentID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.historyRepository.FindByEquipmentID(ctx, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.HistoryEventDTO, 0, len(list))
	for _, h := range list {
		result = append(result, dto.HistoryEventDTO{
			ID:      h.ID,
			Action:  string(h.Action),
			Date:    h.Date.Format(utils.DateTimeLayout),
			ActorID: h.ActorID,
			Detail:  h.Detail,
		})
	}
	return result, total, nil
}

func (s *EquipmentLifecycleService) GetAssignments(ctx context.Context, id uint64) ([]dto.AssignmentRecordDTO, error) {
	if _, err := s.equipmentRepository.FindEquipment(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.assignmentRepository.FindByEquipmentID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AssignmentRecordDTO, 0, len(list))
	for _, a := range list {
		result = append(result, assignmentToDTO(a))
	}
	return result, nil
}

func (s *EquipmentLifecycleService) GetMaintenanceRecords(ctx context.Context, id uint64) ([]dto.MaintenanceRecordDTO, error) {
	if _, err := s.equipmentRepository.FindEquipment(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.maintenanceRepository.FindByEquipmentID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := make([]dto.MaintenanceRecordDTO, 0, len(list))
	for _, m := range list {
		result = append(result, dto.MaintenanceRecordDTO{
			ID:          m.ID,
			Date:        m.Date.Format(utils.DateLayout),
			Kind:        string(m.Kind),
			Provider:    m.Provider,
			Cost:        m.Cost,
			Description: m.Description,
		})
	}
	return result, nil
}

// activeUser - пользователь должен существовать и быть активным.
func (s *EquipmentLifecycleService) activeUser(ctx context.Context, userID uint64) (*entities.User, error) {
	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewValidationError("user_id", "пользователь %s деактивирован", user.Fio)
	}
	return user, nil
}

// warehouse - локация должна существовать и быть складом.
func (s *EquipmentLifecycleService) warehouse(ctx context.Context, locationID uint64) (*entities.Location, error) {
	if locationID == 0 {
		return nil, apperrors.NewValidationError("warehouse_id", "нужно указать склад")
	}
	location, err := s.locationRepository.FindLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if !location.IsWarehouse {
		return nil, apperrors.NewValidationError("warehouse_id", "локация «%s» не является складом", location.Name)
	}
	return location, nil
}

func (s *EquipmentLifecycleService) publish(ctx context.Context, event eventbus.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}

// reject учитывает отказ в метриках и возвращает ошибку без изменений.
func (s *EquipmentLifecycleService) reject(action string, err error) error {
	s.metrics.TransitionRejected(action, rejectReason(err))
	return err
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, apperrors.ErrValidation):
		return "validation"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrUserIDNotFoundInContext):
		return "no_actor"
	}
	return "internal"
}

func (s *EquipmentLifecycleService) equipmentTypesByID(ctx context.Context) map[uint64]entities.EquipmentType {
	result := make(map[uint64]entities.EquipmentType)
	list, err := s.equipmentTypeRepository.GetEquipmentTypes(ctx)
	if err != nil {
		s.logger.Warn("Не удалось загрузить типы оборудования", zap.Error(err))
		return result
	}
	for _, t := range list {
		result[t.ID] = t
	}
	return result
}

func (s *EquipmentLifecycleService) toEquipmentDTO(ctx context.Context, e entities.Equipment) *dto.EquipmentDTO {
	var equipmentType entities.EquipmentType
	if t, err := s.equipmentTypeRepository.FindEquipmentType(ctx, e.EquipmentTypeID); err == nil {
		equipmentType = *t
	}
	result := equipmentToDTO(e, equipmentType)
	return &result
}

func equipmentToDTO(e entities.Equipment, equipmentType entities.EquipmentType) dto.EquipmentDTO {
	return dto.EquipmentDTO{
		ID:           e.ID,
		AssetCode:    e.AssetCode,
		SerialNumber: e.SerialNumber,
		Brand:        e.Brand,
		Model:        e.Model,
		EquipmentType: dto.ShortEquipmentTypeDTO{
			ID:              e.EquipmentTypeID,
			Name:            equipmentType.Name,
			RenewalEligible: equipmentType.RenewalEligible,
		},
		PurchaseDate:        e.PurchaseDate.Format(utils.DateLayout),
		PurchaseValue:       e.PurchaseValue,
		WarrantyYears:       e.WarrantyYears,
		ChargerSerial:       e.ChargerSerial,
		State:               e.State.String(),
		LocationID:          e.LocationID,
		LocationName:        e.LocationName,
		ResponsibleUserID:   e.ResponsibleUserID,
		ResponsibleUserName: e.ResponsibleUserName,
		PendingHolderID:     e.PreMaintenanceHolderID,
		Notes:               e.Notes,
		CreatedAt:           e.CreatedAt.Format(utils.DateTimeLayout),
		UpdatedAt:           e.UpdatedAt.Format(utils.DateTimeLayout),
	}
}

func assignmentToDTO(a entities.AssignmentRecord) dto.AssignmentRecordDTO {
	var signed *string
	if a.SignedDocumentRef.Valid {
		signed = utils.ToPtr(a.SignedDocumentRef.String)
	}
	return dto.AssignmentRecordDTO{
		ID:                a.ID,
		EquipmentID:       a.EquipmentID,
		UserID:            a.UserID,
		UserName:          a.UserName,
		StartDate:         a.StartDate.Format(utils.DateLayout),
		EndDate:           utils.FormatTimePtr(a.EndDate),
		Location:          a.Location,
		SignedDocumentRef: signed,
	}
}
