package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	"inventory-system/internal/events"
	"inventory-system/pkg/constants"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

// errNothingChanged - правка без изменений: ничего не сохраняется и в историю не пишется.
var errNothingChanged = errors.New("нет изменений")

// transitionPlan - результат проверки перехода. Пока план не применен, хранилища не тронуты.
type transitionPlan struct {
	// action уточняет переход для метрик и логов, если decide выбирает его сам.
	action          constants.Action
	next            entities.Equipment
	openAssignment  *entities.AssignmentRecord
	closeAssignment bool
	maintenance     *entities.MaintenanceRecord
	user            *entities.User
	history         constants.HistoryKind
	detail          string
}

type decideFunc func(ctx context.Context, current entities.Equipment) (*transitionPlan, error)

// transition: захватить ключ оборудования, прочитать состояние, проверить всё через decide,
// затем применить план и добавить одну запись истории. Событие уходит в шину после фиксации.
func (s *EquipmentLifecycleService) transition(ctx context.Context, id uint64, action constants.Action, decide decideFunc) (*dto.EquipmentDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, s.reject(action.String(), err)
	}

	unlock := s.locks.Lock(equipmentLockKey(id))
	defer unlock()

	current, err := s.equipmentRepository.FindEquipment(ctx, id)
	if err != nil {
		return nil, s.reject(action.String(), err)
	}

	plan, err := decide(ctx, *current)
	if errors.Is(err, errNothingChanged) {
		return s.toEquipmentDTO(ctx, *current), nil
	}
	if err != nil {
		s.logger.Debug("Переход отклонен",
			zap.Uint64("equipment_id", id),
			zap.String("action", action.String()),
			zap.String("state", current.State.String()),
			zap.Error(err),
		)
		return nil, s.reject(action.String(), err)
	}

	if plan.action != "" {
		action = plan.action
	}
	now := s.now()

	if plan.closeAssignment {
		if _, err := s.assignmentRepository.CloseOpenAssignment(ctx, id, now); err != nil {
			return nil, err
		}
	}
	if plan.openAssignment != nil {
		plan.openAssignment.EquipmentID = id
		plan.openAssignment.StartDate = now
		if err := s.assignmentRepository.OpenAssignment(ctx, plan.openAssignment); err != nil {
			s.logger.Error("Нарушен инвариант: у оборудования уже есть открытая выдача", zap.Uint64("equipment_id", id), zap.Error(err))
			return nil, err
		}
	}
	if plan.maintenance != nil {
		plan.maintenance.EquipmentID = id
		plan.maintenance.Date = now
		if err := s.maintenanceRepository.CreateMaintenance(ctx, plan.maintenance); err != nil {
			return nil, err
		}
	}

	if err := s.equipmentRepository.UpdateEquipment(ctx, plan.next); err != nil {
		s.logger.Error("Ошибка при сохранении оборудования", zap.Uint64("equipment_id", id), zap.Error(err))
		return nil, err
	}

	history := entities.HistoryEvent{
		EquipmentID: id,
		Action:      plan.history,
		Date:        now,
		ActorID:     actorID,
		Detail:      plan.detail,
	}
	if err := s.historyRepository.Append(ctx, &history); err != nil {
		return nil, err
	}

	s.metrics.TransitionCommitted(action.String(), plan.next.State.String())
	s.logger.Info("Переход выполнен",
		zap.Uint64("equipment_id", id),
		zap.String("action", action.String()),
		zap.String("from", current.State.String()),
		zap.String("to", plan.next.State.String()),
		zap.Uint64("actor_id", actorID),
	)

	s.publish(ctx, events.EquipmentHistoryCreatedEvent{
		History:     history,
		Equipment:   plan.next.Clone(),
		User:        plan.user,
		Maintenance: plan.maintenance,
	})

	return s.toEquipmentDTO(ctx, plan.next), nil
}

// Assign - выдача пользователю. Допустима из AVAILABLE и PRE_DISPOSAL.
func (s *EquipmentLifecycleService) Assign(ctx context.Context, id uint64, payload dto.AssignEquipmentDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionAssign, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State != constants.StateAvailable && current.State != constants.StatePreDisposal {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionAssign.String(), current.State.String())
		}
		location := strings.TrimSpace(payload.Location)
		if location == "" {
			return nil, apperrors.NewValidationError("location", "нужно указать место использования")
		}
		if payload.UserID == 0 {
			return nil, apperrors.NewValidationError("user_id", "нужно указать пользователя")
		}
		user, err := s.activeUser(ctx, payload.UserID)
		if err != nil {
			return nil, err
		}

		next := current.Clone()
		next.State = constants.StateActive
		next.ResponsibleUserID = utils.ToPtr(user.ID)
		next.ResponsibleUserName = user.Fio
		next.LocationID = 0
		next.LocationName = location

		return &transitionPlan{
			next: next,
			openAssignment: &entities.AssignmentRecord{
				UserID:            user.ID,
				UserName:          user.Fio,
				Location:          location,
				SignedDocumentRef: payload.SignedDocumentRef,
			},
			user:    user,
			history: constants.HistoryAssignment,
			detail:  fmt.Sprintf("Выдано пользователю %s, место: %s", user.Fio, location),
		}, nil
	})
}

// Return - прием от пользователя на склад.
func (s *EquipmentLifecycleService) Return(ctx context.Context, id uint64, payload dto.ReturnEquipmentDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionReturn, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State != constants.StateActive {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionReturn.String(), current.State.String())
		}
		return s.returnPlan(ctx, current, payload)
	})
}

func (s *EquipmentLifecycleService) returnPlan(ctx context.Context, current entities.Equipment, payload dto.ReturnEquipmentDTO) (*transitionPlan, error) {
	warehouse, err := s.warehouse(ctx, payload.WarehouseID)
	if err != nil {
		return nil, err
	}

	previous := s.previousHolder(ctx, current.ResponsibleUserID)
	next := current.Clone()
	next.State = constants.StateAvailable
	next.ResponsibleUserID = nil
	next.ResponsibleUserName = ""
	next.LocationID = warehouse.ID
	next.LocationName = warehouse.Name

	detail := fmt.Sprintf("Принято на склад «%s» от %s", warehouse.Name, current.ResponsibleUserName)
	if notes := strings.TrimSpace(payload.Notes); notes != "" {
		detail += ". " + notes
	}
	return &transitionPlan{
		action:          constants.ActionReturn,
		next:            next,
		closeAssignment: true,
		user:            previous,
		history:         constants.HistoryReception,
		detail:          detail,
	}, nil
}

// MarkForDisposal - перевод на склад в ожидании списания. Из этого состояния еще можно выдать или отправить в ремонт.
func (s *EquipmentLifecycleService) MarkForDisposal(ctx context.Context, id uint64, payload dto.MarkForDisposalDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionMarkForDisposal, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State == constants.StateRetired || current.State == constants.StatePreDisposal {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionMarkForDisposal.String(), current.State.String())
		}
		warehouse, err := s.warehouse(ctx, payload.WarehouseID)
		if err != nil {
			return nil, err
		}

		holderID := current.ResponsibleUserID
		if holderID == nil {
			holderID = current.PreMaintenanceHolderID
		}
		previous := s.previousHolder(ctx, holderID)

		next := current.Clone()
		next.State = constants.StatePreDisposal
		clearHolders(&next)
		next.LocationID = warehouse.ID
		next.LocationName = warehouse.Name

		detail := fmt.Sprintf("Передано на склад «%s» для списания", warehouse.Name)
		if reason := strings.TrimSpace(payload.Reason); reason != "" {
			detail += ": " + reason
		}
		return &transitionPlan{
			next:            next,
			closeAssignment: true,
			user:            previous,
			history:         constants.HistoryPreDisposal,
			detail:          detail,
		}, nil
	})
}

// SendToMaintenance - ответственный переносится в PreMaintenanceHolder, место не меняется.
// Открытая выдача остается открытой: после ремонта оборудование вернется тому же пользователю.
func (s *EquipmentLifecycleService) SendToMaintenance(ctx context.Context, id uint64, payload dto.SendToMaintenanceDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionSendToMaintenance, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		switch current.State {
		case constants.StateActive, constants.StateAvailable, constants.StatePreDisposal:
		default:
			return nil, apperrors.NewInvalidTransitionError(constants.ActionSendToMaintenance.String(), current.State.String())
		}
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			return nil, apperrors.NewValidationError("reason", "нужно указать причину")
		}

		next := current.Clone()
		next.State = constants.StateInMaintenance
		next.PreMaintenanceHolderID = current.ResponsibleUserID
		next.PreMaintenanceHolderName = current.ResponsibleUserName
		next.ResponsibleUserID = nil
		next.ResponsibleUserName = ""

		return &transitionPlan{
			next:    next,
			history: constants.HistoryMaintenance,
			detail:  "Отправлено в обслуживание: " + reason,
		}, nil
	})
}

// FinalizeMaintenance - запись об обслуживании создается всегда.
// OPERATIONAL: вернуть прежнему держателю (склад не нужен) или на склад. RETIRE: списать.
func (s *EquipmentLifecycleService) FinalizeMaintenance(ctx context.Context, id uint64, payload dto.FinalizeMaintenanceDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionFinalizeMaintenance, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State != constants.StateInMaintenance {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionFinalizeMaintenance.String(), current.State.String())
		}

		record, err := maintenanceRecordFrom(payload)
		if err != nil {
			return nil, err
		}
		disposition := constants.Disposition(strings.ToUpper(strings.TrimSpace(payload.Disposition)))

		next := current.Clone()
		plan := &transitionPlan{
			next:        next,
			maintenance: record,
			history:     constants.HistoryMaintenance,
		}
		outcome := fmt.Sprintf("Обслуживание завершено (%s, %s, %.2f): %s", record.Kind, record.Provider, record.Cost, record.Description)

		switch disposition {
		case constants.DispositionRetire:
			plan.next.State = constants.StateRetired
			clearHolders(&plan.next)
			plan.closeAssignment = true
			plan.detail = outcome + ". Итог: списано"

		case constants.DispositionOperational:
			holder := s.previousHolder(ctx, current.PreMaintenanceHolderID)
			if holder != nil && holder.IsActive {
				plan.next.State = constants.StateActive
				plan.next.ResponsibleUserID = utils.ToPtr(holder.ID)
				plan.next.ResponsibleUserName = current.PreMaintenanceHolderName
				plan.next.PreMaintenanceHolderID = nil
				plan.next.PreMaintenanceHolderName = ""
				plan.user = holder
				plan.detail = fmt.Sprintf("%s. Итог: возвращено пользователю %s", outcome, current.PreMaintenanceHolderName)
				break
			}
			if !payload.WarehouseID.Valid {
				if current.PreMaintenanceHolderID != nil {
					return nil, apperrors.NewValidationError("warehouse_id", "нужно указать склад: пользователь %s деактивирован", current.PreMaintenanceHolderName)
				}
				return nil, apperrors.NewValidationError("warehouse_id", "нужно указать склад: до обслуживания у оборудования не было ответственного")
			}
			warehouse, err := s.warehouse(ctx, payload.WarehouseID.Uint64)
			if err != nil {
				return nil, err
			}
			plan.next.State = constants.StateAvailable
			plan.next.LocationID = warehouse.ID
			plan.next.LocationName = warehouse.Name
			plan.detail = fmt.Sprintf("%s. Итог: на склад «%s»", outcome, warehouse.Name)
			if current.PreMaintenanceHolderID != nil {
				// Держатель деактивирован: выдача, оставшаяся с момента отправки в ремонт, закрывается.
				clearHolders(&plan.next)
				plan.closeAssignment = true
			}

		default:
			return nil, apperrors.NewValidationError("disposition", "итог должен быть OPERATIONAL или RETIRE")
		}
		return plan, nil
	})
}

// Decommission - окончательное списание (BAJA). Повторный вызов падает с InvalidTransition.
func (s *EquipmentLifecycleService) Decommission(ctx context.Context, id uint64, payload dto.DecommissionDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionDecommission, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State.IsTerminal() {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionDecommission.String(), current.State.String())
		}
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			return nil, apperrors.NewValidationError("reason", "нужно указать причину списания")
		}

		next := current.Clone()
		next.State = constants.StateRetired
		clearHolders(&next)

		return &transitionPlan{
			next:            next,
			closeAssignment: true,
			history:         constants.HistoryBaja,
			detail:          "Списано: " + reason,
		}, nil
	})
}

// DropMaintenanceHolder - пользователь деактивирован, пока оборудование в ремонте.
// Выдача закрывается, после ремонта оборудование пойдет на склад.
func (s *EquipmentLifecycleService) DropMaintenanceHolder(ctx context.Context, id uint64, userID uint64) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionReleaseHolder, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		if current.State != constants.StateInMaintenance {
			return nil, apperrors.NewInvalidTransitionError(constants.ActionReleaseHolder.String(), current.State.String())
		}
		if !heldBy(current.PreMaintenanceHolderID, userID) {
			return nil, apperrors.NewValidationError("user_id", "пользователь %d не ожидает возврата этого оборудования", userID)
		}
		return s.dropHolderPlan(ctx, current, userID), nil
	})
}

func (s *EquipmentLifecycleService) dropHolderPlan(ctx context.Context, current entities.Equipment, userID uint64) *transitionPlan {
	next := current.Clone()
	clearHolders(&next)

	return &transitionPlan{
		action:          constants.ActionReleaseHolder,
		next:            next,
		closeAssignment: true,
		user:            s.previousHolder(ctx, &userID),
		history:         constants.HistoryHolderReleased,
		detail:          fmt.Sprintf("Выдача пользователю %s закрыта во время обслуживания", current.PreMaintenanceHolderName),
	}
}

// ReleaseFromUser снимает единицу с пользователя по состоянию, прочитанному под блокировкой:
// ACTIVE у него - возврат на склад, в ремонте с ним в ожидании - снятие ожидания.
// Если единица уже не его, возвращается InvalidTransition и ничего не меняется.
func (s *EquipmentLifecycleService) ReleaseFromUser(ctx context.Context, id uint64, userID uint64, payload dto.ReturnEquipmentDTO) (*dto.EquipmentDTO, error) {
	return s.transition(ctx, id, constants.ActionReleaseFromUser, func(ctx context.Context, current entities.Equipment) (*transitionPlan, error) {
		switch {
		case current.State == constants.StateActive && heldBy(current.ResponsibleUserID, userID):
			return s.returnPlan(ctx, current, payload)
		case current.State == constants.StateInMaintenance && heldBy(current.PreMaintenanceHolderID, userID):
			return s.dropHolderPlan(ctx, current, userID), nil
		}
		return nil, apperrors.NewInvalidTransitionError(constants.ActionReleaseFromUser.String(), current.State.String())
	})
}

func heldBy(holderID *uint64, userID uint64) bool {
	return holderID != nil && *holderID == userID
}

func clearHolders(e *entities.Equipment) {
	e.ResponsibleUserID = nil
	e.ResponsibleUserName = ""
	e.PreMaintenanceHolderID = nil
	e.PreMaintenanceHolderName = ""
}

// previousHolder - для события; отсутствие пользователя переход не блокирует.
func (s *EquipmentLifecycleService) previousHolder(ctx context.Context, userID *uint64) *entities.User {
	if userID == nil {
		return nil
	}
	user, err := s.userRepository.FindUserByID(ctx, *userID)
	if err != nil {
		s.logger.Warn("Держатель оборудования не найден", zap.Uint64("user_id", *userID), zap.Error(err))
		return nil
	}
	return user
}

func maintenanceRecordFrom(payload dto.FinalizeMaintenanceDTO) (*entities.MaintenanceRecord, error) {
	kind := constants.MaintenanceKind(strings.ToUpper(strings.TrimSpace(payload.Kind)))
	if kind != constants.MaintenanceCorrective && kind != constants.MaintenancePreventive {
		return nil, apperrors.NewValidationError("kind", "вид обслуживания должен быть CORRECTIVE или PREVENTIVE")
	}
	provider := strings.TrimSpace(payload.Provider)
	if provider == "" {
		return nil, apperrors.NewValidationError("provider", "нужно указать исполнителя")
	}
	description := strings.TrimSpace(payload.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description", "нужно описать выполненные работы")
	}
	if payload.Cost < 0 {
		return nil, apperrors.NewValidationError("cost", "стоимость не может быть отрицательной")
	}
	return &entities.MaintenanceRecord{
		Kind:        kind,
		Provider:    provider,
		Cost:        payload.Cost,
		Description: description,
	}, nil
}
