package events

import (
	"inventory-system/internal/entities"
)

const (
	EquipmentHistoryCreated = "equipment.history.created"
	LicenseAssigned         = "license.assigned"
	LicenseReleased         = "license.released"
)

// EquipmentHistoryCreatedEvent публикуется после того, как переход зафиксирован:
// состояние оборудования уже сохранено и запись истории добавлена.
type EquipmentHistoryCreatedEvent struct {
	History   entities.HistoryEvent
	Equipment entities.Equipment
	// User - получатель или сдающий для ASSIGNMENT, RECEPTION и PRE_DISPOSAL.
	User *entities.User
	// Maintenance заполнен только для завершения обслуживания.
	Maintenance *entities.MaintenanceRecord
}

// Name - реализуем интерфейс eventbus.Event
func (e EquipmentHistoryCreatedEvent) Name() string {
	return EquipmentHistoryCreated
}

// IsMaintenanceFinalized отличает завершение обслуживания от отправки в него.
func (e EquipmentHistoryCreatedEvent) IsMaintenanceFinalized() bool {
	return e.Maintenance != nil
}

type LicenseAssignedEvent struct {
	Unit    entities.LicenseUnit
	Type    entities.LicenseType
	User    entities.User
	ActorID uint64
}

func (e LicenseAssignedEvent) Name() string {
	return LicenseAssigned
}

type LicenseReleasedEvent struct {
	Unit           entities.LicenseUnit
	PreviousUserID uint64
	ActorID        uint64
}

func (e LicenseReleasedEvent) Name() string {
	return LicenseReleased
}
