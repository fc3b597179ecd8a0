package entities

import (
	"time"

	"inventory-system/pkg/constants"
)

// HistoryEvent - неизменяемая запись журнала жизненного цикла оборудования.
type HistoryEvent struct {
	ID          uint64                `json:"id" db:"id"`
	EquipmentID uint64                `json:"equipment_id" db:"equipment_id"`
	Action      constants.HistoryKind `json:"action" db:"action"`
	Date        time.Time             `json:"date" db:"created_at"`
	ActorID     uint64                `json:"actor_id" db:"actor_id"`
	Detail      string                `json:"detail" db:"detail"`
}
