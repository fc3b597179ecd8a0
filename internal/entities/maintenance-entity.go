package entities

import (
	"time"

	"inventory-system/pkg/constants"
)

type MaintenanceRecord struct {
	ID          uint64                    `json:"id"`
	EquipmentID uint64                    `json:"equipment_id"`
	Date        time.Time                 `json:"date"`
	Kind        constants.MaintenanceKind `json:"kind"`
	Provider    string                    `json:"provider"`
	Cost        float64                   `json:"cost"`
	Description string                    `json:"description"`
}
