package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"inventory-system/pkg/constants"
	"inventory-system/pkg/types"
)

type Equipment struct {
	ID              uint64      `json:"id"`
	AssetCode       string      `json:"asset_code"`
	SerialNumber    string      `json:"serial_number"`
	Brand           string      `json:"brand"`
	Model           string      `json:"model"`
	EquipmentTypeID uint64      `json:"equipment_type_id"`
	PurchaseDate    time.Time   `json:"purchase_date"`
	PurchaseValue   float64     `json:"purchase_value"`
	WarrantyYears   int         `json:"warranty_years"`
	ChargerSerial   null.String `json:"charger_serial"`

	// Поля жизненного цикла. Меняются только переходами.
	State               constants.EquipmentState `json:"state"`
	LocationID          uint64                   `json:"location_id"` // 0 - свободный текст (рабочее место пользователя)
	LocationName        string                   `json:"location_name"`
	ResponsibleUserID   *uint64                  `json:"responsible_user_id"`
	ResponsibleUserName string                   `json:"responsible_user_name"`
	Notes               string                   `json:"notes"`

	// Держатель до отправки в обслуживание: к нему оборудование вернется после ремонта.
	PreMaintenanceHolderID   *uint64 `json:"pre_maintenance_holder_id"`
	PreMaintenanceHolderName string  `json:"pre_maintenance_holder_name"`

	types.BaseEntity
}

// Clone возвращает копию без общих указателей с оригиналом.
func (e Equipment) Clone() Equipment {
	c := e
	if e.ResponsibleUserID != nil {
		id := *e.ResponsibleUserID
		c.ResponsibleUserID = &id
	}
	if e.PreMaintenanceHolderID != nil {
		id := *e.PreMaintenanceHolderID
		c.PreMaintenanceHolderID = &id
	}
	return c
}

// HasResponsibleUser - true только для ACTIVE.
func (e Equipment) HasResponsibleUser() bool {
	return e.ResponsibleUserID != nil
}
