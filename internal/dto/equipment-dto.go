package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	AssetCode       string      `json:"asset_code" validate:"required,asset_code"`
	SerialNumber    string      `json:"serial_number" validate:"required,not_blank"`
	Brand           string      `json:"brand" validate:"required"`
	Model           string      `json:"model" validate:"required"`
	EquipmentTypeID uint64      `json:"equipment_type_id" validate:"required,gt=0"`
	PurchaseDate    time.Time   `json:"purchase_date" validate:"required"`
	PurchaseValue   float64     `json:"purchase_value" validate:"gte=0"`
	WarrantyYears   int         `json:"warranty_years" validate:"gte=0,lte=20"`
	ChargerSerial   null.String `json:"charger_serial"`
	Notes           string      `json:"notes"`

	// Начальное состояние; пусто - AVAILABLE.
	InitialState string `json:"initial_state" validate:"omitempty,oneof=AVAILABLE ACTIVE IN_MAINTENANCE PRE_DISPOSAL RETIRED"`
	// Для ACTIVE нужен пользователь и место; для остальных - склад.
	ResponsibleUserID null.Uint64 `json:"responsible_user_id"`
	LocationID        null.Uint64 `json:"location_id"`
	LocationName      null.String `json:"location_name"`
}

// UpdateEquipmentDTO - только описательные поля. Состояние, пользователь и место меняются переходами.
type UpdateEquipmentDTO struct {
	SerialNumber  *string     `json:"serial_number,omitempty" validate:"omitempty,not_blank"`
	Brand         *string     `json:"brand,omitempty" validate:"omitempty,not_blank"`
	Model         *string     `json:"model,omitempty" validate:"omitempty,not_blank"`
	PurchaseValue *float64    `json:"purchase_value,omitempty" validate:"omitempty,gte=0"`
	WarrantyYears *int        `json:"warranty_years,omitempty" validate:"omitempty,gte=0,lte=20"`
	ChargerSerial null.String `json:"charger_serial"`
	Notes         *string     `json:"notes,omitempty"`
}

type EquipmentDTO struct {
	ID                  uint64                `json:"id"`
	AssetCode           string                `json:"asset_code"`
	SerialNumber        string                `json:"serial_number"`
	Brand               string                `json:"brand"`
	Model               string                `json:"model"`
	EquipmentType       ShortEquipmentTypeDTO `json:"equipment_type"`
	PurchaseDate        string                `json:"purchase_date"`
	PurchaseValue       float64               `json:"purchase_value"`
	WarrantyYears       int                   `json:"warranty_years"`
	ChargerSerial       null.String           `json:"charger_serial"`
	State               string                `json:"state"`
	LocationID          uint64                `json:"location_id,omitempty"`
	LocationName        string                `json:"location_name"`
	ResponsibleUserID   *uint64               `json:"responsible_user_id"`
	ResponsibleUserName string                `json:"responsible_user_name,omitempty"`
	PendingHolderID     *uint64               `json:"pending_holder_id,omitempty"`
	Notes               string                `json:"notes"`
	CreatedAt           string                `json:"created_at"`
	UpdatedAt           string                `json:"updated_at"`
}

type ShortEquipmentTypeDTO struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	RenewalEligible bool   `json:"renewal_eligible"`
}

type CreateEquipmentTypeDTO struct {
	Name            string `json:"name" validate:"required,not_blank"`
	RenewalEligible bool   `json:"renewal_eligible"`
}

type CreateLocationDTO struct {
	Name        string `json:"name" validate:"required,not_blank"`
	IsWarehouse bool   `json:"is_warehouse"`
}

// ImportResultDTO - итог загрузки оборудования из Excel.
type ImportResultDTO struct {
	Created    int              `json:"created"`
	Skipped    int              `json:"skipped"`
	Errors     []ImportErrorDTO `json:"errors"`
	StoredFile string           `json:"stored_file,omitempty"`
}

type ImportErrorDTO struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}
