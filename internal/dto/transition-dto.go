package dto

import "github.com/aarondl/null/v8"

type AssignEquipmentDTO struct {
	UserID            uint64      `json:"user_id" validate:"required,gt=0"`
	Location          string      `json:"location" validate:"required,not_blank"`
	SignedDocumentRef null.String `json:"signed_document_ref"`
}

type ReturnEquipmentDTO struct {
	WarehouseID uint64 `json:"warehouse_id" validate:"required,gt=0"`
	Notes       string `json:"notes"`
}

type MarkForDisposalDTO struct {
	WarehouseID uint64 `json:"warehouse_id" validate:"required,gt=0"`
	Reason      string `json:"reason"`
}

type SendToMaintenanceDTO struct {
	Reason string `json:"reason" validate:"required,not_blank"`
}

// FinalizeMaintenanceDTO - вид и итог принимаются в любом регистре, сервис приводит их к верхнему.
type FinalizeMaintenanceDTO struct {
	Kind        string  `json:"kind" validate:"required,not_blank"`
	Provider    string  `json:"provider" validate:"required,not_blank"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	Description string  `json:"description" validate:"required,not_blank"`
	Disposition string  `json:"disposition" validate:"required,not_blank"`
	// Нужен, только если до обслуживания у оборудования не было ответственного.
	WarehouseID null.Uint64 `json:"warehouse_id"`
}

type DecommissionDTO struct {
	Reason string `json:"reason" validate:"required,not_blank"`
}

type ReleaseUserHoldingsDTO struct {
	WarehouseID uint64 `json:"warehouse_id" validate:"required,gt=0"`
}

// ReleaseUserHoldingsResultDTO - что было снято с пользователя.
type ReleaseUserHoldingsResultDTO struct {
	UserID             uint64   `json:"user_id"`
	ReturnedEquipment  []uint64 `json:"returned_equipment"`
	ReleasedFromRepair []uint64 `json:"released_from_maintenance"`
	ReleasedLicenses   []uint64 `json:"released_licenses"`
	Deactivated        bool     `json:"deactivated"`
}
