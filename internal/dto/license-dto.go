package dto

import "time"

type CreateLicenseTypeDTO struct {
	Name        string `json:"name" validate:"required,not_blank"`
	Vendor      string `json:"vendor" validate:"required"`
	Description string `json:"description"`
}

type UpdateLicenseTypeDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,not_blank"`
	Vendor      *string `json:"vendor,omitempty" validate:"omitempty,not_blank"`
	Description *string `json:"description,omitempty"`
}

type IssueLicenseStockDTO struct {
	Quantity       int        `json:"quantity" validate:"required,gt=0,lte=1000"`
	ExpirationDate time.Time  `json:"expiration_date" validate:"required"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
}

type AssignLicenseDTO struct {
	UserID uint64 `json:"user_id" validate:"required,gt=0"`
}

type LicenseUnitDTO struct {
	ID             uint64  `json:"id"`
	LicenseTypeID  uint64  `json:"license_type_id"`
	Key            string  `json:"key"`
	PurchaseDate   string  `json:"purchase_date"`
	ExpirationDate string  `json:"expiration_date"`
	AssignedUserID *uint64 `json:"assigned_user_id"`
	AssignedAt     *string `json:"assigned_at"`
}

// LicensePoolSummaryDTO - остатки пула по типу лицензии.
type LicensePoolSummaryDTO struct {
	LicenseTypeID uint64 `json:"license_type_id"`
	Name          string `json:"name"`
	Vendor        string `json:"vendor"`
	Total         int    `json:"total"`
	Assigned      int    `json:"assigned"`
	Free          int    `json:"free"`
	Expired       int    `json:"expired"`
}
