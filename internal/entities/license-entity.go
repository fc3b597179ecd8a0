package entities

import (
	"time"

	"inventory-system/pkg/types"
)

type LicenseType struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	Description string `json:"description"`

	types.BaseEntity
}

type LicenseUnit struct {
	ID             uint64     `json:"id"`
	LicenseTypeID  uint64     `json:"license_type_id"`
	Key            string     `json:"key"`
	PurchaseDate   time.Time  `json:"purchase_date"`
	ExpirationDate time.Time  `json:"expiration_date"`
	AssignedUserID *uint64    `json:"assigned_user_id"`
	AssignedAt     *time.Time `json:"assigned_at"`
}

func (l LicenseUnit) IsAssigned() bool { return l.AssignedUserID != nil }

func (l LicenseUnit) Clone() LicenseUnit {
	c := l
	if l.AssignedUserID != nil {
		id := *l.AssignedUserID
		c.AssignedUserID = &id
	}
	if l.AssignedAt != nil {
		at := *l.AssignedAt
		c.AssignedAt = &at
	}
	return c
}
