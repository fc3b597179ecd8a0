package entities

import "inventory-system/pkg/types"

type EquipmentType struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	// RenewalEligible - рабочие станции (ПК, ноутбуки). Мониторы, принтеры и т.п. в план замены не попадают.
	RenewalEligible bool `json:"renewal_eligible"`

	types.BaseEntity
}
