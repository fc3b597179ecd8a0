package entities

import "inventory-system/pkg/types"

type User struct {
	ID       uint64 `json:"id"`
	Fio      string `json:"fio"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`

	types.BaseEntity
}
