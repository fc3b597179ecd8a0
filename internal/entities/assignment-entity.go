package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// AssignmentRecord - одна строка на каждую выдачу оборудования пользователю.
type AssignmentRecord struct {
	ID                uint64      `json:"id"`
	EquipmentID       uint64      `json:"equipment_id"`
	UserID            uint64      `json:"user_id"`
	UserName          string      `json:"user_name"`
	StartDate         time.Time   `json:"start_date"`
	EndDate           *time.Time  `json:"end_date"`
	Location          string      `json:"location"`
	SignedDocumentRef null.String `json:"signed_document_ref"`
}

func (a AssignmentRecord) IsOpen() bool { return a.EndDate == nil }

func (a AssignmentRecord) Clone() AssignmentRecord {
	c := a
	if a.EndDate != nil {
		end := *a.EndDate
		c.EndDate = &end
	}
	return c
}
