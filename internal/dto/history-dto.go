package dto

type HistoryEventDTO struct {
	ID      uint64 `json:"id"`
	Action  string `json:"action"`
	Date    string `json:"date"`
	ActorID uint64 `json:"actor_id"`
	Detail  string `json:"detail"`
}

type AssignmentRecordDTO struct {
	ID                uint64  `json:"id"`
	EquipmentID       uint64  `json:"equipment_id"`
	UserID            uint64  `json:"user_id"`
	UserName          string  `json:"user_name"`
	StartDate         string  `json:"start_date"`
	EndDate           *string `json:"end_date"`
	Location          string  `json:"location"`
	SignedDocumentRef *string `json:"signed_document_ref"`
}

type MaintenanceRecordDTO struct {
	ID          uint64  `json:"id"`
	Date        string  `json:"date"`
	Kind        string  `json:"kind"`
	Provider    string  `json:"provider"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description"`
}
