package dto

type ReplacementCandidateDTO struct {
	EquipmentID  uint64 `json:"equipment_id"`
	AssetCode    string `json:"asset_code"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	TypeName     string `json:"type_name"`
	PurchaseDate string `json:"purchase_date"`
	AgeYears     int    `json:"age_years"`
	State        string `json:"state"`
	HolderName   string `json:"holder_name,omitempty"`
}

type ReplacementReportDTO struct {
	EligibleFleet int                       `json:"eligible_fleet"`
	Quota         int                       `json:"quota"`
	AgedUnits     int                       `json:"aged_units"`
	Candidates    []ReplacementCandidateDTO `json:"candidates"`
}

// ReplacementPlanDTO - оборудование, которое включается в план замены или исключается из него.
type ReplacementPlanDTO struct {
	EquipmentIDs []uint64 `json:"equipment_ids" validate:"required,min=1,dive,gt=0"`
}
