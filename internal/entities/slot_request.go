package entities

type SlotRequest struct {
	FacilityID  int     `json:"facility_id" validate:"required"`
	Code        string  `json:"code" validate:"required"`
	SlotType    string  `json:"slot_type" validate:"required"`
	HourlyRate  float64 `json:"hourly_rate" validate:"gte=0"`
	IsAvailable *bool   `json:"is_available"`
}

type FacilityRequest struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address"`
	TotalSlots int    `json:"total_slots" validate:"gte=0"`
}
