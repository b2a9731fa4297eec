package entities

import "time"

type AvailabilityResponse struct {
	SlotID             int       `json:"slot_id"`
	RequestedStartTime time.Time `json:"requested_start_time"`
	RequestedEndTime   time.Time `json:"requested_end_time"`
	Available          bool      `json:"available"`
	EstimatedCost      float64   `json:"estimated_cost,omitempty"`
	Message            string    `json:"message,omitempty"`
}
