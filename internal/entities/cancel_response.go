package entities

import "parkhive/internal/booking"

type CancelBookingResponse struct {
	Reference string         `json:"reference"`
	Refund    booking.Refund `json:"refund"`
	Message   string         `json:"message"`
}

type ExtendBookingResponse struct {
	Reference      string  `json:"reference"`
	NewEndTime     string  `json:"new_end_time"`
	AdditionalCost float64 `json:"additional_cost"`
	TotalCost      float64 `json:"total_cost"`
	Message        string  `json:"message"`
}
