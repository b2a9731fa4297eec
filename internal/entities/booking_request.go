package entities

import "time"

type CreateBookingRequest struct {
	SlotID        int       `json:"slot_id" validate:"required"`
	UserName      string    `json:"user_name" validate:"required"`
	UserEmail     string    `json:"user_email" validate:"required,email"`
	UserPhone     string    `json:"user_phone" validate:"omitempty,e164"`
	VehicleNumber string    `json:"vehicle_number" validate:"required"`
	VehicleModel  string    `json:"vehicle_model"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
}

type ExtendBookingRequest struct {
	NewEndTime time.Time `json:"new_end_time" validate:"required"`
}

type AvailabilityRequest struct {
	SlotID    int       `json:"slot_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}
