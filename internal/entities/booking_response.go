package entities

import (
	"time"

	"parkhive/internal/db"
)

type BookingResponse struct {
	Reference     string           `json:"reference"`
	SlotID        int              `json:"slot_id"`
	SlotCode      string           `json:"slot_code,omitempty"`
	SlotType      db.SlotType      `json:"slot_type,omitempty"`
	UserName      string           `json:"user_name"`
	UserEmail     string           `json:"user_email"`
	UserPhone     string           `json:"user_phone"`
	VehicleNumber string           `json:"vehicle_number"`
	VehicleModel  string           `json:"vehicle_model"`
	Status        db.BookingStatus `json:"status"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       time.Time        `json:"end_time"`
	TotalCost     float64          `json:"total_cost"`
	ExtendedTime  float64          `json:"extended_time"`
	PaymentStatus string           `json:"payment_status,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type CreateBookingResponse struct {
	Reference   string  `json:"reference"`
	TotalCost   float64 `json:"total_cost"`
	CheckoutURL string  `json:"checkout_url,omitempty"`
	SessionID   string  `json:"session_id,omitempty"`
	Message     string  `json:"message"`
}

type BookingsList struct {
	Total    int               `json:"total"`
	Bookings []BookingResponse `json:"bookings"`
}
