package db

import "time"

// BookingStatus is the closed set of lifecycle states for a booking.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "CONFIRMED"
	StatusActive    BookingStatus = "ACTIVE"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
	StatusOverdue   BookingStatus = "OVERDUE"
)

// Occupies reports whether a booking in this status blocks its slot for
// overlap purposes. Only CONFIRMED and ACTIVE bookings hold the slot.
func (s BookingStatus) Occupies() bool {
	return s == StatusConfirmed || s == StatusActive
}

// Cancellable reports whether a booking in this status may still be
// cancelled or extended.
func (s BookingStatus) Cancellable() bool {
	return s == StatusConfirmed || s == StatusActive
}

type SlotType string

const (
	SlotRegular     SlotType = "REGULAR"
	SlotVIP         SlotType = "VIP"
	SlotHandicapped SlotType = "HANDICAPPED"
	SlotElectric    SlotType = "ELECTRIC_VEHICLE"
)

// ValidSlotType reports whether t is one of the known slot types.
func ValidSlotType(t SlotType) bool {
	switch t {
	case SlotRegular, SlotVIP, SlotHandicapped, SlotElectric:
		return true
	}
	return false
}

type Facility struct {
	ID         int
	Name       string
	Address    string
	TotalSlots int
	CreatedAt  time.Time
}

type Slot struct {
	ID         int
	FacilityID int
	Code       string
	SlotType   SlotType
	HourlyRate float64
	// IsAvailable is the manual availability flag maintained by managers.
	// It is independent of the time-based overlap check; both gates must
	// pass before a booking is admitted.
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Booking struct {
	ID            int
	Reference     string
	SlotID        int
	UserName      string
	UserEmail     string
	UserPhone     string
	VehicleNumber string
	VehicleModel  string
	Status        BookingStatus
	StartTime     time.Time
	EndTime       time.Time
	TotalCost     float64
	// ExtendedTime accumulates the hours added after creation.
	ExtendedTime    float64
	StripeSessionID string
	PaymentStatus   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Payment struct {
	ID            int
	BookingID     int
	Amount        float64
	RefundAmount  float64
	RefundPercent int
	Status        string
	CreatedAt     time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}
