// Package booking holds the availability and pricing engine. Every function
// here is a pure computation over the values passed in: no storage, no clock
// reads, no logging. The service layer owns all I/O around these decisions.
package booking

import (
	"math"
	"time"

	"parkhive/internal/db"
	apperrors "parkhive/internal/errors"
)

const (
	// MinDuration is the shortest bookable window at creation time.
	MinDuration = time.Hour
	// MaxDuration is the longest bookable window at creation time.
	MaxDuration = 24 * time.Hour
)

// Refund is the outcome of the tiered cancellation policy.
type Refund struct {
	Amount     float64 `json:"amount"`
	Percentage int     `json:"percentage"`
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// share at least one instant. Intervals that merely touch do not overlap,
// so back-to-back bookings are allowed.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// CheckAvailability reports whether [start,end) is free on a slot given the
// slot's existing bookings. Only bookings whose status occupies the slot
// (CONFIRMED or ACTIVE) are considered; COMPLETED, CANCELLED and OVERDUE
// rows never block. Safe to call repeatedly with the same inputs.
func CheckAvailability(start, end time.Time, existing []db.Booking) (bool, error) {
	return CheckAvailabilityExcluding(start, end, existing, 0)
}

// CheckAvailabilityExcluding is CheckAvailability minus one booking, used
// when re-admitting an extended interval: the booking being extended must
// not collide with itself.
func CheckAvailabilityExcluding(start, end time.Time, existing []db.Booking, excludeBookingID int) (bool, error) {
	if !end.After(start) {
		return false, apperrors.NewValidationError("interval", "end time must be after start time")
	}
	for _, b := range existing {
		if excludeBookingID != 0 && b.ID == excludeBookingID {
			continue
		}
		if !b.Status.Occupies() {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return false, nil
		}
	}
	return true, nil
}

// BillableHours is the ceiling of the duration in hours with a one hour
// minimum.
func BillableHours(start, end time.Time) float64 {
	hours := math.Ceil(end.Sub(start).Hours())
	if hours < 1 {
		hours = 1
	}
	return hours
}

// ComputeCost returns the charge for [start,end) at the given hourly rate,
// rounded half-up to currency precision.
func ComputeCost(start, end time.Time, hourlyRate float64) (float64, error) {
	if hourlyRate < 0 {
		return 0, apperrors.NewValidationError("hourly_rate", "hourly rate cannot be negative")
	}
	if !end.After(start) {
		return 0, apperrors.NewValidationError("interval", "end time must be after start time")
	}
	return Round2(BillableHours(start, end) * hourlyRate), nil
}

// ComputeExtensionCost returns the additional charge for pushing a booking's
// end time from oldEnd to newEnd. The caller adds the result to the existing
// total cost and increments the booking's extended hours.
func ComputeExtensionCost(oldEnd, newEnd time.Time, hourlyRate float64) (float64, error) {
	if hourlyRate < 0 {
		return 0, apperrors.NewValidationError("hourly_rate", "hourly rate cannot be negative")
	}
	if !newEnd.After(oldEnd) {
		return 0, apperrors.NewValidationError("extension", "new end time must be after the current end time")
	}
	additional := math.Ceil(newEnd.Sub(oldEnd).Hours())
	return Round2(additional * hourlyRate), nil
}

// ComputeRefund applies the tiered cancellation policy as a pure function of
// the wall-clock time passed in:
//
//	more than 2 hours before start  -> 100%
//	between 1 and 2 hours inclusive ->  50%
//	under 1 hour (or already begun) ->   0%
func ComputeRefund(totalCost float64, start, now time.Time) (Refund, error) {
	if totalCost < 0 {
		return Refund{}, apperrors.NewValidationError("total_cost", "total cost cannot be negative")
	}
	hoursUntilStart := start.Sub(now).Hours()

	var pct int
	switch {
	case hoursUntilStart > 2:
		pct = 100
	case hoursUntilStart >= 1:
		pct = 50
	default:
		pct = 0
	}
	return Refund{
		Amount:     Round2(totalCost * float64(pct) / 100),
		Percentage: pct,
	}, nil
}

// ValidateBookingWindow applies the creation-time policy gates. Extensions
// are not re-validated against these bounds.
func ValidateBookingWindow(start, end, now time.Time) error {
	if start.Before(now) {
		return apperrors.NewValidationError("start_time", "Start time cannot be in the past")
	}
	if !end.After(start) {
		return apperrors.NewValidationError("interval", "end time must be after start time")
	}
	duration := end.Sub(start)
	if duration < MinDuration {
		return apperrors.NewValidationError("duration", "Minimum booking duration is 1 hour")
	}
	if duration > MaxDuration {
		return apperrors.NewValidationError("duration", "Maximum booking duration is 24 hours")
	}
	return nil
}

// Round2 rounds a non-negative amount half-up to two decimal places. Amounts
// are rounded at every computed boundary, not only at display time. The
// epsilon compensates for binary representation error right at the half-cent
// boundary (16.665 stores as 16.66499...).
func Round2(amount float64) float64 {
	return math.Floor(amount*100+0.5+1e-9) / 100
}
