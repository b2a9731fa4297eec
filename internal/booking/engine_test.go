package booking

import (
	"testing"
	"time"

	"parkhive/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func at(hours float64) time.Time {
	return base.Add(time.Duration(hours * float64(time.Hour)))
}

func confirmed(id int, start, end time.Time) db.Booking {
	return db.Booking{ID: id, Status: db.StatusConfirmed, StartTime: start, EndTime: end}
}

func TestCheckAvailability_OverlapRules(t *testing.T) {
	existing := []db.Booking{confirmed(1, at(2), at(4))} // [12:00, 14:00)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
	}{
		{"entirely before", at(0), at(1), true},
		{"touching on the left", at(0), at(2), true},
		{"touching on the right", at(4), at(6), true},
		{"entirely after", at(5), at(7), true},
		{"overlapping start", at(1), at(3), false},
		{"overlapping end", at(3), at(5), false},
		{"contained", at(2.5), at(3.5), false},
		{"containing", at(1), at(5), false},
		{"identical", at(2), at(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, err := CheckAvailability(tt.start, tt.end, existing)
			require.NoError(t, err)
			assert.Equal(t, tt.available, available)
		})
	}
}

func TestCheckAvailability_ZeroLengthIntervalRejected(t *testing.T) {
	_, err := CheckAvailability(at(1), at(1), nil)
	assert.Error(t, err)

	_, err = CheckAvailability(at(2), at(1), nil)
	assert.Error(t, err)
}

func TestCheckAvailability_OnlyOccupyingStatusesBlock(t *testing.T) {
	for _, status := range []db.BookingStatus{db.StatusCompleted, db.StatusCancelled, db.StatusOverdue} {
		existing := []db.Booking{{ID: 1, Status: status, StartTime: at(2), EndTime: at(4)}}
		available, err := CheckAvailability(at(2), at(4), existing)
		require.NoError(t, err)
		assert.True(t, available, "status %s should not block", status)
	}

	for _, status := range []db.BookingStatus{db.StatusConfirmed, db.StatusActive} {
		existing := []db.Booking{{ID: 1, Status: status, StartTime: at(2), EndTime: at(4)}}
		available, err := CheckAvailability(at(2), at(4), existing)
		require.NoError(t, err)
		assert.False(t, available, "status %s should block", status)
	}
}

func TestCheckAvailability_Idempotent(t *testing.T) {
	existing := []db.Booking{confirmed(1, at(2), at(4))}

	first, err := CheckAvailability(at(3), at(5), existing)
	require.NoError(t, err)
	second, err := CheckAvailability(at(3), at(5), existing)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCheckAvailabilityExcluding_ExtensionReadmission(t *testing.T) {
	// Booking 1 holds [10:00,12:00), booking 2 holds [13:00,15:00).
	existing := []db.Booking{
		confirmed(1, at(0), at(2)),
		confirmed(2, at(3), at(5)),
	}

	// Extending booking 1 to 13:00 only touches booking 2: allowed.
	available, err := CheckAvailabilityExcluding(at(0), at(3), existing, 1)
	require.NoError(t, err)
	assert.True(t, available)

	// Extending booking 1 to 14:00 collides with booking 2.
	available, err = CheckAvailabilityExcluding(at(0), at(4), existing, 1)
	require.NoError(t, err)
	assert.False(t, available)

	// Without the exclusion the booking would collide with itself.
	available, err = CheckAvailability(at(0), at(3), existing)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestComputeCost(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		rate  float64
		want  float64
	}{
		{"thirty minutes bills one hour", at(0), at(0.5), 10, 10.00},
		{"fractional hours round up", at(0), at(2.25), 10, 30.00},
		{"exact hours", at(0), at(2), 10, 20.00},
		{"fractional rate rounds half-up", at(0), at(3), 33.335, 100.01},
		{"zero rate", at(0), at(2), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cost, err := ComputeCost(tt.start, tt.end, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cost)
		})
	}
}

func TestComputeCost_InvalidInputs(t *testing.T) {
	_, err := ComputeCost(at(0), at(2), -1)
	assert.Error(t, err)

	_, err = ComputeCost(at(2), at(2), 10)
	assert.Error(t, err)

	_, err = ComputeCost(at(2), at(0), 10)
	assert.Error(t, err)
}

func TestComputeExtensionCost(t *testing.T) {
	cost, err := ComputeExtensionCost(at(2), at(2.5), 10)
	require.NoError(t, err)
	assert.Equal(t, 10.00, cost, "a 30 minute extension bills a full hour")

	cost, err = ComputeExtensionCost(at(2), at(4), 12.5)
	require.NoError(t, err)
	assert.Equal(t, 25.00, cost)

	_, err = ComputeExtensionCost(at(2), at(2), 10)
	assert.Error(t, err)

	_, err = ComputeExtensionCost(at(2), at(1), 10)
	assert.Error(t, err)
}

func TestComputeRefund_Tiers(t *testing.T) {
	tests := []struct {
		name            string
		hoursUntilStart float64
		wantPct         int
		wantAmount      float64
	}{
		{"well before start", 3, 100, 100.00},
		{"between one and two hours", 1.5, 50, 50.00},
		{"under one hour", 0.5, 0, 0.00},
		{"exactly two hours", 2, 50, 50.00},
		{"exactly one hour", 1, 50, 50.00},
		{"already started", -0.5, 0, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := at(0)
			start := now.Add(time.Duration(tt.hoursUntilStart * float64(time.Hour)))
			refund, err := ComputeRefund(100, start, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPct, refund.Percentage)
			assert.Equal(t, tt.wantAmount, refund.Amount)
		})
	}
}

func TestComputeRefund_AmountRounding(t *testing.T) {
	// 33.33 at 50% is 16.665, which rounds half-up to 16.67.
	now := at(0)
	refund, err := ComputeRefund(33.33, now.Add(90*time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, 50, refund.Percentage)
	assert.Equal(t, 16.67, refund.Amount)
}

func TestValidateBookingWindow(t *testing.T) {
	now := at(0)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr string
	}{
		{"exactly one hour", at(1), at(2), ""},
		{"exactly twenty four hours", at(1), at(25), ""},
		{"starts right now", at(0), at(2), ""},
		{"thirty minutes", at(1), at(1.5), "Minimum booking duration is 1 hour"},
		{"twenty five hours", at(1), at(26), "Maximum booking duration is 24 hours"},
		{"start in the past", at(-1), at(2), "Start time cannot be in the past"},
		{"zero length", at(1), at(1), "end time must be after start time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBookingWindow(tt.start, tt.end, now)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 16.67, Round2(16.665))
	assert.Equal(t, 10.00, Round2(10))
	assert.Equal(t, 0.01, Round2(0.005))
	assert.Equal(t, 12.34, Round2(12.344))
}
