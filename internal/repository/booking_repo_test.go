package repository

import (
	"testing"
	"time"

	"parkhive/internal/db"
	apperrors "parkhive/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRepository_InsertBookingAtomic(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	repo := NewBookingRepository(database)
	start := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		b := &db.Booking{
			Reference: "ref-1",
			SlotID:    7,
			Status:    db.StatusConfirmed,
			StartTime: start,
			EndTime:   end,
			TotalCost: 10,
		}

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
			WithArgs(7, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(1, time.Now(), time.Now()))
		mock.ExpectCommit()

		err := repo.InsertBookingAtomic(b)
		require.NoError(t, err)
		assert.Equal(t, 1, b.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OverlapConflict", func(t *testing.T) {
		b := &db.Booking{
			Reference: "ref-2",
			SlotID:    7,
			Status:    db.StatusConfirmed,
			StartTime: start,
			EndTime:   end,
		}

		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
			WithArgs(7, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.InsertBookingAtomic(b)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, 0, b.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_ExtendBookingAtomic(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	repo := NewBookingRepository(database)
	oldEnd := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
			WithArgs(7, 42, newEnd).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("UPDATE bookings").
			WithArgs(42, newEnd, 110.0, 1.5, oldEnd).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.ExtendBookingAtomic(42, 7, oldEnd, newEnd, 110.0, 1.5)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OverlapConflict", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
			WithArgs(7, 42, newEnd).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.ExtendBookingAtomic(42, 7, oldEnd, newEnd, 110.0, 1.5)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// The update carries the end time the totals were computed against, so
	// a concurrent extension that moved the end time first (or a status
	// change) leaves zero rows and surfaces as Conflict instead of
	// overwriting the row with stale-derived totals.
	t.Run("RowChangedUnderfoot", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("SELECT pg_advisory_xact_lock").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT COUNT(.+) FROM bookings").
			WithArgs(7, 42, newEnd).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("UPDATE bookings SET end_time = (.+) WHERE id = (.+) AND end_time = (.+) AND status IN").
			WithArgs(42, newEnd, 110.0, 1.5, oldEnd).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ExtendBookingAtomic(42, 7, oldEnd, newEnd, 110.0, 1.5)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_UpdateStatus(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	repo := NewBookingRepository(database)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET status").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateStatus(42, []db.BookingStatus{db.StatusConfirmed}, db.StatusActive)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRaceIsConflict", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET status").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(42, []db.BookingStatus{db.StatusActive}, db.StatusCompleted)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_UpdatePaymentStatusBySessionID(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	repo := NewBookingRepository(database)
	from := []db.BookingStatus{db.StatusConfirmed}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET payment_status = (.+) WHERE stripe_session_id = (.+) AND status = ANY").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePaymentStatusBySessionID("cs_1", "succeeded", from, db.StatusConfirmed)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// The session belongs to a booking that already left the expected
	// statuses; the callback must not drag it back into one.
	t.Run("StatusLeftIsConflict", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET payment_status = (.+) WHERE stripe_session_id = (.+) AND status = ANY").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePaymentStatusBySessionID("cs_1", "succeeded", from, db.StatusConfirmed)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingRepository_GetByReference(t *testing.T) {
	database, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer database.Close()

	repo := NewBookingRepository(database)

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByReference("missing")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows([]string{
			"id", "reference", "slot_id", "user_name", "user_email", "user_phone", "vehicle_number", "vehicle_model",
			"status", "start_time", "end_time", "total_cost", "extended_time", "stripe_session_id", "payment_status",
			"created_at", "updated_at",
		}).AddRow(1, "ref-1", 7, "Dana", "dana@example.com", "+390000000", "AB123CD", "Model 3",
			"CONFIRMED", now, now.Add(2*time.Hour), 10.0, 0.0, "cs_1", "pending", now, now)

		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE reference").
			WithArgs("ref-1").
			WillReturnRows(rows)

		b, err := repo.GetByReference("ref-1")
		require.NoError(t, err)
		assert.Equal(t, db.StatusConfirmed, b.Status)
		assert.Equal(t, 10.0, b.TotalCost)
	})
}
