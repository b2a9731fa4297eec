package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"parkhive/internal/db"
	apperrors "parkhive/internal/errors"

	"github.com/lib/pq"
)

const bookingColumns = `id, reference, slot_id, user_name, user_email, user_phone, vehicle_number, vehicle_model,
	status, start_time, end_time, total_cost, extended_time, stripe_session_id, payment_status, created_at, updated_at`

// BookingRepository is the authoritative booking store. InsertBookingAtomic
// and ExtendBookingAtomic serialize per slot so the check-then-insert
// sequence cannot admit overlapping bookings under concurrent requests.
type BookingRepository interface {
	ListOccupyingBookings(slotID int) ([]db.Booking, error)
	InsertBookingAtomic(b *db.Booking) error
	ExtendBookingAtomic(bookingID, slotID int, expectedEndTime, newEndTime time.Time, newTotalCost, newExtendedTime float64) error
	GetByReference(reference string) (*db.Booking, error)
	GetByStripeSessionID(sessionID string) (*db.Booking, error)
	UpdateStatus(bookingID int, from []db.BookingStatus, to db.BookingStatus) error
	UpdatePaymentStatusBySessionID(sessionID, paymentStatus string, from []db.BookingStatus, to db.BookingStatus) error
	ListBookings(date, status, slotType string) ([]db.Booking, error)
}

type bookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(database *sql.DB) BookingRepository {
	return &bookingRepository{DB: database}
}

// ListOccupyingBookings returns the CONFIRMED and ACTIVE bookings for a slot.
// Completed, cancelled and overdue rows never block new bookings.
func (r *bookingRepository) ListOccupyingBookings(slotID int) ([]db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE slot_id = $1 AND status = ANY($2) ORDER BY start_time`, bookingColumns)
	rows, err := r.DB.Query(query, slotID, pq.Array([]string{string(db.StatusConfirmed), string(db.StatusActive)}))
	if err != nil {
		return nil, fmt.Errorf("error querying occupying bookings for slot %d: %w", slotID, err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

// InsertBookingAtomic takes a per-slot advisory lock, re-runs the overlap
// check against CONFIRMED/ACTIVE rows and inserts, all in one transaction.
// Returns a ConflictError when the interval is already taken.
func (r *bookingRepository) InsertBookingAtomic(b *db.Booking) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting booking transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, b.SlotID); err != nil {
		return fmt.Errorf("error acquiring slot lock: %w", err)
	}

	var overlapping int
	err = tx.QueryRow(`
		SELECT COUNT(1) FROM bookings
		WHERE slot_id = $1
		  AND status IN ('CONFIRMED', 'ACTIVE')
		  AND start_time < $3
		  AND end_time > $2`,
		b.SlotID, b.StartTime, b.EndTime,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("error checking overlaps for slot %d: %w", b.SlotID, err)
	}
	if overlapping > 0 {
		return apperrors.NewConflictError("slot %d is already booked for the requested time", b.SlotID)
	}

	err = tx.QueryRow(`
		INSERT INTO bookings
		(reference, slot_id, user_name, user_email, user_phone, vehicle_number, vehicle_model,
		 status, start_time, end_time, total_cost, extended_time, stripe_session_id, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		b.Reference, b.SlotID, b.UserName, b.UserEmail, b.UserPhone, b.VehicleNumber, b.VehicleModel,
		b.Status, b.StartTime, b.EndTime, b.TotalCost, b.ExtendedTime, b.StripeSessionID, b.PaymentStatus,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting booking: %w", err)
	}

	return tx.Commit()
}

// ExtendBookingAtomic pushes a booking's end time forward under the same
// per-slot lock, excluding the booking itself from the overlap check. The
// new totals were computed against expectedEndTime, so the update only
// applies while the row still ends there; a concurrent extension that
// committed first surfaces as a ConflictError rather than a lost update.
// The booking row is untouched when the extended interval collides.
func (r *bookingRepository) ExtendBookingAtomic(bookingID, slotID int, expectedEndTime, newEndTime time.Time, newTotalCost, newExtendedTime float64) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("error starting extension transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`SELECT pg_advisory_xact_lock($1)`, slotID); err != nil {
		return fmt.Errorf("error acquiring slot lock: %w", err)
	}

	var overlapping int
	err = tx.QueryRow(`
		SELECT COUNT(1) FROM bookings
		WHERE slot_id = $1
		  AND id <> $2
		  AND status IN ('CONFIRMED', 'ACTIVE')
		  AND start_time < $3
		  AND end_time > (SELECT end_time FROM bookings WHERE id = $2)`,
		slotID, bookingID, newEndTime,
	).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("error checking overlaps for extension of booking %d: %w", bookingID, err)
	}
	if overlapping > 0 {
		return apperrors.NewConflictError("extended time collides with another booking on slot %d", slotID)
	}

	result, err := tx.Exec(`
		UPDATE bookings
		SET end_time = $2, total_cost = $3, extended_time = $4, updated_at = NOW()
		WHERE id = $1 AND end_time = $5 AND status IN ('CONFIRMED', 'ACTIVE')`,
		bookingID, newEndTime, newTotalCost, newExtendedTime, expectedEndTime,
	)
	if err != nil {
		return fmt.Errorf("error extending booking %d: %w", bookingID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError("booking %d is no longer extendable", bookingID)
	}

	return tx.Commit()
}

func (r *bookingRepository) GetByReference(reference string) (*db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE reference = $1`, bookingColumns)
	b, err := scanBooking(r.DB.QueryRow(query, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking '%s'", reference))
		}
		return nil, fmt.Errorf("error querying booking '%s': %w", reference, err)
	}
	return b, nil
}

func (r *bookingRepository) GetByStripeSessionID(sessionID string) (*db.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE stripe_session_id = $1`, bookingColumns)
	b, err := scanBooking(r.DB.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking for session '%s'", sessionID))
		}
		return nil, fmt.Errorf("error querying booking by session: %w", err)
	}
	return b, nil
}

// UpdateStatus is a compare-and-swap transition: the row moves to the target
// status only while it is still in one of the expected source statuses. A
// lost race surfaces as a ConflictError.
func (r *bookingRepository) UpdateStatus(bookingID int, from []db.BookingStatus, to db.BookingStatus) error {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}
	result, err := r.DB.Exec(
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
		to, bookingID, pq.Array(sources),
	)
	if err != nil {
		return fmt.Errorf("error updating booking %d status: %w", bookingID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError("booking %d is not in a state that allows the %s transition", bookingID, to)
	}
	return nil
}

// UpdatePaymentStatusBySessionID applies a payment-provider callback as a
// compare-and-swap, like UpdateStatus. Webhooks arrive out of band, so a
// session whose booking already left the expected statuses (cancelled while
// the checkout was still open, say) must not be dragged back into one.
func (r *bookingRepository) UpdatePaymentStatusBySessionID(sessionID, paymentStatus string, from []db.BookingStatus, to db.BookingStatus) error {
	sources := make([]string, len(from))
	for i, s := range from {
		sources[i] = string(s)
	}
	result, err := r.DB.Exec(
		`UPDATE bookings SET payment_status = $1, status = $2, updated_at = NOW() WHERE stripe_session_id = $3 AND status = ANY($4)`,
		paymentStatus, to, sessionID, pq.Array(sources),
	)
	if err != nil {
		return fmt.Errorf("error updating payment status for session '%s': %w", sessionID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError("booking for session '%s' is not in a state that accepts the %s update", sessionID, paymentStatus)
	}
	return nil
}

func (r *bookingRepository) ListBookings(date, status, slotType string) ([]db.Booking, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM bookings b
	JOIN slots s ON s.id = b.slot_id
	WHERE 1=1`, prefixedBookingColumns("b"))
	args := []interface{}{}
	idx := 1

	if date != "" {
		query += " AND DATE(b.start_time) = $" + strconv.Itoa(idx)
		args = append(args, date)
		idx++
	}
	if status != "" {
		query += " AND b.status = $" + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	if slotType != "" {
		query += " AND s.slot_type = $" + strconv.Itoa(idx)
		args = append(args, slotType)
		idx++
	}
	query += " ORDER BY b.start_time DESC"

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*db.Booking, error) {
	var b db.Booking
	err := row.Scan(
		&b.ID, &b.Reference, &b.SlotID, &b.UserName, &b.UserEmail, &b.UserPhone, &b.VehicleNumber, &b.VehicleModel,
		&b.Status, &b.StartTime, &b.EndTime, &b.TotalCost, &b.ExtendedTime, &b.StripeSessionID, &b.PaymentStatus,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func prefixedBookingColumns(alias string) string {
	return alias + `.id, ` + alias + `.reference, ` + alias + `.slot_id, ` + alias + `.user_name, ` + alias + `.user_email, ` +
		alias + `.user_phone, ` + alias + `.vehicle_number, ` + alias + `.vehicle_model, ` + alias + `.status, ` +
		alias + `.start_time, ` + alias + `.end_time, ` + alias + `.total_cost, ` + alias + `.extended_time, ` +
		alias + `.stripe_session_id, ` + alias + `.payment_status, ` + alias + `.created_at, ` + alias + `.updated_at`
}
