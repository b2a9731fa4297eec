package repository

import (
	"database/sql"
	"fmt"

	"parkhive/internal/db"
)

// PaymentRepository records charges and refunds. Refund amounts live here,
// never on the booking row; a booking's total cost only decreases through
// an explicit refund record.
type PaymentRepository interface {
	Insert(p *db.Payment) error
	RecordRefund(bookingID int, refundAmount float64, refundPercent int) error
	ListForBooking(bookingID int) ([]db.Payment, error)
}

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(database *sql.DB) PaymentRepository {
	return &paymentRepository{DB: database}
}

func (r *paymentRepository) Insert(p *db.Payment) error {
	err := r.DB.QueryRow(`
		INSERT INTO payments (booking_id, amount, refund_amount, refund_percent, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at`,
		p.BookingID, p.Amount, p.RefundAmount, p.RefundPercent, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting payment for booking %d: %w", p.BookingID, err)
	}
	return nil
}

func (r *paymentRepository) RecordRefund(bookingID int, refundAmount float64, refundPercent int) error {
	_, err := r.DB.Exec(`
		UPDATE payments
		SET refund_amount = $2, refund_percent = $3, status = 'refunded'
		WHERE booking_id = $1`,
		bookingID, refundAmount, refundPercent,
	)
	if err != nil {
		return fmt.Errorf("error recording refund for booking %d: %w", bookingID, err)
	}
	return nil
}

func (r *paymentRepository) ListForBooking(bookingID int) ([]db.Payment, error) {
	rows, err := r.DB.Query(`
		SELECT id, booking_id, amount, refund_amount, refund_percent, status, created_at
		FROM payments WHERE booking_id = $1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("error listing payments for booking %d: %w", bookingID, err)
	}
	defer rows.Close()

	var payments []db.Payment
	for rows.Next() {
		var p db.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.RefundAmount, &p.RefundPercent, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating payment rows: %w", err)
	}
	return payments, nil
}
