package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"parkhive/internal/db"

	"github.com/lib/pq"
)

// JobRepository backs the scheduled sweeps. The OVERDUE transition is
// time-triggered and produced only here, never by the pricing engine.
type JobRepository interface {
	GetActiveBookingIDsPastEndTime() ([]int, error)
	UpdateBookingStatuses(ids []int, newStatus db.BookingStatus) error
	DeleteUnpaidBookingsOlderThan(before time.Time) (int64, error)
}

type jobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) JobRepository {
	return &jobRepository{DB: database}
}

// GetActiveBookingIDsPastEndTime finds ACTIVE bookings whose end time has
// passed without a check-out.
func (r *jobRepository) GetActiveBookingIDsPastEndTime() ([]int, error) {
	rows, err := r.DB.Query(`SELECT id FROM bookings WHERE status = 'ACTIVE' AND end_time < NOW()`)
	if err != nil {
		return nil, fmt.Errorf("error querying active bookings past end time: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating rows: %w", err)
	}
	return ids, nil
}

func (r *jobRepository) UpdateBookingStatuses(ids []int, newStatus db.BookingStatus) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.Exec(
		`UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = ANY($2)`,
		newStatus, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("error updating booking statuses: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Updated status for %d bookings to '%s'", rowsAffected, newStatus)
	}
	return nil
}

// DeleteUnpaidBookingsOlderThan removes CONFIRMED bookings whose payment
// never completed, freeing their intervals.
func (r *jobRepository) DeleteUnpaidBookingsOlderThan(before time.Time) (int64, error) {
	result, err := r.DB.Exec(
		`DELETE FROM bookings WHERE status = 'CONFIRMED' AND payment_status = 'pending' AND created_at < $1`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("error deleting unpaid bookings: %w", err)
	}
	return result.RowsAffected()
}
