package service

import (
	"fmt"
	"log"
	"time"

	"parkhive/internal/db"
	"parkhive/internal/repository"
)

// JobService backs the cron sweeps. These are the only producers of the
// OVERDUE transition; the pricing engine has no notion of current time.
type JobService struct {
	Repo repository.JobRepository
}

func NewJobService(repo repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// MarkOverdueBookings flags ACTIVE bookings past their end time without a
// check-out. Overdue rows no longer occupy their slot; resolution is a
// manual operator action.
func (s *JobService) MarkOverdueBookings() error {
	log.Println("Cron Job: Checking for bookings to mark as OVERDUE...")

	bookingIDs, err := s.Repo.GetActiveBookingIDsPastEndTime()
	if err != nil {
		return fmt.Errorf("cron job: failed to get active bookings past end time: %w", err)
	}

	if len(bookingIDs) == 0 {
		log.Println("Cron Job: No active bookings found past their end time.")
		return nil
	}

	log.Printf("Cron Job: Found %d bookings to mark as OVERDUE. IDs: %v", len(bookingIDs), bookingIDs)

	if err := s.Repo.UpdateBookingStatuses(bookingIDs, db.StatusOverdue); err != nil {
		return fmt.Errorf("cron job: failed to update booking statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully marked %d bookings as OVERDUE.", len(bookingIDs))
	return nil
}

// CleanupUnpaidBookings deletes bookings whose checkout was never completed,
// releasing their intervals.
func (s *JobService) CleanupUnpaidBookings(olderThan time.Duration) (int64, error) {
	return s.Repo.DeleteUnpaidBookingsOlderThan(time.Now().UTC().Add(-olderThan))
}
