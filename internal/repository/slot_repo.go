package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"parkhive/internal/db"
	apperrors "parkhive/internal/errors"
)

// SlotRepository is the slot catalog. It supplies the hourly rate and the
// manual availability flag the admission path gates on.
type SlotRepository interface {
	GetByID(slotID int) (*db.Slot, error)
	Create(slot *db.Slot) error
	Update(slot *db.Slot) error
	SetAvailability(slotID int, available bool) error
	ListByFacility(facilityID int) ([]db.Slot, error)
}

type slotRepository struct {
	DB *sql.DB
}

func NewSlotRepository(database *sql.DB) SlotRepository {
	return &slotRepository{DB: database}
}

func (r *slotRepository) GetByID(slotID int) (*db.Slot, error) {
	var s db.Slot
	err := r.DB.QueryRow(`
		SELECT id, facility_id, code, slot_type, hourly_rate, is_available, created_at, updated_at
		FROM slots WHERE id = $1`, slotID,
	).Scan(&s.ID, &s.FacilityID, &s.Code, &s.SlotType, &s.HourlyRate, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("slot %d", slotID))
		}
		return nil, fmt.Errorf("error querying slot %d: %w", slotID, err)
	}
	return &s, nil
}

func (r *slotRepository) Create(slot *db.Slot) error {
	err := r.DB.QueryRow(`
		INSERT INTO slots (facility_id, code, slot_type, hourly_rate, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		slot.FacilityID, slot.Code, slot.SlotType, slot.HourlyRate, slot.IsAvailable,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating slot: %w", err)
	}
	return nil
}

func (r *slotRepository) Update(slot *db.Slot) error {
	result, err := r.DB.Exec(`
		UPDATE slots
		SET code = $2, slot_type = $3, hourly_rate = $4, is_available = $5, updated_at = NOW()
		WHERE id = $1`,
		slot.ID, slot.Code, slot.SlotType, slot.HourlyRate, slot.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("error updating slot %d: %w", slot.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("slot %d", slot.ID))
	}
	return nil
}

func (r *slotRepository) SetAvailability(slotID int, available bool) error {
	result, err := r.DB.Exec(`UPDATE slots SET is_available = $2, updated_at = NOW() WHERE id = $1`, slotID, available)
	if err != nil {
		return fmt.Errorf("error toggling slot %d availability: %w", slotID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("slot %d", slotID))
	}
	return nil
}

func (r *slotRepository) ListByFacility(facilityID int) ([]db.Slot, error) {
	rows, err := r.DB.Query(`
		SELECT id, facility_id, code, slot_type, hourly_rate, is_available, created_at, updated_at
		FROM slots WHERE facility_id = $1 ORDER BY code`, facilityID)
	if err != nil {
		return nil, fmt.Errorf("error listing slots for facility %d: %w", facilityID, err)
	}
	defer rows.Close()

	var slots []db.Slot
	for rows.Next() {
		var s db.Slot
		if err := rows.Scan(&s.ID, &s.FacilityID, &s.Code, &s.SlotType, &s.HourlyRate, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning slot row: %w", err)
		}
		slots = append(slots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating slot rows: %w", err)
	}
	return slots, nil
}
