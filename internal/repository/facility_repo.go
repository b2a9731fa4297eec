package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"parkhive/internal/db"
	apperrors "parkhive/internal/errors"
)

type FacilityRepository interface {
	GetByID(facilityID int) (*db.Facility, error)
	Create(f *db.Facility) error
	List() ([]db.Facility, error)
}

type facilityRepository struct {
	DB *sql.DB
}

func NewFacilityRepository(database *sql.DB) FacilityRepository {
	return &facilityRepository{DB: database}
}

func (r *facilityRepository) GetByID(facilityID int) (*db.Facility, error) {
	var f db.Facility
	err := r.DB.QueryRow(
		`SELECT id, name, address, total_slots, created_at FROM facilities WHERE id = $1`, facilityID,
	).Scan(&f.ID, &f.Name, &f.Address, &f.TotalSlots, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %d", facilityID))
		}
		return nil, fmt.Errorf("error querying facility %d: %w", facilityID, err)
	}
	return &f, nil
}

func (r *facilityRepository) Create(f *db.Facility) error {
	err := r.DB.QueryRow(
		`INSERT INTO facilities (name, address, total_slots, created_at) VALUES ($1, $2, $3, NOW()) RETURNING id, created_at`,
		f.Name, f.Address, f.TotalSlots,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating facility: %w", err)
	}
	return nil
}

func (r *facilityRepository) List() ([]db.Facility, error) {
	rows, err := r.DB.Query(`SELECT id, name, address, total_slots, created_at FROM facilities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing facilities: %w", err)
	}
	defer rows.Close()

	var facilities []db.Facility
	for rows.Next() {
		var f db.Facility
		if err := rows.Scan(&f.ID, &f.Name, &f.Address, &f.TotalSlots, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning facility row: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating facility rows: %w", err)
	}
	return facilities, nil
}
