package service

import (
	"parkhive/internal/db"
	"parkhive/internal/entities"
	apperrors "parkhive/internal/errors"
	"parkhive/internal/repository"
)

// SlotService covers the manager/admin catalog operations: facilities and
// slots. Slots are only ever created here, never by the booking flow.
type SlotService struct {
	slotRepo     repository.SlotRepository
	facilityRepo repository.FacilityRepository
}

func NewSlotService(slotRepo repository.SlotRepository, facilityRepo repository.FacilityRepository) *SlotService {
	return &SlotService{slotRepo: slotRepo, facilityRepo: facilityRepo}
}

func (s *SlotService) CreateFacility(req entities.FacilityRequest) (*db.Facility, error) {
	f := &db.Facility{Name: req.Name, Address: req.Address, TotalSlots: req.TotalSlots}
	if err := s.facilityRepo.Create(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *SlotService) ListFacilities() ([]db.Facility, error) {
	return s.facilityRepo.List()
}

func (s *SlotService) CreateSlot(req entities.SlotRequest) (*db.Slot, error) {
	slotType := db.SlotType(req.SlotType)
	if !db.ValidSlotType(slotType) {
		return nil, apperrors.NewValidationError("slot_type", "unknown slot type '%s'", req.SlotType)
	}
	if req.HourlyRate < 0 {
		return nil, apperrors.NewValidationError("hourly_rate", "hourly rate cannot be negative")
	}
	if _, err := s.facilityRepo.GetByID(req.FacilityID); err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	slot := &db.Slot{
		FacilityID:  req.FacilityID,
		Code:        req.Code,
		SlotType:    slotType,
		HourlyRate:  req.HourlyRate,
		IsAvailable: available,
	}
	if err := s.slotRepo.Create(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *SlotService) UpdateSlot(slotID int, req entities.SlotRequest) (*db.Slot, error) {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return nil, err
	}
	if req.Code != "" {
		slot.Code = req.Code
	}
	if req.SlotType != "" {
		slotType := db.SlotType(req.SlotType)
		if !db.ValidSlotType(slotType) {
			return nil, apperrors.NewValidationError("slot_type", "unknown slot type '%s'", req.SlotType)
		}
		slot.SlotType = slotType
	}
	if req.HourlyRate < 0 {
		return nil, apperrors.NewValidationError("hourly_rate", "hourly rate cannot be negative")
	}
	if req.HourlyRate > 0 {
		slot.HourlyRate = req.HourlyRate
	}
	if req.IsAvailable != nil {
		slot.IsAvailable = *req.IsAvailable
	}
	if err := s.slotRepo.Update(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *SlotService) SetSlotAvailability(slotID int, available bool) error {
	return s.slotRepo.SetAvailability(slotID, available)
}

func (s *SlotService) ListSlots(facilityID int) ([]db.Slot, error) {
	return s.slotRepo.ListByFacility(facilityID)
}
