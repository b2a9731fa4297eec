package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"parkhive/internal/entities"
	apperrors "parkhive/internal/errors"
	"parkhive/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Bookings *service.BookingService
	Slots    *service.SlotService
	validate *validator.Validate
}

func NewAdminHandler(bookings *service.BookingService, slots *service.SlotService) *AdminHandler {
	return &AdminHandler{Bookings: bookings, Slots: slots, validate: validator.New()}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	status := r.URL.Query().Get("status")
	slotType := r.URL.Query().Get("slot_type")
	list, err := h.Bookings.ListBookings(date, status, slotType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ResolveOverdue is the operator action that completes an OVERDUE booking.
func (h *AdminHandler) ResolveOverdue(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	if err := h.Bookings.ResolveOverdue(reference); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking resolved"})
}

func (h *AdminHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req entities.FacilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "%v", err))
		return
	}
	facility, err := h.Slots.CreateFacility(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, facility)
}

func (h *AdminHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities, err := h.Slots.ListFacilities()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, facilities)
}

func (h *AdminHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	var req entities.SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "%v", err))
		return
	}
	slot, err := h.Slots.CreateSlot(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *AdminHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.NewValidationError("slot_id", "invalid slot ID"))
		return
	}
	var req entities.SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	slot, err := h.Slots.UpdateSlot(slotID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *AdminHandler) SetSlotAvailability(w http.ResponseWriter, r *http.Request) {
	slotID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, apperrors.NewValidationError("slot_id", "invalid slot ID"))
		return
	}
	var req struct {
		IsAvailable bool `json:"is_available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.Slots.SetSlotAvailability(slotID, req.IsAvailable); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot availability updated"})
}

func (h *AdminHandler) ListSlots(w http.ResponseWriter, r *http.Request) {
	facilityID, err := strconv.Atoi(mux.Vars(r)["facility_id"])
	if err != nil {
		writeError(w, apperrors.NewValidationError("facility_id", "invalid facility ID"))
		return
	}
	slots, err := h.Slots.ListSlots(facilityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}
