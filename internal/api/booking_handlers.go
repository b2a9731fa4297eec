package api

import (
	"encoding/json"
	"net/http"

	"parkhive/internal/entities"
	apperrors "parkhive/internal/errors"
	"parkhive/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type BookingHandler struct {
	Service  *service.BookingService
	validate *validator.Validate
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	return &BookingHandler{Service: svc, validate: validator.New()}
}

// CheckAvailability is the fast advisory check the UI polls while the user
// edits the booking time. The authoritative check happens at submit.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req entities.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "%v", err))
		return
	}
	resp, err := h.Service.CheckAvailability(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "%v", err))
		return
	}
	resp, err := h.Service.CreateBooking(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	email := r.URL.Query().Get("email")
	resp, err := h.Service.GetBooking(reference, email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) ExtendBooking(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	var req entities.ExtendBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.NewValidationError("body", "%v", err))
		return
	}
	resp, err := h.Service.ExtendBooking(reference, req.NewEndTime)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	resp, err := h.Service.CancelBooking(reference)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	if err := h.Service.CheckIn(reference); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Checked in"})
}

func (h *BookingHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	if err := h.Service.CheckOut(reference); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Checked out"})
}
