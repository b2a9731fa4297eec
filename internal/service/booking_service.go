package service

import (
	"log"
	"math"
	"time"

	"parkhive/internal/booking"
	"parkhive/internal/db"
	"parkhive/internal/entities"
	apperrors "parkhive/internal/errors"
	"parkhive/internal/repository"

	"github.com/google/uuid"
)

const (
	paymentPending   = "pending"
	paymentSucceeded = "succeeded"
	paymentRefunded  = "refunded"
)

// Notifier delivers booking lifecycle messages to the user.
type Notifier interface {
	SendBookingEmail(b entities.BookingResponse, status string)
	SendBookingSMS(b entities.BookingResponse, status string)
}

// PaymentGateway is the payment-provider surface the booking flow needs.
type PaymentGateway interface {
	CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (url, sessionID string, err error)
	RefundBySessionID(sessionID string, amountCents int64) error
	SessionIDByPaymentIntentID(paymentIntentID string) (string, error)
}

// BookingService drives the booking lifecycle. All availability, cost and
// refund decisions go through the pure engine in internal/booking; this
// layer owns the I/O around those decisions. The engine's advisory check
// runs before submission for fast feedback, but the authoritative gate is
// the repository's atomic insert.
type BookingService struct {
	bookingRepo repository.BookingRepository
	slotRepo    repository.SlotRepository
	paymentRepo repository.PaymentRepository
	payments    PaymentGateway
	notifier    Notifier
	clock       booking.Clock
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	slotRepo repository.SlotRepository,
	paymentRepo repository.PaymentRepository,
	payments PaymentGateway,
	notifier Notifier,
	clock booking.Clock,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		paymentRepo: paymentRepo,
		payments:    payments,
		notifier:    notifier,
		clock:       clock,
	}
}

// CheckAvailability is the advisory availability check used for UI feedback.
// It has no side effects and may be called repeatedly; the create path
// re-checks atomically regardless of the answer given here.
func (s *BookingService) CheckAvailability(req entities.AvailabilityRequest) (*entities.AvailabilityResponse, error) {
	slot, err := s.slotRepo.GetByID(req.SlotID)
	if err != nil {
		return nil, err
	}

	resp := &entities.AvailabilityResponse{
		SlotID:             req.SlotID,
		RequestedStartTime: req.StartTime,
		RequestedEndTime:   req.EndTime,
	}

	if !slot.IsAvailable {
		resp.Message = "Slot is temporarily unavailable"
		return resp, nil
	}

	existing, err := s.bookingRepo.ListOccupyingBookings(req.SlotID)
	if err != nil {
		return nil, err
	}
	available, err := booking.CheckAvailability(req.StartTime, req.EndTime, existing)
	if err != nil {
		return nil, err
	}
	resp.Available = available
	if !available {
		resp.Message = "Requested time overlaps an existing booking"
		return resp, nil
	}

	cost, err := booking.ComputeCost(req.StartTime, req.EndTime, slot.HourlyRate)
	if err != nil {
		return nil, err
	}
	resp.EstimatedCost = cost
	return resp, nil
}

// CreateBooking admits a new booking: policy window validation, the manual
// slot flag gate, cost computation, a checkout session, then the atomic
// insert that owns the no-double-booking invariant.
func (s *BookingService) CreateBooking(req entities.CreateBookingRequest) (*entities.CreateBookingResponse, error) {
	now := s.clock.Now()
	if err := booking.ValidateBookingWindow(req.StartTime, req.EndTime, now); err != nil {
		return nil, err
	}

	slot, err := s.slotRepo.GetByID(req.SlotID)
	if err != nil {
		return nil, err
	}
	// Manual flag and time-based overlap are independent gates; both must pass.
	if !slot.IsAvailable {
		return nil, apperrors.NewConflictError("slot %d is temporarily unavailable", slot.ID)
	}

	existing, err := s.bookingRepo.ListOccupyingBookings(req.SlotID)
	if err != nil {
		return nil, err
	}
	available, err := booking.CheckAvailability(req.StartTime, req.EndTime, existing)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.NewConflictError("slot %d is already booked for the requested time", slot.ID)
	}

	cost, err := booking.ComputeCost(req.StartTime, req.EndTime, slot.HourlyRate)
	if err != nil {
		return nil, err
	}

	reference := uuid.NewString()
	checkoutURL, sessionID, err := s.payments.CreateCheckoutSession(
		toCents(cost), "eur", "Parking booking "+reference, req.UserEmail,
	)
	if err != nil {
		return nil, err
	}

	b := &db.Booking{
		Reference:       reference,
		SlotID:          req.SlotID,
		UserName:        req.UserName,
		UserEmail:       req.UserEmail,
		UserPhone:       req.UserPhone,
		VehicleNumber:   req.VehicleNumber,
		VehicleModel:    req.VehicleModel,
		Status:          db.StatusConfirmed,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		TotalCost:       cost,
		StripeSessionID: sessionID,
		PaymentStatus:   paymentPending,
	}

	if err := s.bookingRepo.InsertBookingAtomic(b); err != nil {
		return nil, err
	}

	payment := &db.Payment{BookingID: b.ID, Amount: cost, Status: paymentPending}
	if err := s.paymentRepo.Insert(payment); err != nil {
		log.Printf("Booking %s created but payment record failed: %v", reference, err)
	}

	return &entities.CreateBookingResponse{
		Reference:   reference,
		TotalCost:   cost,
		CheckoutURL: checkoutURL,
		SessionID:   sessionID,
		Message:     "Booking confirmed.",
	}, nil
}

func (s *BookingService) GetBooking(reference, email string) (*entities.BookingResponse, error) {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if email != "" && b.UserEmail != email {
		return nil, apperrors.NewNotFoundError("booking '" + reference + "'")
	}
	resp := toBookingResponse(b)
	return &resp, nil
}

// ExtendBooking pushes a booking's end time forward. The extended interval
// is re-admitted excluding the booking itself, since lengthening can newly
// collide with a booking that starts inside the added window. On
// conflict the booking keeps its cost and end time.
func (s *BookingService) ExtendBooking(reference string, newEndTime time.Time) (*entities.ExtendBookingResponse, error) {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !b.Status.Cancellable() {
		return nil, apperrors.NewConflictError("booking %s cannot be extended in status %s", reference, b.Status)
	}

	slot, err := s.slotRepo.GetByID(b.SlotID)
	if err != nil {
		return nil, err
	}

	additionalCost, err := booking.ComputeExtensionCost(b.EndTime, newEndTime, slot.HourlyRate)
	if err != nil {
		return nil, err
	}

	existing, err := s.bookingRepo.ListOccupyingBookings(b.SlotID)
	if err != nil {
		return nil, err
	}
	available, err := booking.CheckAvailabilityExcluding(b.StartTime, newEndTime, existing, b.ID)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.NewConflictError("extended time collides with another booking on slot %d", b.SlotID)
	}

	// The new totals derive from the end time read above, so the repository
	// only applies them while the row still ends there.
	newTotal := booking.Round2(b.TotalCost + additionalCost)
	newExtended := b.ExtendedTime + newEndTime.Sub(b.EndTime).Hours()
	if err := s.bookingRepo.ExtendBookingAtomic(b.ID, b.SlotID, b.EndTime, newEndTime, newTotal, newExtended); err != nil {
		return nil, err
	}

	return &entities.ExtendBookingResponse{
		Reference:      reference,
		NewEndTime:     newEndTime.Format(time.RFC3339),
		AdditionalCost: additionalCost,
		TotalCost:      newTotal,
		Message:        "Booking extended.",
	}, nil
}

// CancelBooking cancels a CONFIRMED or ACTIVE booking and refunds per the
// tiered policy. The status swap happens first as a compare-and-swap so a
// concurrent check-in or second cancel cannot trigger a double refund. The
// refund basis is re-read after the swap: once the row is CANCELLED no
// extension can change its total, so the amount covers any extension that
// committed before the swap.
func (s *BookingService) CancelBooking(reference string) (*entities.CancelBookingResponse, error) {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !b.Status.Cancellable() {
		return nil, apperrors.NewConflictError("booking %s cannot be cancelled in status %s", reference, b.Status)
	}

	if err := s.bookingRepo.UpdateStatus(b.ID, []db.BookingStatus{db.StatusConfirmed, db.StatusActive}, db.StatusCancelled); err != nil {
		return nil, err
	}

	b, err = s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	refund, err := booking.ComputeRefund(b.TotalCost, b.StartTime, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if refund.Amount > 0 && b.StripeSessionID != "" {
		if err := s.payments.RefundBySessionID(b.StripeSessionID, toCents(refund.Amount)); err != nil {
			log.Printf("Booking %s cancelled but refund of %.2f failed: %v", reference, refund.Amount, err)
		}
	}
	if err := s.paymentRepo.RecordRefund(b.ID, refund.Amount, refund.Percentage); err != nil {
		log.Printf("Booking %s cancelled but refund record failed: %v", reference, err)
	}

	resp := toBookingResponse(b)
	resp.Status = db.StatusCancelled
	s.notifier.SendBookingEmail(resp, "cancelled")
	s.notifier.SendBookingSMS(resp, "cancelled")

	return &entities.CancelBookingResponse{
		Reference: reference,
		Refund:    refund,
		Message:   "Booking cancelled.",
	}, nil
}

// CheckIn marks physical arrival: CONFIRMED -> ACTIVE.
func (s *BookingService) CheckIn(reference string) error {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return err
	}
	return s.bookingRepo.UpdateStatus(b.ID, []db.BookingStatus{db.StatusConfirmed}, db.StatusActive)
}

// CheckOut marks departure: ACTIVE -> COMPLETED.
func (s *BookingService) CheckOut(reference string) error {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return err
	}
	return s.bookingRepo.UpdateStatus(b.ID, []db.BookingStatus{db.StatusActive}, db.StatusCompleted)
}

// ResolveOverdue is the operator action that closes an OVERDUE booking.
func (s *BookingService) ResolveOverdue(reference string) error {
	b, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return err
	}
	return s.bookingRepo.UpdateStatus(b.ID, []db.BookingStatus{db.StatusOverdue}, db.StatusCompleted)
}

func (s *BookingService) ListBookings(date, status, slotType string) (*entities.BookingsList, error) {
	bookings, err := s.bookingRepo.ListBookings(date, status, slotType)
	if err != nil {
		return nil, err
	}
	list := &entities.BookingsList{Total: len(bookings)}
	for i := range bookings {
		list.Bookings = append(list.Bookings, toBookingResponse(&bookings[i]))
	}
	return list, nil
}

// ConfirmPaymentBySessionID handles the payment provider's completion
// callback and sends the confirmation messages. The update only applies
// while the booking is still CONFIRMED: paying a checkout session left
// open for a booking that was cancelled in the meantime must not pull the
// cancelled row back into an occupying status. That payment is acknowledged
// without side effects and settled through the refund path.
func (s *BookingService) ConfirmPaymentBySessionID(sessionID string) error {
	err := s.bookingRepo.UpdatePaymentStatusBySessionID(
		sessionID, paymentSucceeded, []db.BookingStatus{db.StatusConfirmed}, db.StatusConfirmed,
	)
	if apperrors.IsConflict(err) {
		log.Printf("Payment completed for session '%s' but its booking is no longer confirmable; ignoring", sessionID)
		return nil
	}
	if err != nil {
		return err
	}
	b, err := s.bookingRepo.GetByStripeSessionID(sessionID)
	if err != nil {
		return err
	}
	resp := toBookingResponse(b)
	s.notifier.SendBookingEmail(resp, "confirmed")
	s.notifier.SendBookingSMS(resp, "confirmed")
	return nil
}

// MarkRefundedBySessionID records a provider-side refund notification.
// COMPLETED and OVERDUE bookings keep their status; a refund against an
// already cancelled booking (our own cancellation flow echoing back) only
// settles the payment status.
func (s *BookingService) MarkRefundedBySessionID(sessionID string) error {
	err := s.bookingRepo.UpdatePaymentStatusBySessionID(
		sessionID, paymentRefunded,
		[]db.BookingStatus{db.StatusConfirmed, db.StatusActive, db.StatusCancelled}, db.StatusCancelled,
	)
	if apperrors.IsConflict(err) {
		log.Printf("Refund received for session '%s' but its booking is in a terminal status; ignoring", sessionID)
		return nil
	}
	return err
}

// SessionIDByPaymentIntentID resolves the checkout session behind a payment
// intent, used when a refund arrives from the provider side.
func (s *BookingService) SessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	return s.payments.SessionIDByPaymentIntentID(paymentIntentID)
}

func toBookingResponse(b *db.Booking) entities.BookingResponse {
	return entities.BookingResponse{
		Reference:     b.Reference,
		SlotID:        b.SlotID,
		UserName:      b.UserName,
		UserEmail:     b.UserEmail,
		UserPhone:     b.UserPhone,
		VehicleNumber: b.VehicleNumber,
		VehicleModel:  b.VehicleModel,
		Status:        b.Status,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		TotalCost:     b.TotalCost,
		ExtendedTime:  b.ExtendedTime,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
