package service

import (
	"time"

	"parkhive/internal/db"
	"parkhive/internal/entities"
	apperrors "parkhive/internal/errors"
)

type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

type mockBookingRepo struct {
	occupying      []db.Booking
	byReference    map[string]*db.Booking
	inserted       []*db.Booking
	insertErr      error
	extendCalls    int
	extendErr      error
	extendExpected []time.Time
	statusUpdates  []db.BookingStatus
	statusErr      error
	onUpdateStatus func()
}

func (m *mockBookingRepo) ListOccupyingBookings(slotID int) ([]db.Booking, error) {
	return m.occupying, nil
}

func (m *mockBookingRepo) InsertBookingAtomic(b *db.Booking) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	b.ID = len(m.inserted) + 1
	m.inserted = append(m.inserted, b)
	return nil
}

func (m *mockBookingRepo) ExtendBookingAtomic(bookingID, slotID int, expectedEndTime, newEndTime time.Time, newTotalCost, newExtendedTime float64) error {
	if m.extendErr != nil {
		return m.extendErr
	}
	m.extendExpected = append(m.extendExpected, expectedEndTime)
	for _, b := range m.byReference {
		if b.ID == bookingID {
			if !b.EndTime.Equal(expectedEndTime) {
				return apperrors.NewConflictError("booking %d was extended concurrently", bookingID)
			}
			m.extendCalls++
			b.EndTime = newEndTime
			b.TotalCost = newTotalCost
			b.ExtendedTime = newExtendedTime
		}
	}
	return nil
}

func (m *mockBookingRepo) GetByReference(reference string) (*db.Booking, error) {
	if b, ok := m.byReference[reference]; ok {
		return b, nil
	}
	return nil, apperrors.NewNotFoundError("booking '" + reference + "'")
}

func (m *mockBookingRepo) GetByStripeSessionID(sessionID string) (*db.Booking, error) {
	for _, b := range m.byReference {
		if b.StripeSessionID == sessionID {
			return b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("booking for session '" + sessionID + "'")
}

func (m *mockBookingRepo) UpdateStatus(bookingID int, from []db.BookingStatus, to db.BookingStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	if m.onUpdateStatus != nil {
		m.onUpdateStatus()
	}
	m.statusUpdates = append(m.statusUpdates, to)
	for _, b := range m.byReference {
		if b.ID == bookingID {
			b.Status = to
		}
	}
	return nil
}

func (m *mockBookingRepo) UpdatePaymentStatusBySessionID(sessionID, paymentStatus string, from []db.BookingStatus, to db.BookingStatus) error {
	for _, b := range m.byReference {
		if b.StripeSessionID != sessionID {
			continue
		}
		for _, f := range from {
			if b.Status == f {
				b.PaymentStatus = paymentStatus
				b.Status = to
				return nil
			}
		}
	}
	return apperrors.NewConflictError("booking for session '%s' is not in a state that accepts the %s update", sessionID, paymentStatus)
}

func (m *mockBookingRepo) ListBookings(date, status, slotType string) ([]db.Booking, error) {
	var out []db.Booking
	for _, b := range m.byReference {
		out = append(out, *b)
	}
	return out, nil
}

type mockSlotRepo struct {
	slots map[int]*db.Slot
}

func (m *mockSlotRepo) GetByID(slotID int) (*db.Slot, error) {
	if s, ok := m.slots[slotID]; ok {
		return s, nil
	}
	return nil, apperrors.NewNotFoundError("slot")
}

func (m *mockSlotRepo) Create(slot *db.Slot) error { return nil }
func (m *mockSlotRepo) Update(slot *db.Slot) error { return nil }
func (m *mockSlotRepo) SetAvailability(slotID int, ok bool) error { return nil }
func (m *mockSlotRepo) ListByFacility(id int) ([]db.Slot, error) { return nil, nil }

type mockPaymentRepo struct {
	inserted []*db.Payment
	refunds  []float64
}

func (m *mockPaymentRepo) Insert(p *db.Payment) error {
	m.inserted = append(m.inserted, p)
	return nil
}

func (m *mockPaymentRepo) RecordRefund(bookingID int, refundAmount float64, refundPercent int) error {
	m.refunds = append(m.refunds, refundAmount)
	return nil
}

func (m *mockPaymentRepo) ListForBooking(bookingID int) ([]db.Payment, error) { return nil, nil }

type mockGateway struct {
	checkoutAmounts []int64
	refundAmounts   []int64
	checkoutErr     error
}

func (m *mockGateway) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (string, string, error) {
	if m.checkoutErr != nil {
		return "", "", m.checkoutErr
	}
	m.checkoutAmounts = append(m.checkoutAmounts, amountCents)
	return "https://checkout.example/session", "cs_test_123", nil
}

func (m *mockGateway) RefundBySessionID(sessionID string, amountCents int64) error {
	m.refundAmounts = append(m.refundAmounts, amountCents)
	return nil
}

func (m *mockGateway) SessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	return "cs_test_123", nil
}

type mockNotifier struct {
	emails []string
	texts  []string
}

func (m *mockNotifier) SendBookingEmail(b entities.BookingResponse, status string) {
	m.emails = append(m.emails, status)
}

func (m *mockNotifier) SendBookingSMS(b entities.BookingResponse, status string) {
	m.texts = append(m.texts, status)
}
