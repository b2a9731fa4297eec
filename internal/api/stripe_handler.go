package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"parkhive/internal/service"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeWebhookHandler struct {
	StripeSecret   string
	bookingService *service.BookingService
}

func NewStripeWebhookHandler(stripeSecret string, bookingService *service.BookingService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		StripeSecret:   stripeSecret,
		bookingService: bookingService,
	}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sigHeader, h.StripeSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			log.Printf("Error parsing checkout.session: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if sess.ID == "" {
			log.Printf("No session ID in checkout.session.completed")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err := h.bookingService.ConfirmPaymentBySessionID(sess.ID); err != nil {
			log.Printf("DB error: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			log.Printf("Error parsing charge: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		// Refunds initiated by the cancellation flow already updated the
		// booking; this covers refunds issued from the Stripe dashboard.
		if charge.PaymentIntent != nil && charge.PaymentIntent.ID != "" {
			sessionID, err := h.bookingService.SessionIDByPaymentIntentID(charge.PaymentIntent.ID)
			if err != nil {
				log.Printf("No session found for PaymentIntent %s: %v", charge.PaymentIntent.ID, err)
				w.WriteHeader(http.StatusOK)
				return
			}
			if err := h.bookingService.MarkRefundedBySessionID(sessionID); err != nil {
				log.Printf("DB error: %v", err)
			}
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}
