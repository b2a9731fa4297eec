package service

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

type StripeService struct{}

func NewStripeService() *StripeService {
	return &StripeService{}
}

// CreateCheckoutSession builds a Stripe Checkout session for the booking
// charge and returns its redirect URL and ID.
func (s *StripeService) CreateCheckoutSession(amountCents int64, currency, description, customerEmail string) (string, string, error) {
	successURL := os.Getenv("CHECKOUT_SUCCESS_URL")
	if successURL == "" {
		successURL = "http://localhost:3000/bookings/confirmation?session_id={CHECKOUT_SESSION_ID}"
	}
	cancelURL := os.Getenv("CHECKOUT_CANCEL_URL")
	if cancelURL == "" {
		cancelURL = "http://localhost:3000/bookings/failed?session_id={CHECKOUT_SESSION_ID}"
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.URL, sess.ID, nil
}

// SessionIDByPaymentIntentID looks up the checkout session that produced a
// payment intent.
func (s *StripeService) SessionIDByPaymentIntentID(paymentIntentID string) (string, error) {
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: &paymentIntentID,
	}
	params.Limit = stripe.Int64(1)
	it := session.List(params)
	for it.Next() {
		sess := it.CheckoutSession()
		if sess != nil && sess.ID != "" {
			return sess.ID, nil
		}
	}
	return "", fmt.Errorf("no session found for PaymentIntent %s", paymentIntentID)
}

// RefundBySessionID issues a partial refund against the payment behind a
// checkout session. amountCents comes from the tiered refund policy.
func (s *StripeService) RefundBySessionID(sessionID string, amountCents int64) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return err
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no PaymentIntent found for session %s", sessionID)
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
		Amount:        stripe.Int64(amountCents),
	}
	_, err = refund.New(params)
	return err
}
