package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeCharger is a thin wrapper around stripe-go PaymentIntents used as the
// auto top-up payment rail.
type StripeCharger struct{}

// NewStripeCharger initializes the stripe client with the given API key.
func NewStripeCharger(apiKey string) *StripeCharger {
	stripe.Key = apiKey
	return &StripeCharger{}
}

// Charge creates and confirms a PaymentIntent against the user's stripe
// customer record and returns the PaymentIntent ID.
func (c *StripeCharger) Charge(ctx context.Context, userID string, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata("user_id", userID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}
