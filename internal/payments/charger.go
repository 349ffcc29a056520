package payments

import "context"

// Charger is the external payment rail the wallet auto top-up path calls.
// It charges the user's registered payment method for the given minor-unit
// amount and returns the rail-side payment id.
type Charger interface {
	Charge(ctx context.Context, userID string, amount int64, currency string) (paymentID string, err error)
}
