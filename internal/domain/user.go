package domain

import "time"

// User holds identity and the cached wallet balance. The balance is a
// derived cache: it must equal the sum of the user's wallet transaction
// amounts at all times, maintained inside the same storage transaction
// that inserts each ledger row.
type User struct {
	ID            string
	Email         string
	Name          string
	WalletBalance int64 // minor currency units
	CreatedAt     time.Time
}
