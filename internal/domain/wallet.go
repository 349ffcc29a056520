package domain

import "time"

// WalletTxKind classifies a ledger entry.
type WalletTxKind string

const (
	WalletTxTopUp        WalletTxKind = "top_up"
	WalletTxHoldDeposit  WalletTxKind = "hold_deposit"
	WalletTxExtraCollect WalletTxKind = "extra_collect"
	WalletTxRefund       WalletTxKind = "refund"
	WalletTxHostCharge   WalletTxKind = "host_charge"
	WalletTxHostRefund   WalletTxKind = "host_refund"
	WalletTxAutoTopUp    WalletTxKind = "auto_top_up"
)

// IsCredit reports whether the kind moves money into the wallet.
func (k WalletTxKind) IsCredit() bool {
	switch k {
	case WalletTxTopUp, WalletTxRefund, WalletTxHostRefund, WalletTxAutoTopUp:
		return true
	}
	return false
}

// ValidWalletTxKind reports whether the given string names a known kind.
func ValidWalletTxKind(s string) bool {
	switch WalletTxKind(s) {
	case WalletTxTopUp, WalletTxHoldDeposit, WalletTxExtraCollect,
		WalletTxRefund, WalletTxHostCharge, WalletTxHostRefund, WalletTxAutoTopUp:
		return true
	}
	return false
}

// WalletTxStatus represents the state of a ledger entry.
type WalletTxStatus string

const (
	WalletTxStatusSuccess WalletTxStatus = "success"
	WalletTxStatusFailed  WalletTxStatus = "failed"
)

// WalletTransaction is an append-only ledger entry. Amount is signed:
// positive credits the wallet, negative debits it. Rows are never
// mutated after creation.
type WalletTransaction struct {
	ID             string
	UserID         string
	RoomID         string // empty when not tied to a room
	Kind           WalletTxKind
	Amount         int64 // minor currency units
	Currency       string
	Status         WalletTxStatus
	IdempotencyKey string // unique when set
	Metadata       map[string]string
	CreatedAt      time.Time
}
