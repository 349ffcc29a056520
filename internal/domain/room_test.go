package domain

import "testing"

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  RoomStatus
		count    int
		capacity int
		want     RoomStatus
	}{
		{"fills at capacity", RoomStatusOpen, 4, 4, RoomStatusFull},
		{"reopens below capacity", RoomStatusFull, 3, 4, RoomStatusOpen},
		{"stays open with room", RoomStatusOpen, 2, 4, RoomStatusOpen},
		{"single seat room is full immediately", RoomStatusOpen, 1, 1, RoomStatusFull},
		{"closed rooms stay closed", RoomStatusClosed, 1, 4, RoomStatusClosed},
		{"success is sticky", RoomStatusSuccess, 0, 4, RoomStatusSuccess},
		{"failed is sticky", RoomStatusFailed, 2, 4, RoomStatusFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextStatus(tc.current, tc.count, tc.capacity); got != tc.want {
				t.Errorf("NextStatus(%s, %d, %d) = %s, want %s", tc.current, tc.count, tc.capacity, got, tc.want)
			}
		})
	}
}

func TestRoom_IsNoShow(t *testing.T) {
	room := &Room{NoShowUserIDs: []string{"u1", "u3"}}

	if !room.IsNoShow("u1") {
		t.Error("expected u1 to be flagged")
	}
	if room.IsNoShow("u2") {
		t.Error("expected u2 to be clear")
	}
}

func TestRoom_SeatsLocked(t *testing.T) {
	tests := []struct {
		status SettlementStatus
		want   bool
	}{
		{SettlementStatusNone, false},
		{SettlementStatusDepositCollected, true},
		{SettlementStatusSettled, true},
	}
	for _, tc := range tests {
		room := &Room{SettlementStatus: tc.status}
		if got := room.SeatsLocked(); got != tc.want {
			t.Errorf("SeatsLocked() with %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestWalletTxKind_IsCredit(t *testing.T) {
	credits := []WalletTxKind{WalletTxTopUp, WalletTxRefund, WalletTxHostRefund, WalletTxAutoTopUp}
	for _, k := range credits {
		if !k.IsCredit() {
			t.Errorf("expected %s to be a credit", k)
		}
	}
	debits := []WalletTxKind{WalletTxHoldDeposit, WalletTxExtraCollect, WalletTxHostCharge}
	for _, k := range debits {
		if k.IsCredit() {
			t.Errorf("expected %s to be a debit", k)
		}
	}
}
