package tests

import (
	"context"
	"testing"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// holdDeposits runs the deposit phase against the mocks: every guest is
// debited the estimated per-head share, keyed so a re-run cannot double
// debit.
func holdDeposits(ctx context.Context, t *testing.T, userRepo *MockUserRepository, walletRepo *MockWalletRepository, roomID string, guests []string, perHead int64) {
	t.Helper()
	for _, g := range guests {
		applyLedger(ctx, t, userRepo, walletRepo, g, domain.WalletTxHoldDeposit, -perHead, "room:"+roomID+":hold:"+g)
	}
}

func TestSettlementFlow_FareOverEstimate(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	host := "host"
	guests := []string{"g1", "g2"}
	userRepo.AddUser(&domain.User{ID: host})
	for _, g := range guests {
		userRepo.AddUser(&domain.User{ID: g, WalletBalance: 50000})
	}

	// Estimated 30000 split across host + 2 guests, rounded up.
	const estimatedPerHead = 10000
	holdDeposits(ctx, t, userRepo, walletRepo, "room-1", guests, estimatedPerHead)

	// Actual fare 36000 runs 6000 over the estimate; the shortfall is split
	// across the two guests, so each owes 3000 on top of the deposit.
	const extraPerHead = 3000
	for _, g := range guests {
		applyLedger(ctx, t, userRepo, walletRepo, g, domain.WalletTxExtraCollect, -extraPerHead, "room:room-1:extra:"+g)
	}

	// The host fronted the fare; everything the guests paid in flows back.
	hostRefund := int64((estimatedPerHead + extraPerHead) * len(guests))
	applyLedger(ctx, t, userRepo, walletRepo, host, domain.WalletTxHostRefund, hostRefund, "room:room-1:host_refund:"+host)

	// Conservation: what the guests paid equals what the host received.
	var guestPaid int64
	for _, g := range guests {
		sum, _ := walletRepo.SumByUser(ctx, g)
		guestPaid += 50000 - userRepo.Balance(g)
		if userRepo.Balance(g) != 50000+sum {
			t.Errorf("guest %s cached balance diverged from ledger", g)
		}
	}
	if guestPaid != hostRefund {
		t.Errorf("guests paid %d, host received %d", guestPaid, hostRefund)
	}
	if userRepo.Balance(host) != hostRefund {
		t.Errorf("host balance = %d, want %d", userRepo.Balance(host), hostRefund)
	}
}

func TestSettlementFlow_FareUnderEstimate(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	guests := []string{"g1", "g2", "g3"}
	for _, g := range guests {
		userRepo.AddUser(&domain.User{ID: g, WalletBalance: 20000})
	}

	// Estimated 40000 over 4 heads, actual 36000: the 4000 surplus splits
	// across the three guests rounded down, 1333 back each.
	const estimatedPerHead = 10000
	const refundPerHead = 1333
	holdDeposits(ctx, t, userRepo, walletRepo, "room-2", guests, estimatedPerHead)

	for _, g := range guests {
		applyLedger(ctx, t, userRepo, walletRepo, g, domain.WalletTxRefund, refundPerHead, "room:room-2:refund:"+g)
	}

	for _, g := range guests {
		if got := userRepo.Balance(g); got != 20000-estimatedPerHead+refundPerHead {
			t.Errorf("guest %s balance = %d, want %d", g, got, 20000-estimatedPerHead+refundPerHead)
		}
	}
}

func TestSettlementFlow_RetryIsHarmless(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	guests := []string{"g1", "g2"}
	for _, g := range guests {
		userRepo.AddUser(&domain.User{ID: g, WalletBalance: 30000})
	}

	// Run the deposit phase twice, as if the first attempt died after
	// replying. Keys absorb the repeat.
	holdDeposits(ctx, t, userRepo, walletRepo, "room-3", guests, 10000)
	holdDeposits(ctx, t, userRepo, walletRepo, "room-3", guests, 10000)

	for _, g := range guests {
		if got := userRepo.Balance(g); got != 20000 {
			t.Errorf("guest %s balance = %d after retry, want 20000", g, got)
		}
		txs, _ := walletRepo.ListByUser(ctx, g, 0)
		if len(txs) != 1 {
			t.Errorf("guest %s has %d ledger rows, want 1", g, len(txs))
		}
	}
}

func TestSettlementFlow_NoShowSkipsExtraButGetsRefund(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	walletRepo := NewMockWalletRepository()

	room := &domain.Room{ID: "room-4", NoShowUserIDs: []string{"g2"}}
	guests := []string{"g1", "g2"}
	for _, g := range guests {
		userRepo.AddUser(&domain.User{ID: g, WalletBalance: 30000})
	}

	holdDeposits(ctx, t, userRepo, walletRepo, room.ID, guests, 10000)

	// Fare over estimate: only guests who showed up cover the difference.
	const delta = 2000
	for _, g := range guests {
		if room.IsNoShow(g) {
			continue
		}
		applyLedger(ctx, t, userRepo, walletRepo, g, domain.WalletTxExtraCollect, -delta, "room:"+room.ID+":extra:"+g)
	}

	if got := userRepo.Balance("g1"); got != 30000-10000-delta {
		t.Errorf("g1 balance = %d, want %d", got, 30000-10000-delta)
	}
	if got := userRepo.Balance("g2"); got != 30000-10000 {
		t.Errorf("no-show g2 balance = %d, want %d", got, 30000-10000)
	}
}

func TestSettlementRecords_FinalizeWritesHistory(t *testing.T) {
	ctx := context.Background()
	settlementRepo := NewMockSettlementRepository()
	historyRepo := NewMockHistoryRepository()

	records := []*domain.RoomSettlement{
		{RoomID: "room-5", UserID: "host", Role: domain.SettlementRoleHost, Refund: 26000, NetAmount: 26000, Status: domain.SettlementRecordSettled},
		{RoomID: "room-5", UserID: "g1", Role: domain.SettlementRoleGuest, Deposit: 10000, ExtraCollect: 3000, NetAmount: -13000, Status: domain.SettlementRecordSettled},
		{RoomID: "room-5", UserID: "g2", Role: domain.SettlementRoleGuest, Deposit: 10000, ExtraCollect: 3000, NetAmount: -13000, Status: domain.SettlementRecordSettled},
	}
	for _, r := range records {
		if err := settlementRepo.Upsert(ctx, r); err != nil {
			t.Fatalf("settlement upsert failed: %v", err)
		}
		if err := historyRepo.Upsert(ctx, &domain.RideHistory{
			RoomID: r.RoomID, UserID: r.UserID, Role: r.Role,
			Deposit: r.Deposit, ExtraCollect: r.ExtraCollect, Refund: r.Refund,
			NetAmount: r.NetAmount, ActualFare: 36000, SettledAt: time.Now(),
		}); err != nil {
			t.Fatalf("history upsert failed: %v", err)
		}
	}

	sheet, err := settlementRepo.ListByRoom(ctx, "room-5")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sheet) != 3 {
		t.Fatalf("sheet has %d rows, want 3", len(sheet))
	}

	// Net amounts across the sheet balance to zero.
	var net int64
	for _, r := range sheet {
		net += r.NetAmount
	}
	if net != 0 {
		t.Errorf("sheet nets to %d, want 0", net)
	}

	history, err := historyRepo.ListByUser(ctx, "g1")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if len(history) != 1 || history[0].ActualFare != 36000 {
		t.Errorf("unexpected history for g1: %+v", history)
	}
}
