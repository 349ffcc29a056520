package service

import (
	"testing"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

func heldGuests(roomID string, deposit int64, userIDs ...string) []*domain.RoomSettlement {
	held := make([]*domain.RoomSettlement, 0, len(userIDs)+1)
	for _, id := range userIDs {
		held = append(held, &domain.RoomSettlement{
			RoomID:    roomID,
			UserID:    id,
			Role:      domain.SettlementRoleGuest,
			Deposit:   deposit,
			NetAmount: -deposit,
			Status:    domain.SettlementRecordPending,
		})
	}
	held = append(held, &domain.RoomSettlement{
		RoomID: roomID,
		UserID: "host",
		Role:   domain.SettlementRoleHost,
		Status: domain.SettlementRecordPending,
	})
	return held
}

func sheetByUser(sheet []*domain.RoomSettlement) map[string]*domain.RoomSettlement {
	byUser := make(map[string]*domain.RoomSettlement, len(sheet))
	for _, s := range sheet {
		byUser[s.UserID] = s
	}
	return byUser
}

func assertSheetNetsToZero(t *testing.T, sheet []*domain.RoomSettlement) {
	t.Helper()
	var net int64
	for _, s := range sheet {
		net += s.NetAmount
	}
	if net != 0 {
		t.Errorf("sheet nets to %d, want 0", net)
	}
}

func TestComputeFinalSheet_FareOverEstimate(t *testing.T) {
	estimate := int64(30000)
	room := &domain.Room{ID: "r1", CreatorID: "host", EstimatedFare: &estimate}
	held := heldGuests("r1", 10000, "g1", "g2")

	sheet := computeFinalSheet(room, held, 36000)
	byUser := sheetByUser(sheet)

	// The 6000 shortfall splits across both guests.
	for _, g := range []string{"g1", "g2"} {
		rec := byUser[g]
		if rec.ExtraCollect != 3000 {
			t.Errorf("%s extra = %d, want 3000", g, rec.ExtraCollect)
		}
		if rec.Refund != 0 {
			t.Errorf("%s refund = %d, want 0", g, rec.Refund)
		}
		if rec.NetAmount != -13000 {
			t.Errorf("%s net = %d, want -13000", g, rec.NetAmount)
		}
	}
	if byUser["host"].Refund != 26000 {
		t.Errorf("host refund = %d, want 26000", byUser["host"].Refund)
	}
	assertSheetNetsToZero(t, sheet)
}

func TestComputeFinalSheet_FareUnderEstimate(t *testing.T) {
	estimate := int64(40000)
	room := &domain.Room{ID: "r2", CreatorID: "host", EstimatedFare: &estimate}
	held := heldGuests("r2", 10000, "g1", "g2", "g3")

	sheet := computeFinalSheet(room, held, 36000)
	byUser := sheetByUser(sheet)

	// The 4000 surplus splits three ways rounded down, 1333 back each.
	for _, g := range []string{"g1", "g2", "g3"} {
		rec := byUser[g]
		if rec.Refund != 1333 {
			t.Errorf("%s refund = %d, want 1333", g, rec.Refund)
		}
		if rec.ExtraCollect != 0 {
			t.Errorf("%s extra = %d, want 0", g, rec.ExtraCollect)
		}
	}
	if byUser["host"].Refund != 26001 {
		t.Errorf("host refund = %d, want 26001", byUser["host"].Refund)
	}
	assertSheetNetsToZero(t, sheet)
}

func TestComputeFinalSheet_NoShowSkipsExtra(t *testing.T) {
	estimate := int64(30000)
	room := &domain.Room{
		ID: "r3", CreatorID: "host", EstimatedFare: &estimate,
		NoShowUserIDs: []string{"g2"},
	}
	held := heldGuests("r3", 10000, "g1", "g2")

	sheet := computeFinalSheet(room, held, 36000)
	byUser := sheetByUser(sheet)

	// The whole 6000 shortfall lands on the guest who showed up.
	if byUser["g1"].ExtraCollect != 6000 {
		t.Errorf("g1 extra = %d, want 6000", byUser["g1"].ExtraCollect)
	}
	if byUser["g2"].ExtraCollect != 0 {
		t.Errorf("no-show g2 extra = %d, want 0", byUser["g2"].ExtraCollect)
	}
	if !byUser["g2"].NoShow {
		t.Error("g2 not flagged no-show in the sheet")
	}
	if byUser["host"].Refund != 26000 {
		t.Errorf("host refund = %d, want 26000", byUser["host"].Refund)
	}
	assertSheetNetsToZero(t, sheet)
}

// A guest whose seat was released after the deposit was held still appears in
// the final sheet: the sheet follows the hold rows, not the live seat list.
func TestComputeFinalSheet_FollowsHeldPositions(t *testing.T) {
	estimate := int64(30000)
	room := &domain.Room{ID: "r4", CreatorID: "host", EstimatedFare: &estimate}
	held := heldGuests("r4", 10000, "g1", "g2")

	sheet := computeFinalSheet(room, held, 28000)
	byUser := sheetByUser(sheet)

	if _, ok := byUser["g2"]; !ok {
		t.Fatal("g2 missing from sheet despite a held deposit")
	}
	// 2000 surplus over two guests, 1000 back each.
	if byUser["g2"].Refund != 1000 {
		t.Errorf("g2 refund = %d, want 1000", byUser["g2"].Refund)
	}
	if byUser["host"].Refund != 18000 {
		t.Errorf("host refund = %d, want 18000", byUser["host"].Refund)
	}
	assertSheetNetsToZero(t, sheet)
}

func TestComputeFinalSheet_RefundCappedAtDeposit(t *testing.T) {
	estimate := int64(30000)
	room := &domain.Room{ID: "r5", CreatorID: "host", EstimatedFare: &estimate}
	held := heldGuests("r5", 10000, "g1", "g2")

	// Actual fare so low the per-head surplus exceeds the deposit.
	sheet := computeFinalSheet(room, held, 4000)
	byUser := sheetByUser(sheet)

	for _, g := range []string{"g1", "g2"} {
		if byUser[g].Refund != 10000 {
			t.Errorf("%s refund = %d, want deposit-capped 10000", g, byUser[g].Refund)
		}
		if byUser[g].NetAmount != 0 {
			t.Errorf("%s net = %d, want 0", g, byUser[g].NetAmount)
		}
	}
	if byUser["host"].Refund != 0 {
		t.Errorf("host refund = %d, want 0", byUser["host"].Refund)
	}
	assertSheetNetsToZero(t, sheet)
}
