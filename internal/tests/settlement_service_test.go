package tests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// settlementFixture wires a SettlementService against the mocks. The nil
// *sql.DB and nil wallet are fine for the guard paths exercised here: they
// all reject before any money moves or a transaction opens.
type settlementFixture struct {
	rooms        *MockRoomRepository
	participants *MockParticipantRepository
	settlements  *MockSettlementRepository
	histories    *MockHistoryRepository
	svc          *service.SettlementService
}

func newSettlementFixture() *settlementFixture {
	f := &settlementFixture{
		rooms:        NewMockRoomRepository(),
		participants: NewMockParticipantRepository(),
		settlements:  NewMockSettlementRepository(),
		histories:    NewMockHistoryRepository(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = service.NewSettlementService(
		nil, f.rooms, f.participants, f.settlements, f.histories,
		nil, service.NewNotificationService(nil, logger), logger,
	)
	return f
}

func (f *settlementFixture) seat(roomID, userID string, seat int) {
	_ = f.participants.Create(context.Background(), &domain.RoomParticipant{
		ID: roomID + ":" + userID, RoomID: roomID, UserID: userID, SeatNumber: seat,
	})
}

func TestHoldEstimatedFare_Guards(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture()
	estimate := int64(30000)

	f.rooms.AddRoom(&domain.Room{ID: "no-fare", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.rooms.AddRoom(&domain.Room{
		ID: "settled", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusClosed,
		EstimatedFare: &estimate, SettlementStatus: domain.SettlementStatusSettled,
	})

	if _, err := f.svc.HoldEstimatedFare(ctx, "missing", "host"); !errors.Is(err, service.ErrRoomNotFound) {
		t.Errorf("missing room: err = %v, want ErrRoomNotFound", err)
	}
	if _, err := f.svc.HoldEstimatedFare(ctx, "no-fare", "stranger"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("non-host: err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.HoldEstimatedFare(ctx, "no-fare", "host"); !errors.Is(err, service.ErrEstimatedFareMissing) {
		t.Errorf("no estimate: err = %v, want ErrEstimatedFareMissing", err)
	}
	if _, err := f.svc.HoldEstimatedFare(ctx, "settled", "host"); !errors.Is(err, service.ErrAlreadyClosed) {
		t.Errorf("settled room: err = %v, want ErrAlreadyClosed", err)
	}
}

func TestFinalize_Guards(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture()
	estimate := int64(30000)

	f.rooms.AddRoom(&domain.Room{
		ID: "fresh", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull,
		EstimatedFare: &estimate, SettlementStatus: domain.SettlementStatusNone,
	})
	f.rooms.AddRoom(&domain.Room{
		ID: "settled", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusClosed,
		EstimatedFare: &estimate, SettlementStatus: domain.SettlementStatusSettled,
	})

	if _, err := f.svc.FinalizeRoomSettlement(ctx, "fresh", "host", 0); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("zero fare: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := f.svc.FinalizeRoomSettlement(ctx, "fresh", "stranger", 36000); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("non-host: err = %v, want ErrForbidden", err)
	}

	// Finalizing before the deposit phase is a state conflict, not a
	// missing-estimate problem: the estimate is set, the money is not held.
	if _, err := f.svc.FinalizeRoomSettlement(ctx, "fresh", "host", 36000); !errors.Is(err, service.ErrDepositNotCollected) {
		t.Errorf("deposit not held: err = %v, want ErrDepositNotCollected", err)
	}

	// A second finalize reports the room already closed.
	if _, err := f.svc.FinalizeRoomSettlement(ctx, "settled", "host", 36000); !errors.Is(err, service.ErrAlreadyClosed) {
		t.Errorf("settled room: err = %v, want ErrAlreadyClosed", err)
	}
}

func TestMarkNoShow(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture()
	f.rooms.AddRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.seat("r1", "host", 1)
	f.seat("r1", "g1", 2)

	room, err := f.svc.MarkNoShow(ctx, "r1", "host", "g1", true)
	if err != nil {
		t.Fatalf("MarkNoShow: %v", err)
	}
	if !room.IsNoShow("g1") {
		t.Error("g1 not flagged")
	}
	if !f.rooms.GetRoom("r1").IsNoShow("g1") {
		t.Error("flag not persisted")
	}

	room, err = f.svc.MarkNoShow(ctx, "r1", "host", "g1", false)
	if err != nil {
		t.Fatalf("MarkNoShow clear: %v", err)
	}
	if room.IsNoShow("g1") {
		t.Error("g1 still flagged after clear")
	}
}

func TestMarkNoShow_Errors(t *testing.T) {
	ctx := context.Background()
	f := newSettlementFixture()
	f.rooms.AddRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusFull})
	f.seat("r1", "host", 1)

	if _, err := f.svc.MarkNoShow(ctx, "r1", "host", "outsider", true); !errors.Is(err, service.ErrNotParticipant) {
		t.Errorf("outsider: err = %v, want ErrNotParticipant", err)
	}
	if _, err := f.svc.MarkNoShow(ctx, "r1", "host", "host", true); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("host flagged: err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.MarkNoShow(ctx, "r1", "g1", "host", true); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("non-host actor: err = %v, want ErrForbidden", err)
	}
}
