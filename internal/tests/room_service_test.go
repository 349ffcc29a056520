package tests

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/realtime"
	"github.com/yeeuneey/GogoTaxi-back/internal/redis"
	"github.com/yeeuneey/GogoTaxi-back/internal/service"
)

// roomServiceFixture wires a RoomService against the mocks. The nil *sql.DB
// is fine for the paths exercised here: none of them open a transaction.
type roomServiceFixture struct {
	rooms        *MockRoomRepository
	participants *MockParticipantRepository
	rideStates   *MockRideStateRepository
	cache        *MockCacheStore
	svc          *service.RoomService
}

func newRoomServiceFixture() *roomServiceFixture {
	f := &roomServiceFixture{
		rooms:        NewMockRoomRepository(),
		participants: NewMockParticipantRepository(),
		rideStates:   NewMockRideStateRepository(),
		cache:        NewMockCacheStore(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = service.NewRoomService(
		nil, f.rooms, f.participants, f.rideStates,
		nil, f.cache, realtime.NopBroadcaster{},
		service.NewNotificationService(nil, logger), logger,
	)
	return f
}

func (f *roomServiceFixture) addRoom(room *domain.Room) {
	f.rooms.AddRoom(room)
}

func (f *roomServiceFixture) seat(roomID, userID string, seat int) {
	_ = f.participants.Create(context.Background(), &domain.RoomParticipant{
		ID: roomID + ":" + userID, RoomID: roomID, UserID: userID, SeatNumber: seat,
	})
}

func TestCloseRoom(t *testing.T) {
	ctx := context.Background()
	f := newRoomServiceFixture()
	f.addRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusOpen})
	f.seat("r1", "host", 1)

	snapshot, err := f.svc.CloseRoom(ctx, "r1", "host")
	if err != nil {
		t.Fatalf("CloseRoom: %v", err)
	}
	if snapshot.Room.Status != domain.RoomStatusClosed {
		t.Errorf("status = %s, want closed", snapshot.Room.Status)
	}
	if f.rooms.GetRoom("r1").Status != domain.RoomStatusClosed {
		t.Error("stored room not closed")
	}
}

func TestCloseRoom_Errors(t *testing.T) {
	ctx := context.Background()
	f := newRoomServiceFixture()
	f.addRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusOpen})
	f.addRoom(&domain.Room{ID: "r2", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusClosed})

	if _, err := f.svc.CloseRoom(ctx, "missing", "host"); !errors.Is(err, service.ErrRoomNotFound) {
		t.Errorf("missing room: err = %v, want ErrRoomNotFound", err)
	}
	if _, err := f.svc.CloseRoom(ctx, "r1", "stranger"); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("non-host: err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.CloseRoom(ctx, "r2", "host"); !errors.Is(err, service.ErrAlreadyClosed) {
		t.Errorf("terminal room: err = %v, want ErrAlreadyClosed", err)
	}
}

func TestSnapshot_SeatsAndCache(t *testing.T) {
	ctx := context.Background()
	f := newRoomServiceFixture()
	f.addRoom(&domain.Room{ID: "r1", CreatorID: "host", Capacity: 4, Status: domain.RoomStatusOpen})
	f.seat("r1", "host", 1)
	f.seat("r1", "g1", 2)

	snapshot, err := f.svc.Snapshot(ctx, "r1", "g1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snapshot.SeatsFilled != 2 || snapshot.SeatsAvailable != 2 {
		t.Errorf("seats = %d/%d filled/available, want 2/2", snapshot.SeatsFilled, snapshot.SeatsAvailable)
	}
	if snapshot.MySeatNumber != 2 {
		t.Errorf("viewer seat = %d, want 2", snapshot.MySeatNumber)
	}
	if snapshot.RideStage != domain.RideStageIdle {
		t.Errorf("stage = %s, want idle", snapshot.RideStage)
	}

	// Every snapshot write-through refreshes the summary cache.
	cached := f.cache.CachedRoom("r1")
	if cached == nil {
		t.Fatal("summary not cached")
	}
	if cached.SeatsAvailable != 2 || cached.Status != string(domain.RoomStatusOpen) {
		t.Errorf("cached summary = %+v", cached)
	}
}

func TestMatchRooms_UsesCachedOccupancy(t *testing.T) {
	ctx := context.Background()
	f := newRoomServiceFixture()
	departure := time.Now().Add(time.Hour)

	f.addRoom(&domain.Room{ID: "full", CreatorID: "h1", Capacity: 4, Status: domain.RoomStatusOpen, DepartureTime: departure})
	f.addRoom(&domain.Room{ID: "roomy", CreatorID: "h2", Capacity: 4, Status: domain.RoomStatusOpen, DepartureTime: departure})
	f.seat("roomy", "h2", 1)

	// The cache says "full" has no seats left; storage is never consulted
	// for it even though no participant rows exist.
	_ = f.cache.SetRoom(ctx, &redis.CachedRoomSummary{
		ID: "full", Status: string(domain.RoomStatusOpen),
		SeatsFilled: 4, SeatsAvailable: 0,
	})

	matched, err := f.svc.MatchRooms(ctx, service.MatchRoomsRequest{SeatsNeeded: 2})
	if err != nil {
		t.Fatalf("MatchRooms: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "roomy" {
		t.Fatalf("matched = %v, want [roomy]", roomIDs(matched))
	}

	// The miss on "roomy" was backfilled into the cache.
	cached := f.cache.CachedRoom("roomy")
	if cached == nil || cached.SeatsAvailable != 3 {
		t.Errorf("backfilled summary = %+v, want 3 seats available", cached)
	}
}

func TestMatchRooms_TimeWindow(t *testing.T) {
	ctx := context.Background()
	f := newRoomServiceFixture()
	now := time.Now()

	f.addRoom(&domain.Room{ID: "soon", CreatorID: "h1", Capacity: 4, Status: domain.RoomStatusOpen, DepartureTime: now.Add(30 * time.Minute)})
	f.addRoom(&domain.Room{ID: "late", CreatorID: "h2", Capacity: 4, Status: domain.RoomStatusOpen, DepartureTime: now.Add(5 * time.Hour)})

	matched, err := f.svc.MatchRooms(ctx, service.MatchRoomsRequest{
		Earliest: now,
		Latest:   now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("MatchRooms: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "soon" {
		t.Fatalf("matched = %v, want [soon]", roomIDs(matched))
	}
}

func roomIDs(rooms []*domain.Room) []string {
	ids := make([]string, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	return ids
}
