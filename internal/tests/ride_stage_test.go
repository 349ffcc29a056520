package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

func TestRideStateStore_UpsertReplacesStage(t *testing.T) {
	ctx := context.Background()
	rideStateRepo := NewMockRideStateRepository()

	walk := []domain.RideStage{
		domain.RideStageRequesting,
		domain.RideStageDeeplinkReady,
		domain.RideStageDispatching,
		domain.RideStageDriverAssigned,
		domain.RideStageArriving,
		domain.RideStageOnboard,
		domain.RideStageCompleted,
	}

	current := domain.RideStageIdle
	for _, next := range walk {
		if !current.CanTransition(next) {
			t.Fatalf("walk broke at %s -> %s", current, next)
		}
		if err := rideStateRepo.Upsert(ctx, &domain.RoomRideState{
			RoomID: "room-1", Stage: next, UpdatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		current = next
	}

	state, err := rideStateRepo.GetByRoom(ctx, "room-1")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if state.Stage != domain.RideStageCompleted {
		t.Errorf("final stage = %s, want completed", state.Stage)
	}
}

func TestDispatchLock_SecondAcquirerBlocked(t *testing.T) {
	ctx := context.Background()
	lockStore := NewMockLockStore()

	const contenders = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := lockStore.AcquireDispatchLock(ctx, "room-1", time.Second)
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			if ok {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected 1 lock holder, got %d", acquired)
	}

	// After release the lock is free again.
	if err := lockStore.ReleaseDispatchLock(ctx, "room-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	ok, err := lockStore.AcquireDispatchLock(ctx, "room-1", time.Second)
	if err != nil || !ok {
		t.Errorf("reacquire after release failed: ok=%v err=%v", ok, err)
	}

	// The lock is per room.
	ok, err = lockStore.AcquireDispatchLock(ctx, "room-2", time.Second)
	if err != nil || !ok {
		t.Errorf("other room lock failed: ok=%v err=%v", ok, err)
	}
}

func TestTerminalStage_FoldsIntoRoomStatus(t *testing.T) {
	ctx := context.Background()
	roomRepo := NewMockRoomRepository()
	roomRepo.AddRoom(&domain.Room{ID: "room-1", Status: domain.RoomStatusDispatching, Capacity: 4})

	// completed -> success
	if err := roomRepo.UpdateStatus(ctx, "room-1", domain.RoomStatusSuccess); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if got := roomRepo.GetRoom("room-1").Status; got != domain.RoomStatusSuccess {
		t.Errorf("room status = %s, want success", got)
	}
	if !roomRepo.GetRoom("room-1").Status.IsTerminal() {
		t.Error("success must be terminal")
	}

	// canceled -> failed, on a second room
	roomRepo.AddRoom(&domain.Room{ID: "room-2", Status: domain.RoomStatusDispatching, Capacity: 4})
	if err := roomRepo.UpdateStatus(ctx, "room-2", domain.RoomStatusFailed); err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if !roomRepo.GetRoom("room-2").Status.IsTerminal() {
		t.Error("failed must be terminal")
	}
}
