package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/observability"
	"github.com/yeeuneey/GogoTaxi-back/internal/realtime"
	redisstore "github.com/yeeuneey/GogoTaxi-back/internal/redis"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository/postgres"
)

// dispatchLockTTL bounds how long a ride request can exclude others when its
// holder dies before releasing.
const dispatchLockTTL = 10 * time.Second

// RideService drives the per-room dispatch state machine.
type RideService struct {
	db              *sql.DB
	roomRepo        repository.RoomRepository
	participantRepo repository.ParticipantRepository
	rideStateRepo   repository.RideStateRepository
	locks           redisstore.LockStoreInterface // optional, nil disables the dispatch lock
	broadcaster     realtime.Broadcaster
	notifications   *NotificationService
	logger          *slog.Logger
}

// NewRideService creates a new RideService.
func NewRideService(
	db *sql.DB,
	roomRepo repository.RoomRepository,
	participantRepo repository.ParticipantRepository,
	rideStateRepo repository.RideStateRepository,
	locks redisstore.LockStoreInterface,
	broadcaster realtime.Broadcaster,
	notifications *NotificationService,
	logger *slog.Logger,
) *RideService {
	return &RideService{
		db:              db,
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		rideStateRepo:   rideStateRepo,
		locks:           locks,
		broadcaster:     broadcaster,
		notifications:   notifications,
		logger:          logger,
	}
}

// GetRideState returns the room's dispatch state. Rooms that have seen no
// ride action yet read as idle rather than missing.
func (s *RideService) GetRideState(ctx context.Context, roomID string) (*domain.RoomRideState, error) {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	state, err := s.rideStateRepo.GetByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &domain.RoomRideState{RoomID: roomID, Stage: domain.RideStageIdle}, nil
		}
		return nil, err
	}
	return state, nil
}

// RequestRideRequest carries the route overrides for a dispatch request.
// Zero coordinates fall back to the room's own route.
type RequestRideRequest struct {
	RoomID       string
	ActorID      string
	PickupLabel  string
	PickupLat    float64
	PickupLng    float64
	DropoffLabel string
	DropoffLat   float64
	DropoffLng   float64
	Note         string
}

// RequestRide starts dispatch for a room: it builds the ride deeplink, moves
// the stage to requesting and the room to dispatching. Host only. The
// per-room lock keeps two concurrent requests from both starting dispatch.
func (s *RideService) RequestRide(ctx context.Context, req RequestRideRequest) (*domain.RoomRideState, error) {
	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.CreatorID != req.ActorID {
		return nil, ErrForbidden
	}
	if room.Status.IsTerminal() {
		return nil, ErrAlreadyClosed
	}

	if s.locks != nil {
		acquired, lockErr := s.locks.AcquireDispatchLock(ctx, req.RoomID, dispatchLockTTL)
		if lockErr != nil {
			return nil, lockErr
		}
		if !acquired {
			return nil, ErrInvalidStageTransition
		}
		defer func() {
			if relErr := s.locks.ReleaseDispatchLock(ctx, req.RoomID); relErr != nil {
				s.logger.Warn("dispatch lock release failed", "room_id", req.RoomID, "error", relErr)
			}
		}()
	}

	current, err := s.rideStateRepo.GetByRoom(ctx, req.RoomID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	stage := domain.RideStageIdle
	if current != nil {
		stage = current.Stage
	}
	if stage != domain.RideStageRequesting && !stage.CanTransition(domain.RideStageRequesting) {
		return nil, ErrInvalidStageTransition
	}

	pickup := req
	if pickup.PickupLat == 0 && pickup.PickupLng == 0 {
		pickup.PickupLabel = room.DepartureLabel
		pickup.PickupLat = room.DepartureLat
		pickup.PickupLng = room.DepartureLng
	}
	if pickup.DropoffLat == 0 && pickup.DropoffLng == 0 {
		pickup.DropoffLabel = room.ArrivalLabel
		pickup.DropoffLat = room.ArrivalLat
		pickup.DropoffLng = room.ArrivalLng
	}

	state := &domain.RoomRideState{
		RoomID: req.RoomID,
		Stage:  domain.RideStageRequesting,
		DeeplinkURL: BuildUberDeeplink(DeeplinkInput{
			PickupLabel:  pickup.PickupLabel,
			PickupLat:    pickup.PickupLat,
			PickupLng:    pickup.PickupLng,
			DropoffLabel: pickup.DropoffLabel,
			DropoffLat:   pickup.DropoffLat,
			DropoffLng:   pickup.DropoffLng,
		}),
		PickupLabel:  pickup.PickupLabel,
		PickupLat:    pickup.PickupLat,
		PickupLng:    pickup.PickupLng,
		DropoffLabel: pickup.DropoffLabel,
		DropoffLat:   pickup.DropoffLat,
		DropoffLng:   pickup.DropoffLng,
		Note:         req.Note,
		UpdatedByID:  req.ActorID,
		UpdatedAt:    time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRoomRepo := postgres.NewRoomRepositoryWithTx(tx)
	txRideStateRepo := postgres.NewRideStateRepositoryWithTx(tx)

	if err = txRideStateRepo.Upsert(ctx, state); err != nil {
		return nil, err
	}
	if err = txRoomRepo.UpdateStatus(ctx, req.RoomID, domain.RoomStatusDispatching); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	observability.StageTransitionsTotal.WithLabelValues(string(domain.RideStageRequesting)).Inc()
	s.broadcaster.BroadcastRoom(ctx, req.RoomID, state)
	return state, nil
}

// StageUpdateRequest is a merge-patch applied alongside a stage transition:
// nil driver fields keep their previous value.
type StageUpdateRequest struct {
	RoomID     string
	ActorID    string
	Stage      domain.RideStage
	DriverName *string
	CarModel   *string
	CarNumber  *string
	Note       *string
}

// UpdateStage advances the room's dispatch stage. Host only. A request naming
// the current stage is an idempotent no-op; anything off the transition table
// is rejected. Terminal stages fold back into the room status: completed
// marks the room success, canceled marks it failed.
func (s *RideService) UpdateStage(ctx context.Context, req StageUpdateRequest) (*domain.RoomRideState, error) {
	if !domain.ValidRideStage(string(req.Stage)) {
		return nil, ErrInvalidStageTransition
	}
	return s.applyStage(ctx, req, func(current domain.RideStage) error {
		if !current.CanTransition(req.Stage) {
			return ErrInvalidStageTransition
		}
		return nil
	})
}

// PromoteDriverAssigned jumps the room straight to driver_assigned. This is
// the single sanctioned shortcut, used when an external dispatch confirmation
// already names a driver.
func (s *RideService) PromoteDriverAssigned(ctx context.Context, req StageUpdateRequest) (*domain.RoomRideState, error) {
	req.Stage = domain.RideStageDriverAssigned
	return s.applyStage(ctx, req, func(current domain.RideStage) error {
		if !current.CanPromoteToDriverAssigned() {
			return ErrInvalidStageTransition
		}
		return nil
	})
}

func (s *RideService) applyStage(ctx context.Context, req StageUpdateRequest, validate func(current domain.RideStage) error) (*domain.RoomRideState, error) {
	var err error

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRoomRepo := postgres.NewRoomRepositoryWithTx(tx)
	txRideStateRepo := postgres.NewRideStateRepositoryWithTx(tx)

	var room *domain.Room
	room, err = txRoomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrRoomNotFound
		}
		return nil, err
	}
	if room.CreatorID != req.ActorID {
		err = ErrForbidden
		return nil, err
	}

	var state *domain.RoomRideState
	state, err = txRideStateRepo.GetByRoom(ctx, req.RoomID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		err = nil
		state = &domain.RoomRideState{RoomID: req.RoomID, Stage: domain.RideStageIdle}
	}

	if state.Stage == req.Stage {
		// Repeating the current stage is a no-op, not an error.
		_ = tx.Rollback()
		return state, nil
	}

	if err = validate(state.Stage); err != nil {
		return nil, err
	}

	state.Stage = req.Stage
	if req.DriverName != nil {
		state.DriverName = *req.DriverName
	}
	if req.CarModel != nil {
		state.CarModel = *req.CarModel
	}
	if req.CarNumber != nil {
		state.CarNumber = *req.CarNumber
	}
	if req.Note != nil {
		state.Note = *req.Note
	}
	state.UpdatedByID = req.ActorID
	state.UpdatedAt = time.Now()

	if err = txRideStateRepo.Upsert(ctx, state); err != nil {
		return nil, err
	}

	switch req.Stage {
	case domain.RideStageCompleted:
		err = txRoomRepo.UpdateStatus(ctx, req.RoomID, domain.RoomStatusSuccess)
	case domain.RideStageCanceled:
		err = txRoomRepo.UpdateStatus(ctx, req.RoomID, domain.RoomStatusFailed)
	}
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	observability.StageTransitionsTotal.WithLabelValues(string(req.Stage)).Inc()
	s.broadcaster.BroadcastRoom(ctx, req.RoomID, state)

	if participants, listErr := s.participantRepo.ListByRoom(ctx, req.RoomID); listErr == nil {
		for _, p := range participants {
			s.notifications.NotifyStageChanged(ctx, room, p.UserID, state.Stage)
		}
	}
	return state, nil
}
