package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/observability"
	"github.com/yeeuneey/GogoTaxi-back/internal/realtime"
	redisstore "github.com/yeeuneey/GogoTaxi-back/internal/redis"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository/postgres"
)

// RoomService governs seat membership and the coarse room status.
type RoomService struct {
	db              *sql.DB
	roomRepo        repository.RoomRepository
	participantRepo repository.ParticipantRepository
	rideStateRepo   repository.RideStateRepository
	locations       redisstore.LocationStoreInterface // optional, nil disables geo indexing
	cache           redisstore.CacheStoreInterface    // optional, nil disables the summary cache
	broadcaster     realtime.Broadcaster
	notifications   *NotificationService
	logger          *slog.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	db *sql.DB,
	roomRepo repository.RoomRepository,
	participantRepo repository.ParticipantRepository,
	rideStateRepo repository.RideStateRepository,
	locations redisstore.LocationStoreInterface,
	cache redisstore.CacheStoreInterface,
	broadcaster realtime.Broadcaster,
	notifications *NotificationService,
	logger *slog.Logger,
) *RoomService {
	return &RoomService{
		db:              db,
		roomRepo:        roomRepo,
		participantRepo: participantRepo,
		rideStateRepo:   rideStateRepo,
		locations:       locations,
		cache:           cache,
		broadcaster:     broadcaster,
		notifications:   notifications,
		logger:          logger,
	}
}

// RoomSnapshot is the serialized view of a room handed to callers and pushed
// to the room's realtime channel.
type RoomSnapshot struct {
	Room           *domain.Room
	Participants   []*domain.RoomParticipant
	SeatsFilled    int
	SeatsAvailable int
	RideStage      domain.RideStage
	MySeatNumber   int // 0 when the viewer holds no seat
}

// CreateRoomRequest contains the parameters for creating a room.
type CreateRoomRequest struct {
	CreatorID      string
	Title          string
	DepartureLabel string
	DepartureLat   float64
	DepartureLng   float64
	ArrivalLabel   string
	ArrivalLat     float64
	ArrivalLng     float64
	DepartureTime  time.Time
	Capacity       int
	Priority       domain.RoomPriority
	EstimatedFare  *int64
}

// CreateRoom creates a room and auto-enrolls the host at seat 1.
func (s *RoomService) CreateRoom(ctx context.Context, req CreateRoomRequest) (*RoomSnapshot, error) {
	if req.Capacity < 1 || req.Capacity > 6 {
		return nil, ErrInvalidCapacity
	}
	if req.Priority == "" {
		req.Priority = domain.RoomPriorityTime
	}

	room := &domain.Room{
		ID:               uuid.New().String(),
		Title:            req.Title,
		CreatorID:        req.CreatorID,
		DepartureLabel:   req.DepartureLabel,
		DepartureLat:     req.DepartureLat,
		DepartureLng:     req.DepartureLng,
		ArrivalLabel:     req.ArrivalLabel,
		ArrivalLat:       req.ArrivalLat,
		ArrivalLng:       req.ArrivalLng,
		DepartureTime:    req.DepartureTime,
		Capacity:         req.Capacity,
		Priority:         req.Priority,
		Status:           domain.RoomStatusOpen,
		EstimatedFare:    req.EstimatedFare,
		SettlementStatus: domain.SettlementStatusNone,
		CreatedAt:        time.Now(),
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
	txParticipantRepo := postgres.NewParticipantRepositoryWithTx(tx)

	if err = txRoomRepo.Create(ctx, room); err != nil {
		return nil, err
	}

	host := &domain.RoomParticipant{
		ID:         uuid.New().String(),
		RoomID:     room.ID,
		UserID:     req.CreatorID,
		SeatNumber: 1,
		JoinedAt:   time.Now(),
	}
	if err = txParticipantRepo.Create(ctx, host); err != nil {
		return nil, err
	}

	// Capacity 1 rooms are full the moment the host sits down.
	room.Status = domain.NextStatus(room.Status, 1, room.Capacity)
	if err = txRoomRepo.UpdateStatus(ctx, room.ID, room.Status); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	if s.locations != nil {
		if idxErr := s.locations.IndexRoom(ctx, room.ID, room.DepartureLat, room.DepartureLng); idxErr != nil {
			s.logger.Warn("room geo index failed", "room_id", room.ID, "error", idxErr)
		}
	}

	return s.Snapshot(ctx, room.ID, req.CreatorID)
}

// JoinRoomRequest contains the parameters for taking a seat.
type JoinRoomRequest struct {
	RoomID     string
	UserID     string
	SeatNumber int // 0 assigns the lowest unused seat
}

// JoinRoom seats the user in the room. Two concurrent joins observing the
// same free seat cannot both succeed: the storage-level unique constraint on
// (room, seat) makes the loser fail with ErrSeatTaken.
func (s *RoomService) JoinRoom(ctx context.Context, req JoinRoomRequest) (*RoomSnapshot, error) {
	var err error
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "rejected"
		}
		observability.RoomJoinsTotal.WithLabelValues(outcome).Inc()
	}()

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
	txParticipantRepo := postgres.NewParticipantRepositoryWithTx(tx)

	var room *domain.Room
	room, err = txRoomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrRoomNotFound
		}
		return nil, err
	}

	if room.Status != domain.RoomStatusOpen && room.Status != domain.RoomStatusRecruiting {
		err = ErrRoomNotOpen
		return nil, err
	}
	if room.SeatsLocked() {
		err = ErrSeatsLocked
		return nil, err
	}

	var participants []*domain.RoomParticipant
	participants, err = txParticipantRepo.ListByRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	taken := make(map[int]bool, len(participants))
	for _, p := range participants {
		if p.UserID == req.UserID {
			err = ErrAlreadyJoined
			return nil, err
		}
		taken[p.SeatNumber] = true
	}

	if len(participants) >= room.Capacity {
		err = ErrRoomFull
		return nil, err
	}

	seat := req.SeatNumber
	if seat == 0 {
		for n := 1; n <= room.Capacity; n++ {
			if !taken[n] {
				seat = n
				break
			}
		}
	}
	if seat < 1 || seat > room.Capacity {
		err = ErrSeatOutOfRange
		return nil, err
	}
	if taken[seat] {
		err = ErrSeatTaken
		return nil, err
	}

	participant := &domain.RoomParticipant{
		ID:         uuid.New().String(),
		RoomID:     req.RoomID,
		UserID:     req.UserID,
		SeatNumber: seat,
		JoinedAt:   time.Now(),
	}
	if err = txParticipantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a seat race to a concurrent join.
			err = ErrSeatTaken
		}
		return nil, err
	}

	next := domain.NextStatus(room.Status, len(participants)+1, room.Capacity)
	if next != room.Status {
		if err = txRoomRepo.UpdateStatus(ctx, req.RoomID, next); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	snapshot, snapErr := s.Snapshot(ctx, req.RoomID, req.UserID)
	if snapErr != nil {
		return nil, snapErr
	}
	s.broadcaster.BroadcastRoom(ctx, req.RoomID, snapshot)
	return snapshot, nil
}

// LeaveRoom removes the user's seat. When the host is the sole participant
// the whole room is deleted atomically and (nil, true) is returned; a host
// with remaining guests cannot leave.
func (s *RoomService) LeaveRoom(ctx context.Context, roomID, userID string) (*RoomSnapshot, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txRoomRepo := postgres.NewRoomRepositoryWithTx(tx)
	txParticipantRepo := postgres.NewParticipantRepositoryWithTx(tx)

	var room *domain.Room
	room, err = txRoomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrRoomNotFound
		}
		return nil, false, err
	}
	if room.Status.IsTerminal() {
		err = ErrAlreadyClosed
		return nil, false, err
	}
	// A held deposit pins every seat until the room settles; letting anyone
	// out here would detach the member set from the money already moved.
	if room.SeatsLocked() {
		err = ErrSeatsLocked
		return nil, false, err
	}

	var participants []*domain.RoomParticipant
	participants, err = txParticipantRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, false, err
	}

	if room.CreatorID == userID {
		if len(participants) > 1 {
			err = ErrHostCannotLeave
			return nil, false, err
		}
		if err = txParticipantRepo.DeleteByRoom(ctx, roomID); err != nil {
			return nil, false, err
		}
		if err = txRoomRepo.Delete(ctx, roomID); err != nil {
			return nil, false, err
		}
		if err = tx.Commit(); err != nil {
			return nil, false, err
		}
		if s.locations != nil {
			_ = s.locations.RemoveRoom(ctx, roomID)
		}
		if s.cache != nil {
			_ = s.cache.InvalidateRoom(ctx, roomID)
		}
		s.broadcaster.BroadcastRoom(ctx, roomID, map[string]any{"room_id": roomID, "deleted": true})
		s.notifications.NotifyRoomDeleted(ctx, roomID, room.Title, userID)
		return nil, true, nil
	}

	var leaving *domain.RoomParticipant
	for _, p := range participants {
		if p.UserID == userID {
			leaving = p
			break
		}
	}
	if leaving == nil {
		err = ErrNotParticipant
		return nil, false, err
	}

	if err = txParticipantRepo.Delete(ctx, leaving.ID); err != nil {
		return nil, false, err
	}

	next := domain.NextStatus(room.Status, len(participants)-1, room.Capacity)
	if next != room.Status {
		if err = txRoomRepo.UpdateStatus(ctx, roomID, next); err != nil {
			return nil, false, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, false, err
	}

	snapshot, snapErr := s.Snapshot(ctx, roomID, userID)
	if snapErr != nil {
		return nil, false, snapErr
	}
	s.broadcaster.BroadcastRoom(ctx, roomID, snapshot)
	return snapshot, false, nil
}

// CloseRoom marks the room closed. Host only; terminal rooms stay closed.
func (s *RoomService) CloseRoom(ctx context.Context, roomID, actorID string) (*RoomSnapshot, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if room.CreatorID != actorID {
		return nil, ErrForbidden
	}
	if room.Status.IsTerminal() {
		return nil, ErrAlreadyClosed
	}

	if err := s.roomRepo.UpdateStatus(ctx, roomID, domain.RoomStatusClosed); err != nil {
		return nil, err
	}
	if s.locations != nil {
		_ = s.locations.RemoveRoom(ctx, roomID)
	}

	snapshot, err := s.Snapshot(ctx, roomID, actorID)
	if err != nil {
		return nil, err
	}
	s.broadcaster.BroadcastRoom(ctx, roomID, snapshot)
	return snapshot, nil
}

// UpdateRoom applies a host merge-patch. Only open rooms may change.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID, actorID string, patch repository.RoomUpdate) (*RoomSnapshot, error) {
	if patch.Empty() {
		return s.Snapshot(ctx, roomID, actorID)
	}
	if patch.Capacity != nil && (*patch.Capacity < 1 || *patch.Capacity > 6) {
		return nil, ErrInvalidCapacity
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
	txParticipantRepo := postgres.NewParticipantRepositoryWithTx(tx)

	var room *domain.Room
	room, err = txRoomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrRoomNotFound
		}
		return nil, err
	}
	if room.CreatorID != actorID {
		err = ErrForbidden
		return nil, err
	}
	if room.Status != domain.RoomStatusOpen && room.Status != domain.RoomStatusRecruiting {
		err = ErrRoomNotOpen
		return nil, err
	}

	if patch.Capacity != nil {
		var count int
		count, err = txParticipantRepo.CountByRoom(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if *patch.Capacity < count {
			err = ErrInvalidCapacity
			return nil, err
		}
		room.Capacity = *patch.Capacity
		room.Status = domain.NextStatus(room.Status, count, room.Capacity)
	}

	applyRoomPatch(room, patch)

	if err = txRoomRepo.Update(ctx, room); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	snapshot, snapErr := s.Snapshot(ctx, roomID, actorID)
	if snapErr != nil {
		return nil, snapErr
	}
	s.broadcaster.BroadcastRoom(ctx, roomID, snapshot)
	return snapshot, nil
}

func applyRoomPatch(room *domain.Room, patch repository.RoomUpdate) {
	if patch.Title != nil {
		room.Title = *patch.Title
	}
	if patch.DepartureLabel != nil {
		room.DepartureLabel = *patch.DepartureLabel
	}
	if patch.DepartureLat != nil {
		room.DepartureLat = *patch.DepartureLat
	}
	if patch.DepartureLng != nil {
		room.DepartureLng = *patch.DepartureLng
	}
	if patch.ArrivalLabel != nil {
		room.ArrivalLabel = *patch.ArrivalLabel
	}
	if patch.ArrivalLat != nil {
		room.ArrivalLat = *patch.ArrivalLat
	}
	if patch.ArrivalLng != nil {
		room.ArrivalLng = *patch.ArrivalLng
	}
	if patch.DepartureTime != nil {
		room.DepartureTime = *patch.DepartureTime
	}
	if patch.Priority != nil {
		room.Priority = *patch.Priority
	}
	if patch.EstimatedFare != nil {
		room.EstimatedFare = patch.EstimatedFare
	}
}

// Snapshot assembles the serialized room view for a viewer.
func (s *RoomService) Snapshot(ctx context.Context, roomID, viewerID string) (*RoomSnapshot, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	participants, err := s.participantRepo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	stage := domain.RideStageIdle
	if state, err := s.rideStateRepo.GetByRoom(ctx, roomID); err == nil {
		stage = state.Stage
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	snapshot := &RoomSnapshot{
		Room:           room,
		Participants:   participants,
		SeatsFilled:    len(participants),
		SeatsAvailable: max(room.Capacity-len(participants), 0),
		RideStage:      stage,
	}
	for _, p := range participants {
		if p.UserID == viewerID {
			snapshot.MySeatNumber = p.SeatNumber
			break
		}
	}

	if s.cache != nil {
		_ = s.cache.SetRoom(ctx, &redisstore.CachedRoomSummary{
			ID:             room.ID,
			Status:         string(room.Status),
			SeatsFilled:    snapshot.SeatsFilled,
			SeatsAvailable: snapshot.SeatsAvailable,
			RideStage:      string(stage),
		})
	}
	return snapshot, nil
}

// ListRooms retrieves rooms matching the filter.
func (s *RoomService) ListRooms(ctx context.Context, filter repository.RoomFilter) ([]*domain.Room, error) {
	return s.roomRepo.List(ctx, filter)
}

// ListMyRooms retrieves rooms the user hosts or participates in.
func (s *RoomService) ListMyRooms(ctx context.Context, userID string) ([]*domain.Room, error) {
	return s.roomRepo.ListByMember(ctx, userID)
}

// MatchRoomsRequest narrows open rooms by departure proximity, time window
// and free seats.
type MatchRoomsRequest struct {
	Lat         float64
	Lng         float64
	RadiusKm    float64
	Earliest    time.Time
	Latest      time.Time
	SeatsNeeded int
	Priority    domain.RoomPriority
}

// MatchRooms returns open rooms the requester could join.
func (s *RoomService) MatchRooms(ctx context.Context, req MatchRoomsRequest) ([]*domain.Room, error) {
	if req.RadiusKm <= 0 {
		req.RadiusKm = 3
	}
	if req.SeatsNeeded <= 0 {
		req.SeatsNeeded = 1
	}

	rooms, err := s.roomRepo.List(ctx, repository.RoomFilter{
		Status:   domain.RoomStatusOpen,
		Priority: req.Priority,
	})
	if err != nil {
		return nil, err
	}

	// The geo index narrows the candidate set before the per-room checks.
	// Falls through to the haversine filter when the index is unavailable.
	var nearby map[string]bool
	if s.locations != nil && (req.Lat != 0 || req.Lng != 0) {
		if hits, geoErr := s.locations.FindNearbyRooms(ctx, req.Lat, req.Lng, req.RadiusKm); geoErr == nil {
			nearby = make(map[string]bool, len(hits))
			for _, h := range hits {
				nearby[h.RoomID] = true
			}
		}
	}

	var candidates []*domain.Room
	for _, room := range rooms {
		if nearby != nil && !nearby[room.ID] {
			continue
		}
		if !req.Earliest.IsZero() && room.DepartureTime.Before(req.Earliest) {
			continue
		}
		if !req.Latest.IsZero() && room.DepartureTime.After(req.Latest) {
			continue
		}
		if req.Lat != 0 || req.Lng != 0 {
			if haversineKm(req.Lat, req.Lng, room.DepartureLat, room.DepartureLng) > req.RadiusKm {
				continue
			}
		}
		candidates = append(candidates, room)
	}

	// Occupancy reads through the summary cache; only misses hit storage.
	var summaries map[string]*redisstore.CachedRoomSummary
	if s.cache != nil {
		ids := make([]string, 0, len(candidates))
		for _, room := range candidates {
			ids = append(ids, room.ID)
		}
		summaries, _, _ = s.cache.GetRoomsBatch(ctx, ids)
	}

	var matched []*domain.Room
	for _, room := range candidates {
		var seatsAvailable int
		if summary, ok := summaries[room.ID]; ok {
			seatsAvailable = summary.SeatsAvailable
		} else {
			count, err := s.participantRepo.CountByRoom(ctx, room.ID)
			if err != nil {
				return nil, err
			}
			seatsAvailable = room.Capacity - count
			if s.cache != nil {
				_ = s.cache.SetRoom(ctx, &redisstore.CachedRoomSummary{
					ID:             room.ID,
					Status:         string(room.Status),
					SeatsFilled:    count,
					SeatsAvailable: seatsAvailable,
					RideStage:      string(domain.RideStageIdle),
				})
			}
		}
		if seatsAvailable < req.SeatsNeeded {
			continue
		}
		matched = append(matched, room)
	}
	return matched, nil
}

// haversineKm returns the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
