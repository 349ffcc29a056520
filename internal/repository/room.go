package repository

import (
	"context"
	"time"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// RoomFilter narrows room listings.
type RoomFilter struct {
	Status    domain.RoomStatus
	Priority  domain.RoomPriority
	CreatorID string
	Limit     int
}

// RoomRepository defines the persistence operations for rooms.
type RoomRepository interface {
	// Create persists a new room.
	Create(ctx context.Context, room *domain.Room) error

	// GetByID retrieves a room by ID.
	GetByID(ctx context.Context, id string) (*domain.Room, error)

	// List retrieves rooms matching the filter, ordered by departure time.
	List(ctx context.Context, filter RoomFilter) ([]*domain.Room, error)

	// ListByMember retrieves rooms the user hosts or participates in.
	ListByMember(ctx context.Context, userID string) ([]*domain.Room, error)

	// Update persists mutable room fields.
	Update(ctx context.Context, room *domain.Room) error

	// UpdateStatus sets only the coarse status.
	UpdateStatus(ctx context.Context, id string, status domain.RoomStatus) error

	// Delete removes the room. Participant rows cascade at the storage layer.
	Delete(ctx context.Context, id string) error
}

// ParticipantRepository defines the persistence operations for seats.
type ParticipantRepository interface {
	// Create inserts a seat row. Returns ErrDuplicate when (roomID, seatNumber)
	// or (roomID, userID) already exists.
	Create(ctx context.Context, p *domain.RoomParticipant) error

	// ListByRoom retrieves all participants of a room ordered by seat number.
	ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomParticipant, error)

	// GetByRoomAndUser retrieves the seat held by a user in a room.
	GetByRoomAndUser(ctx context.Context, roomID, userID string) (*domain.RoomParticipant, error)

	// Delete removes one participant row.
	Delete(ctx context.Context, id string) error

	// DeleteByRoom removes every participant row of a room.
	DeleteByRoom(ctx context.Context, roomID string) error

	// CountByRoom returns the number of occupied seats.
	CountByRoom(ctx context.Context, roomID string) (int, error)
}

// RideStateRepository defines the persistence operations for dispatch state.
type RideStateRepository interface {
	// GetByRoom retrieves the ride state for a room, ErrNotFound when the room
	// has not seen any ride action yet.
	GetByRoom(ctx context.Context, roomID string) (*domain.RoomRideState, error)

	// Upsert inserts or replaces the one-per-room ride state.
	Upsert(ctx context.Context, state *domain.RoomRideState) error
}

// RoomUpdate is a merge-patch for host room edits: nil fields keep their
// previous value.
type RoomUpdate struct {
	Title          *string
	DepartureLabel *string
	DepartureLat   *float64
	DepartureLng   *float64
	ArrivalLabel   *string
	ArrivalLat     *float64
	ArrivalLng     *float64
	DepartureTime  *time.Time
	Capacity       *int
	Priority       *domain.RoomPriority
	EstimatedFare  *int64
}

// Empty reports whether the patch carries no changes.
func (u RoomUpdate) Empty() bool {
	return u.Title == nil && u.DepartureLabel == nil && u.DepartureLat == nil &&
		u.DepartureLng == nil && u.ArrivalLabel == nil && u.ArrivalLat == nil &&
		u.ArrivalLng == nil && u.DepartureTime == nil && u.Capacity == nil &&
		u.Priority == nil && u.EstimatedFare == nil
}
