package domain

import "time"

// RoomStatus represents the coarse lifecycle status of a room.
type RoomStatus string

const (
	RoomStatusOpen        RoomStatus = "open"
	RoomStatusRecruiting  RoomStatus = "recruiting"
	RoomStatusFull        RoomStatus = "full"
	RoomStatusDispatching RoomStatus = "dispatching"
	RoomStatusSuccess     RoomStatus = "success"
	RoomStatusFailed      RoomStatus = "failed"
	RoomStatusClosed      RoomStatus = "closed"
)

// IsTerminal reports whether no further seat or settlement mutation is permitted.
func (s RoomStatus) IsTerminal() bool {
	return s == RoomStatusClosed || s == RoomStatusSuccess || s == RoomStatusFailed
}

// RoomPriority is the matching preference chosen by the host.
type RoomPriority string

const (
	RoomPriorityTime RoomPriority = "time"
	RoomPriorityFare RoomPriority = "fare"
)

// SettlementStatus tracks how far the money side of a room has progressed.
type SettlementStatus string

const (
	SettlementStatusNone             SettlementStatus = "none"
	SettlementStatusDepositCollected SettlementStatus = "deposit_collected"
	SettlementStatusSettled          SettlementStatus = "settled"
)

// Room is the aggregate root for a shared-ride coordination unit.
// The creator (host) implicitly owns seat 1.
type Room struct {
	ID               string
	Title            string
	CreatorID        string
	DepartureLabel   string
	DepartureLat     float64
	DepartureLng     float64
	ArrivalLabel     string
	ArrivalLat       float64
	ArrivalLng       float64
	DepartureTime    time.Time
	Capacity         int // 1-6
	Priority         RoomPriority
	Status           RoomStatus
	EstimatedFare    *int64 // minor currency units (KRW), nil until set
	ActualFare       *int64
	SettlementStatus SettlementStatus
	NoShowUserIDs    []string
	CreatedAt        time.Time
}

// SeatsLocked reports whether seat membership is frozen. Once deposits are
// held the member set backs real money, so nobody may join or leave until
// the room is settled.
func (r *Room) SeatsLocked() bool {
	return r.SettlementStatus == SettlementStatusDepositCollected ||
		r.SettlementStatus == SettlementStatusSettled
}

// IsNoShow reports whether the given user is flagged as a no-show.
func (r *Room) IsNoShow(userID string) bool {
	for _, id := range r.NoShowUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// NextStatus computes the room status implied by the current occupancy.
// Terminal rooms are never recomputed.
func NextStatus(current RoomStatus, participantCount, capacity int) RoomStatus {
	if current.IsTerminal() {
		return current
	}
	if participantCount >= capacity {
		return RoomStatusFull
	}
	return RoomStatusOpen
}

// RoomParticipant is a seat held by one user in one room.
// (roomID, seatNumber) is unique, enforced at the storage layer.
type RoomParticipant struct {
	ID         string
	RoomID     string
	UserID     string
	SeatNumber int // 1..capacity, host always holds 1
	JoinedAt   time.Time
}
