package domain

import "time"

// SettlementRole distinguishes the host leg from guest legs.
type SettlementRole string

const (
	SettlementRoleHost  SettlementRole = "host"
	SettlementRoleGuest SettlementRole = "guest"
)

// SettlementRecordStatus is the per-member settlement state.
type SettlementRecordStatus string

const (
	SettlementRecordPending SettlementRecordStatus = "pending"
	SettlementRecordSettled SettlementRecordStatus = "settled"
)

// RoomSettlement is the per-(room, user) money position, upserted as
// settlement phases execute and read-only once the room is finalized.
type RoomSettlement struct {
	ID           string
	RoomID       string
	UserID       string
	Role         SettlementRole
	Deposit      int64
	ExtraCollect int64
	Refund       int64
	NetAmount    int64
	NoShow       bool
	Status       SettlementRecordStatus
	UpdatedAt    time.Time
}

// RideHistory is the immutable per-member record written when a room's
// settlement is finalized.
type RideHistory struct {
	ID           string
	RoomID       string
	UserID       string
	Role         SettlementRole
	Deposit      int64
	ExtraCollect int64
	Refund       int64
	NetAmount    int64
	ActualFare   int64
	SettledAt    time.Time
}
