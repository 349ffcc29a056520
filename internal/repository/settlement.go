package repository

import (
	"context"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// SettlementRepository defines the persistence operations for per-member
// settlement positions.
type SettlementRepository interface {
	// Upsert inserts or merges the (roomID, userID) settlement row.
	Upsert(ctx context.Context, s *domain.RoomSettlement) error

	// ListByRoom retrieves every settlement row of a room.
	ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomSettlement, error)
}

// HistoryRepository defines the persistence operations for settled ride
// history records.
type HistoryRepository interface {
	// Upsert inserts or replaces the (roomID, userID) history row.
	Upsert(ctx context.Context, h *domain.RideHistory) error

	// ListByUser retrieves a user's settled history, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.RideHistory, error)
}
