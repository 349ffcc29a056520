package postgres

import (
	"context"
	"database/sql"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
)

// SettlementRepository is a PostgreSQL implementation of
// repository.SettlementRepository.
type SettlementRepository struct {
	q Querier
}

// NewSettlementRepository creates a new PostgreSQL settlement repository.
func NewSettlementRepository(db *sql.DB) *SettlementRepository {
	return &SettlementRepository{q: db}
}

// NewSettlementRepositoryWithTx creates a settlement repository using a transaction.
func NewSettlementRepositoryWithTx(tx *sql.Tx) *SettlementRepository {
	return &SettlementRepository{q: tx}
}

// Upsert inserts or merges the (roomID, userID) settlement row. Zero amounts
// leave the stored value untouched so each settlement phase contributes only
// its own leg, and a retried phase rewrites the same values instead of
// stacking them.
func (r *SettlementRepository) Upsert(ctx context.Context, s *domain.RoomSettlement) error {
	query := `
		INSERT INTO room_settlements (
			id, room_id, user_id, role, deposit, extra_collect, refund,
			net_amount, no_show, status, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (room_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			deposit = CASE WHEN EXCLUDED.deposit <> 0 THEN EXCLUDED.deposit ELSE room_settlements.deposit END,
			extra_collect = CASE WHEN EXCLUDED.extra_collect <> 0 THEN EXCLUDED.extra_collect ELSE room_settlements.extra_collect END,
			refund = CASE WHEN EXCLUDED.refund <> 0 THEN EXCLUDED.refund ELSE room_settlements.refund END,
			net_amount = CASE WHEN EXCLUDED.net_amount <> 0 THEN EXCLUDED.net_amount ELSE room_settlements.net_amount END,
			no_show = room_settlements.no_show OR EXCLUDED.no_show,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.RoomID,
		s.UserID,
		s.Role,
		s.Deposit,
		s.ExtraCollect,
		s.Refund,
		s.NetAmount,
		s.NoShow,
		s.Status,
		s.UpdatedAt,
	)

	return err
}

// ListByRoom retrieves every settlement row of a room.
func (r *SettlementRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomSettlement, error) {
	query := `
		SELECT id, room_id, user_id, role, deposit, extra_collect, refund,
			net_amount, no_show, status, updated_at
		FROM room_settlements WHERE room_id = $1
	`

	rows, err := r.q.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settlements []*domain.RoomSettlement
	for rows.Next() {
		var s domain.RoomSettlement
		err := rows.Scan(
			&s.ID, &s.RoomID, &s.UserID, &s.Role, &s.Deposit, &s.ExtraCollect,
			&s.Refund, &s.NetAmount, &s.NoShow, &s.Status, &s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, &s)
	}
	return settlements, rows.Err()
}

// HistoryRepository is a PostgreSQL implementation of
// repository.HistoryRepository.
type HistoryRepository struct {
	q Querier
}

// NewHistoryRepository creates a new PostgreSQL ride history repository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{q: db}
}

// NewHistoryRepositoryWithTx creates a ride history repository using a transaction.
func NewHistoryRepositoryWithTx(tx *sql.Tx) *HistoryRepository {
	return &HistoryRepository{q: tx}
}

// Upsert inserts or replaces the (roomID, userID) history row.
func (r *HistoryRepository) Upsert(ctx context.Context, h *domain.RideHistory) error {
	query := `
		INSERT INTO ride_histories (
			id, room_id, user_id, role, deposit, extra_collect, refund,
			net_amount, actual_fare, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (room_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			deposit = EXCLUDED.deposit,
			extra_collect = EXCLUDED.extra_collect,
			refund = EXCLUDED.refund,
			net_amount = EXCLUDED.net_amount,
			actual_fare = EXCLUDED.actual_fare,
			settled_at = EXCLUDED.settled_at
	`

	_, err := r.q.ExecContext(ctx, query,
		h.ID,
		h.RoomID,
		h.UserID,
		h.Role,
		h.Deposit,
		h.ExtraCollect,
		h.Refund,
		h.NetAmount,
		h.ActualFare,
		h.SettledAt,
	)

	return err
}

// ListByUser retrieves a user's settled history, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RideHistory, error) {
	query := `
		SELECT id, room_id, user_id, role, deposit, extra_collect, refund,
			net_amount, actual_fare, settled_at
		FROM ride_histories WHERE user_id = $1
		ORDER BY settled_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []*domain.RideHistory
	for rows.Next() {
		var h domain.RideHistory
		err := rows.Scan(
			&h.ID, &h.RoomID, &h.UserID, &h.Role, &h.Deposit, &h.ExtraCollect,
			&h.Refund, &h.NetAmount, &h.ActualFare, &h.SettledAt,
		)
		if err != nil {
			return nil, err
		}
		histories = append(histories, &h)
	}
	return histories, rows.Err()
}
