package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// ParticipantRepository is a PostgreSQL implementation of
// repository.ParticipantRepository.
type ParticipantRepository struct {
	q Querier
}

// NewParticipantRepository creates a new PostgreSQL participant repository.
func NewParticipantRepository(db *sql.DB) *ParticipantRepository {
	return &ParticipantRepository{q: db}
}

// NewParticipantRepositoryWithTx creates a participant repository using a transaction.
func NewParticipantRepositoryWithTx(tx *sql.Tx) *ParticipantRepository {
	return &ParticipantRepository{q: tx}
}

// Create inserts a seat row. The UNIQUE(room_id, seat_number) and
// UNIQUE(room_id, user_id) constraints make the losing side of a seat race
// surface as ErrDuplicate instead of a silent overwrite.
func (r *ParticipantRepository) Create(ctx context.Context, p *domain.RoomParticipant) error {
	query := `
		INSERT INTO room_participants (id, room_id, user_id, seat_number, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query, p.ID, p.RoomID, p.UserID, p.SeatNumber, p.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// ListByRoom retrieves all participants of a room ordered by seat number.
func (r *ParticipantRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.RoomParticipant, error) {
	query := `
		SELECT id, room_id, user_id, seat_number, joined_at
		FROM room_participants WHERE room_id = $1
		ORDER BY seat_number ASC
	`

	rows, err := r.q.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []*domain.RoomParticipant
	for rows.Next() {
		var p domain.RoomParticipant
		if err := rows.Scan(&p.ID, &p.RoomID, &p.UserID, &p.SeatNumber, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, &p)
	}
	return participants, rows.Err()
}

// GetByRoomAndUser retrieves the seat held by a user in a room.
func (r *ParticipantRepository) GetByRoomAndUser(ctx context.Context, roomID, userID string) (*domain.RoomParticipant, error) {
	query := `
		SELECT id, room_id, user_id, seat_number, joined_at
		FROM room_participants WHERE room_id = $1 AND user_id = $2
	`

	var p domain.RoomParticipant
	err := r.q.QueryRowContext(ctx, query, roomID, userID).Scan(
		&p.ID, &p.RoomID, &p.UserID, &p.SeatNumber, &p.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes one participant row.
func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM room_participants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// DeleteByRoom removes every participant row of a room.
func (r *ParticipantRepository) DeleteByRoom(ctx context.Context, roomID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM room_participants WHERE room_id = $1`, roomID)
	return err
}

// CountByRoom returns the number of occupied seats.
func (r *ParticipantRepository) CountByRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_participants WHERE room_id = $1`, roomID,
	).Scan(&count)
	return count, err
}
