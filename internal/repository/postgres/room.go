package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/lib/pq"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// RoomRepository is a PostgreSQL implementation of repository.RoomRepository.
type RoomRepository struct {
	q Querier
}

// NewRoomRepository creates a new PostgreSQL room repository.
func NewRoomRepository(db *sql.DB) *RoomRepository {
	return &RoomRepository{q: db}
}

// NewRoomRepositoryWithTx creates a room repository using a transaction.
func NewRoomRepositoryWithTx(tx *sql.Tx) *RoomRepository {
	return &RoomRepository{q: tx}
}

const roomColumns = `
	id, title, creator_id,
	departure_label, departure_lat, departure_lng,
	arrival_label, arrival_lat, arrival_lng,
	departure_time, capacity, priority, status,
	estimated_fare, actual_fare, settlement_status, no_show_user_ids, created_at`

// Create persists a new room.
func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	query := `
		INSERT INTO rooms (
			id, title, creator_id,
			departure_label, departure_lat, departure_lng,
			arrival_label, arrival_lat, arrival_lng,
			departure_time, capacity, priority, status,
			estimated_fare, actual_fare, settlement_status, no_show_user_ids, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.q.ExecContext(ctx, query,
		room.ID,
		room.Title,
		room.CreatorID,
		room.DepartureLabel,
		room.DepartureLat,
		room.DepartureLng,
		room.ArrivalLabel,
		room.ArrivalLat,
		room.ArrivalLng,
		room.DepartureTime,
		room.Capacity,
		room.Priority,
		room.Status,
		room.EstimatedFare,
		room.ActualFare,
		room.SettlementStatus,
		pq.Array(room.NoShowUserIDs),
		room.CreatedAt,
	)

	return err
}

// GetByID retrieves a room by ID.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return room, nil
}

// List retrieves rooms matching the filter, ordered by departure time.
func (r *RoomRepository) List(ctx context.Context, filter repository.RoomFilter) ([]*domain.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $` + itoa(len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		query += ` AND priority = $` + itoa(len(args))
	}
	if filter.CreatorID != "" {
		args = append(args, filter.CreatorID)
		query += ` AND creator_id = $` + itoa(len(args))
	}
	query += ` ORDER BY departure_time ASC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRooms(rows)
}

// ListByMember retrieves rooms the user hosts or participates in.
func (r *RoomRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Room, error) {
	query := `
		SELECT` + roomColumns + `
		FROM rooms
		WHERE creator_id = $1
		   OR id IN (SELECT room_id FROM room_participants WHERE user_id = $1)
		ORDER BY departure_time ASC
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRooms(rows)
}

// Update persists mutable room fields.
func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	query := `
		UPDATE rooms SET
			title = $1,
			departure_label = $2, departure_lat = $3, departure_lng = $4,
			arrival_label = $5, arrival_lat = $6, arrival_lng = $7,
			departure_time = $8, capacity = $9, priority = $10, status = $11,
			estimated_fare = $12, actual_fare = $13, settlement_status = $14,
			no_show_user_ids = $15
		WHERE id = $16
	`

	result, err := r.q.ExecContext(ctx, query,
		room.Title,
		room.DepartureLabel,
		room.DepartureLat,
		room.DepartureLng,
		room.ArrivalLabel,
		room.ArrivalLat,
		room.ArrivalLng,
		room.DepartureTime,
		room.Capacity,
		room.Priority,
		room.Status,
		room.EstimatedFare,
		room.ActualFare,
		room.SettlementStatus,
		pq.Array(room.NoShowUserIDs),
		room.ID,
	)
	if err != nil {
		return err
	}

	return requireRow(result)
}

// UpdateStatus sets only the coarse status.
func (r *RoomRepository) UpdateStatus(ctx context.Context, id string, status domain.RoomStatus) error {
	result, err := r.q.ExecContext(ctx, `UPDATE rooms SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Delete removes the room. Participant, ride-state and settlement rows
// cascade via foreign keys.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*domain.Room, error) {
	var room domain.Room
	var noShow pq.StringArray

	err := row.Scan(
		&room.ID,
		&room.Title,
		&room.CreatorID,
		&room.DepartureLabel,
		&room.DepartureLat,
		&room.DepartureLng,
		&room.ArrivalLabel,
		&room.ArrivalLat,
		&room.ArrivalLng,
		&room.DepartureTime,
		&room.Capacity,
		&room.Priority,
		&room.Status,
		&room.EstimatedFare,
		&room.ActualFare,
		&room.SettlementStatus,
		&noShow,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	room.NoShowUserIDs = []string(noShow)
	return &room, nil
}

func collectRooms(rows *sql.Rows) ([]*domain.Room, error) {
	var rooms []*domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
