package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yeeuneey/GogoTaxi-back/internal/domain"
	"github.com/yeeuneey/GogoTaxi-back/internal/repository"
)

// RideStateRepository is a PostgreSQL implementation of
// repository.RideStateRepository.
type RideStateRepository struct {
	q Querier
}

// NewRideStateRepository creates a new PostgreSQL ride state repository.
func NewRideStateRepository(db *sql.DB) *RideStateRepository {
	return &RideStateRepository{q: db}
}

// NewRideStateRepositoryWithTx creates a ride state repository using a transaction.
func NewRideStateRepositoryWithTx(tx *sql.Tx) *RideStateRepository {
	return &RideStateRepository{q: tx}
}

// GetByRoom retrieves the ride state for a room.
func (r *RideStateRepository) GetByRoom(ctx context.Context, roomID string) (*domain.RoomRideState, error) {
	query := `
		SELECT room_id, stage, deeplink_url,
			pickup_label, pickup_lat, pickup_lng,
			dropoff_label, dropoff_lat, dropoff_lng,
			driver_name, car_model, car_number, note,
			updated_by_id, updated_at
		FROM room_ride_states WHERE room_id = $1
	`

	var s domain.RoomRideState
	err := r.q.QueryRowContext(ctx, query, roomID).Scan(
		&s.RoomID,
		&s.Stage,
		&s.DeeplinkURL,
		&s.PickupLabel,
		&s.PickupLat,
		&s.PickupLng,
		&s.DropoffLabel,
		&s.DropoffLat,
		&s.DropoffLng,
		&s.DriverName,
		&s.CarModel,
		&s.CarNumber,
		&s.Note,
		&s.UpdatedByID,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert inserts or replaces the one-per-room ride state.
func (r *RideStateRepository) Upsert(ctx context.Context, state *domain.RoomRideState) error {
	query := `
		INSERT INTO room_ride_states (
			room_id, stage, deeplink_url,
			pickup_label, pickup_lat, pickup_lng,
			dropoff_label, dropoff_lat, dropoff_lng,
			driver_name, car_model, car_number, note,
			updated_by_id, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (room_id) DO UPDATE SET
			stage = EXCLUDED.stage,
			deeplink_url = EXCLUDED.deeplink_url,
			pickup_label = EXCLUDED.pickup_label,
			pickup_lat = EXCLUDED.pickup_lat,
			pickup_lng = EXCLUDED.pickup_lng,
			dropoff_label = EXCLUDED.dropoff_label,
			dropoff_lat = EXCLUDED.dropoff_lat,
			dropoff_lng = EXCLUDED.dropoff_lng,
			driver_name = EXCLUDED.driver_name,
			car_model = EXCLUDED.car_model,
			car_number = EXCLUDED.car_number,
			note = EXCLUDED.note,
			updated_by_id = EXCLUDED.updated_by_id,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		state.RoomID,
		state.Stage,
		state.DeeplinkURL,
		state.PickupLabel,
		state.PickupLat,
		state.PickupLng,
		state.DropoffLabel,
		state.DropoffLat,
		state.DropoffLng,
		state.DriverName,
		state.CarModel,
		state.CarNumber,
		state.Note,
		state.UpdatedByID,
		state.UpdatedAt,
	)

	return err
}
