package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const roomDepartureKey = "rooms:departures"

// RoomLocation represents a room's departure point.
type RoomLocation struct {
	RoomID string
	Lat    float64
	Lng    float64
}

// LocationStore indexes room departure points in Redis for proximity matching.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// IndexRoom stores a room's departure point using GEOADD.
func (s *LocationStore) IndexRoom(ctx context.Context, roomID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, roomDepartureKey, &redis.GeoLocation{
		Name:      roomID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyRooms returns rooms departing within the given radius (in kilometers).
func (s *LocationStore) FindNearbyRooms(ctx context.Context, lat, lng, radiusKm float64) ([]RoomLocation, error) {
	results, err := s.client.GeoRadius(ctx, roomDepartureKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]RoomLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, RoomLocation{
			RoomID: r.Name,
			Lat:    r.Latitude,
			Lng:    r.Longitude,
		})
	}
	return locations, nil
}

// RemoveRoom drops a room from the departure index.
func (s *LocationStore) RemoveRoom(ctx context.Context, roomID string) error {
	return s.client.ZRem(ctx, roomDepartureKey, roomID).Err()
}
