package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RoomCacheTTL      = 10 * time.Second // Seat occupancy changes during recruiting
	RideStateCacheTTL = 5 * time.Second  // Stage changes rapidly while dispatching
)

// Key prefixes
const (
	roomCachePrefix      = "cache:room:"
	rideStateCachePrefix = "cache:ride-state:"
)

// CachedRoomSummary is the trimmed room view kept hot for list and match reads.
type CachedRoomSummary struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	SeatsFilled    int    `json:"seats_filled"`
	SeatsAvailable int    `json:"seats_available"`
	RideStage      string `json:"ride_stage"`
}

// GetRoom retrieves a room summary from cache.
func (s *CacheStore) GetRoom(ctx context.Context, roomID string) (*CachedRoomSummary, error) {
	data, err := s.client.Get(ctx, roomCachePrefix+roomID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var room CachedRoomSummary
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SetRoom stores a room summary in cache.
func (s *CacheStore) SetRoom(ctx context.Context, room *CachedRoomSummary) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, roomCachePrefix+room.ID, data, RoomCacheTTL).Err()
}

// InvalidateRoom removes a room summary from cache.
func (s *CacheStore) InvalidateRoom(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, roomCachePrefix+roomID).Err()
}

// GetRoomsBatch retrieves multiple room summaries from cache using pipeline.
// Returns a map of roomID -> summary, and a slice of missing IDs.
func (s *CacheStore) GetRoomsBatch(ctx context.Context, roomIDs []string) (map[string]*CachedRoomSummary, []string, error) {
	if len(roomIDs) == 0 {
		return make(map[string]*CachedRoomSummary), nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make(map[string]*redis.StringCmd, len(roomIDs))

	for _, id := range roomIDs {
		cmds[id] = pipe.Get(ctx, roomCachePrefix+id)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		// Pipeline returns redis.Nil when some keys are missing; those are
		// handled per-command below.
	}

	result := make(map[string]*CachedRoomSummary)
	var missing []string

	for id, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			missing = append(missing, id)
			continue
		}

		var room CachedRoomSummary
		if err := json.Unmarshal(data, &room); err != nil {
			missing = append(missing, id)
			continue
		}
		result[id] = &room
	}

	return result, missing, nil
}
