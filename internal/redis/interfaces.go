package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for room departure indexing.
type LocationStoreInterface interface {
	IndexRoom(ctx context.Context, roomID string, lat, lng float64) error
	FindNearbyRooms(ctx context.Context, lat, lng, radiusKm float64) ([]RoomLocation, error)
	RemoveRoom(ctx context.Context, roomID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireDispatchLock(ctx context.Context, roomID string, ttl time.Duration) (bool, error)
	ReleaseDispatchLock(ctx context.Context, roomID string) error
}

// CacheStoreInterface defines the interface for room summary caching.
type CacheStoreInterface interface {
	GetRoom(ctx context.Context, roomID string) (*CachedRoomSummary, error)
	SetRoom(ctx context.Context, room *CachedRoomSummary) error
	InvalidateRoom(ctx context.Context, roomID string) error
	GetRoomsBatch(ctx context.Context, roomIDs []string) (map[string]*CachedRoomSummary, []string, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ CacheStoreInterface    = (*CacheStore)(nil)
)
