package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireDispatchLock attempts to acquire the per-room dispatch lock. Only
// one ride request or settlement run may hold it at a time.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireDispatchLock(ctx context.Context, roomID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:room-dispatch:%s", roomID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseDispatchLock releases the dispatch lock for the given room.
func (s *LockStore) ReleaseDispatchLock(ctx context.Context, roomID string) error {
	key := fmt.Sprintf("lock:room-dispatch:%s", roomID)

	return s.client.Del(ctx, key).Err()
}
