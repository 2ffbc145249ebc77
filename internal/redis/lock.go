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

// AcquireGroupLock attempts to acquire an advisory lock for the given group.
// Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireGroupLock(ctx context.Context, groupID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:group:%s", groupID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseGroupLock releases the lock for the given group.
func (s *LockStore) ReleaseGroupLock(ctx context.Context, groupID string) error {
	key := fmt.Sprintf("lock:group:%s", groupID)

	return s.client.Del(ctx, key).Err()
}
