package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireGroupLock(ctx context.Context, groupID string, ttl time.Duration) (bool, error)
	ReleaseGroupLock(ctx context.Context, groupID string) error
}

// CacheStoreInterface defines the interface for the open-group cache.
type CacheStoreInterface interface {
	GetOpenGroups(ctx context.Context) ([]CachedGroup, error)
	SetOpenGroups(ctx context.Context, groups []CachedGroup) error
	InvalidateOpenGroups(ctx context.Context) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ CacheStoreInterface = (*CacheStore)(nil)
)
