package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore caches the open-group listing used by group suggestions.
// Suggestions tolerate slightly stale data, so the listing is cached with a
// short TTL and invalidated on every group mutation.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// OpenGroupsCacheTTL bounds the staleness of cached group suggestions.
const OpenGroupsCacheTTL = 10 * time.Second

const openGroupsKey = "cache:groups:open"

// CachedGroup is the cached shape of an open group.
type CachedGroup struct {
	ID          string   `json:"id"`
	RideID      string   `json:"ride_id"`
	AdminID     string   `json:"admin_id"`
	MemberIDs   []string `json:"member_ids"`
	MemberCount int      `json:"member_count"`
	MaxMembers  int      `json:"max_members"`
}

// GetOpenGroups retrieves the cached open-group listing.
// Returns nil on cache miss.
func (s *CacheStore) GetOpenGroups(ctx context.Context) ([]CachedGroup, error) {
	data, err := s.client.Get(ctx, openGroupsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var groups []CachedGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// SetOpenGroups stores the open-group listing.
func (s *CacheStore) SetOpenGroups(ctx context.Context, groups []CachedGroup) error {
	data, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, openGroupsKey, data, OpenGroupsCacheTTL).Err()
}

// InvalidateOpenGroups drops the cached listing after a group mutation.
func (s *CacheStore) InvalidateOpenGroups(ctx context.Context) error {
	return s.client.Del(ctx, openGroupsKey).Err()
}
