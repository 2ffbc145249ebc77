package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"cabshare/internal/domain"
	"cabshare/internal/observability"
	internalredis "cabshare/internal/redis"
	"cabshare/internal/repository"
)

const (
	// maxUpdateRetries bounds optimistic-concurrency retries on group writes.
	maxUpdateRetries = 3

	groupLockTTL = 5 * time.Second

	maxChatMessageLen = 500
)

// GroupService handles group membership and chat.
//
// Correctness under concurrent joins/leaves comes from the repository's
// version compare-and-swap; the Redis lock only narrows the race window and
// is advisory.
type GroupService struct {
	groupRepo  repository.GroupRepository
	lockStore  internalredis.LockStoreInterface
	cacheStore internalredis.CacheStoreInterface
}

// NewGroupService creates a new GroupService. lockStore and cacheStore may
// be nil.
func NewGroupService(
	groupRepo repository.GroupRepository,
	lockStore internalredis.LockStoreInterface,
	cacheStore internalredis.CacheStoreInterface,
) *GroupService {
	return &GroupService{
		groupRepo:  groupRepo,
		lockStore:  lockStore,
		cacheStore: cacheStore,
	}
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	if groupID == "" {
		return nil, ErrInvalidGroupID
	}
	return s.groupRepo.GetByID(ctx, groupID)
}

// JoinGroup adds the requesting user to the group with a pending payment
// status. Joining is rejected once the group is at capacity.
func (s *GroupService) JoinGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if groupID == "" {
		return nil, ErrInvalidGroupID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock := s.acquireLock(ctx, groupID)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return nil, err
		}

		if group.MemberIndex(userID) >= 0 {
			return nil, ErrAlreadyMember
		}
		if len(group.Members) >= group.MaxMembers {
			return nil, ErrGroupFull
		}

		group.Members = append(group.Members, domain.GroupMember{
			UserID:        userID,
			PaymentStatus: domain.MemberPaymentPending,
			JoinedAt:      time.Now(),
		})
		if len(group.Members) >= group.MaxMembers {
			group.Status = domain.GroupStatusFull
		}

		err = s.groupRepo.Update(ctx, group)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(ctx)
		observability.GroupJoinsTotal.Inc()
		return group, nil
	}
	return nil, lastErr
}

// LeaveGroupResult contains the outcome of leaving a group.
type LeaveGroupResult struct {
	// Group is the remaining group; nil when the group was deleted.
	Group *domain.Group

	// Deleted reports that the departing member was the last one and the
	// group no longer exists.
	Deleted bool
}

// LeaveGroup removes the requesting user from the group. The last member
// leaving deletes the group; an admin leaving hands admin to the earliest
// remaining member by join order.
func (s *GroupService) LeaveGroup(ctx context.Context, groupID, userID string) (*LeaveGroupResult, error) {
	if groupID == "" {
		return nil, ErrInvalidGroupID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	unlock := s.acquireLock(ctx, groupID)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return nil, err
		}

		idx := group.MemberIndex(userID)
		if idx < 0 {
			return nil, ErrNotMember
		}

		group.Members = append(group.Members[:idx], group.Members[idx+1:]...)

		if len(group.Members) == 0 {
			err = s.groupRepo.Delete(ctx, group.ID, group.Version)
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				continue
			}
			if err != nil {
				return nil, err
			}
			s.invalidateCache(ctx)
			observability.GroupLeavesTotal.Inc()
			return &LeaveGroupResult{Deleted: true}, nil
		}

		if group.AdminID == userID {
			// Members are kept in join order, so the successor is
			// deterministic.
			group.AdminID = group.Members[0].UserID
		}
		if group.Status == domain.GroupStatusFull && len(group.Members) < group.MaxMembers {
			group.Status = domain.GroupStatusOpen
		}

		err = s.groupRepo.Update(ctx, group)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		s.invalidateCache(ctx)
		observability.GroupLeavesTotal.Inc()
		return &LeaveGroupResult{Group: group}, nil
	}
	return nil, lastErr
}

// SendChatMessage appends a message to the group's chat log and returns the
// appended entry. Message validation runs before existence and membership
// checks and never has side effects.
func (s *GroupService) SendChatMessage(ctx context.Context, groupID, senderID, message string) (*domain.ChatMessage, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, ErrMessageRequired
	}
	if len(trimmed) > maxChatMessageLen {
		return nil, ErrMessageTooLong
	}

	if groupID == "" {
		return nil, ErrInvalidGroupID
	}
	if senderID == "" {
		return nil, ErrInvalidUserID
	}

	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return nil, err
		}

		if group.MemberIndex(senderID) < 0 {
			return nil, ErrNotMember
		}

		entry := domain.ChatMessage{
			SenderID:  senderID,
			Message:   message,
			Timestamp: time.Now(),
		}
		group.Chat = append(group.Chat, entry)

		err = s.groupRepo.Update(ctx, group)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}

		observability.ChatMessagesTotal.Inc()
		return &entry, nil
	}
	return nil, lastErr
}

// acquireLock takes the advisory per-group lock when a lock store is wired.
// The returned func releases it and is always safe to call.
func (s *GroupService) acquireLock(ctx context.Context, groupID string) func() {
	if s.lockStore == nil {
		return func() {}
	}

	acquired, err := s.lockStore.AcquireGroupLock(ctx, groupID, groupLockTTL)
	if err != nil || !acquired {
		return func() {}
	}
	return func() {
		_ = s.lockStore.ReleaseGroupLock(ctx, groupID)
	}
}

func (s *GroupService) invalidateCache(ctx context.Context) {
	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateOpenGroups(ctx)
	}
}
