package tests

import (
	"context"
	"strings"
	"sync"
	"testing"

	"cabshare/internal/domain"
	"cabshare/internal/service"
)

func seedGroup(repo *MockGroupRepository, memberIDs ...string) *domain.Group {
	members := make([]domain.GroupMember, 0, len(memberIDs))
	for _, id := range memberIDs {
		members = append(members, domain.GroupMember{
			UserID:        id,
			PaymentStatus: domain.MemberPaymentPending,
		})
	}
	group := &domain.Group{
		ID:         "group-1",
		RideID:     "ride-1",
		AdminID:    memberIDs[0],
		Members:    members,
		Status:     domain.GroupStatusOpen,
		MaxMembers: 4,
	}
	repo.AddGroup(group)
	return group
}

// ──────────────────────────────────────────────
// 1. JOIN
// ──────────────────────────────────────────────

func TestJoinGroup_Succeeds(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	group, err := groupService.JoinGroup(context.Background(), "group-1", "user-2")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(group.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(group.Members))
	}
	joined := group.Members[1]
	if joined.UserID != "user-2" {
		t.Errorf("expected user-2 appended in join order, got %s", joined.UserID)
	}
	if joined.PaymentStatus != domain.MemberPaymentPending {
		t.Errorf("expected pending payment status, got %s", joined.PaymentStatus)
	}
	if group.AdminID != "user-1" {
		t.Errorf("expected admin unchanged, got %s", group.AdminID)
	}
}

func TestJoinGroup_AlreadyMember_Fails(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	_, err := groupService.JoinGroup(context.Background(), "group-1", "user-2")
	if err != service.ErrAlreadyMember {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}

	if got := len(groupRepo.GetGroup("group-1").Members); got != 2 {
		t.Errorf("expected membership unchanged, got %d members", got)
	}
}

func TestJoinGroup_AtCapacity_Fails(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2", "user-3", "user-4")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	_, err := groupService.JoinGroup(context.Background(), "group-1", "user-5")
	if err != service.ErrGroupFull {
		t.Errorf("expected ErrGroupFull, got %v", err)
	}
}

func TestJoinGroup_ReachingCapacity_SetsFull(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2", "user-3")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	group, err := groupService.JoinGroup(context.Background(), "group-1", "user-4")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if group.Status != domain.GroupStatusFull {
		t.Errorf("expected status full, got %s", group.Status)
	}
}

func TestJoinGroup_ConcurrentAtLastSlot_OneWins(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2", "user-3")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	const contenders = 8
	var wg sync.WaitGroup
	errs := make([]error, contenders)

	for i := 0; i < contenders; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			userID := "contender-" + string(rune('a'+i))
			_, errs[i] = groupService.JoinGroup(context.Background(), "group-1", userID)
		}()
	}
	wg.Wait()

	var wins, fulls int
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case service.ErrGroupFull:
			fulls++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if wins != 1 {
		t.Errorf("expected exactly 1 successful join, got %d", wins)
	}
	if fulls != contenders-1 {
		t.Errorf("expected %d ErrGroupFull, got %d", contenders-1, fulls)
	}

	final := groupRepo.GetGroup("group-1")
	if len(final.Members) != 4 {
		t.Errorf("expected 4 members, got %d", len(final.Members))
	}
	if final.Status != domain.GroupStatusFull {
		t.Errorf("expected status full, got %s", final.Status)
	}
}

// ──────────────────────────────────────────────
// 2. LEAVE
// ──────────────────────────────────────────────

func TestLeaveGroup_NotMember_Fails(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	_, err := groupService.LeaveGroup(context.Background(), "group-1", "stranger")
	if err != service.ErrNotMember {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
}

func TestLeaveGroup_AdminLeaves_SuccessorByJoinOrder(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2", "user-3")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	result, err := groupService.LeaveGroup(context.Background(), "group-1", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Deleted {
		t.Fatal("expected group to survive")
	}
	if result.Group.AdminID != "user-2" {
		t.Errorf("expected earliest remaining member as admin, got %s", result.Group.AdminID)
	}
	if len(result.Group.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(result.Group.Members))
	}
}

func TestLeaveGroup_FullGroup_ReopensBelowCapacity(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	group := seedGroup(groupRepo, "user-1", "user-2", "user-3", "user-4")
	group.Status = domain.GroupStatusFull
	groupRepo.AddGroup(group)
	groupService := service.NewGroupService(groupRepo, nil, nil)

	result, err := groupService.LeaveGroup(context.Background(), "group-1", "user-4")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.Group.Status != domain.GroupStatusOpen {
		t.Errorf("expected status open, got %s", result.Group.Status)
	}
}

func TestLeaveGroup_LastMember_DeletesGroup(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	result, err := groupService.LeaveGroup(context.Background(), "group-1", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !result.Deleted {
		t.Error("expected deleted flag")
	}
	if groupRepo.GetGroup("group-1") != nil {
		t.Error("expected group to be gone")
	}
}

func TestLeaveGroup_LastTwoConcurrently_GroupDeletedOnce(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	var wg sync.WaitGroup
	results := make([]*service.LeaveGroupResult, 2)
	errs := make([]error, 2)

	for i, userID := range []string{"user-1", "user-2"} {
		i, userID := i, userID
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = groupService.LeaveGroup(context.Background(), "group-1", userID)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("leave %d failed: %v", i, err)
		}
	}

	var deletions int
	for _, r := range results {
		if r.Deleted {
			deletions++
		}
	}
	if deletions != 1 {
		t.Errorf("expected exactly one deletion, got %d", deletions)
	}
	if groupRepo.GetGroup("group-1") != nil {
		t.Error("expected group to be gone")
	}
}

// ──────────────────────────────────────────────
// 3. CHAT
// ──────────────────────────────────────────────

func TestSendChat_AppendsInOrder(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1", "user-2")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	for _, msg := range []string{"first", "second"} {
		if _, err := groupService.SendChatMessage(context.Background(), "group-1", "user-1", msg); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
	}

	chat := groupRepo.GetGroup("group-1").Chat
	if len(chat) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(chat))
	}
	if chat[0].Message != "first" || chat[1].Message != "second" {
		t.Errorf("expected append order preserved, got %+v", chat)
	}
	if chat[0].SenderID != "user-1" {
		t.Errorf("expected sender user-1, got %s", chat[0].SenderID)
	}
}

func TestSendChat_NonMember_Fails(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	seedGroup(groupRepo, "user-1")
	groupService := service.NewGroupService(groupRepo, nil, nil)

	_, err := groupService.SendChatMessage(context.Background(), "group-1", "stranger", "hello")
	if err != service.ErrNotMember {
		t.Errorf("expected ErrNotMember, got %v", err)
	}
	if got := len(groupRepo.GetGroup("group-1").Chat); got != 0 {
		t.Errorf("expected no message appended, got %d", got)
	}
}

func TestSendChat_MessageBounds(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		message string
		wantErr error
	}{
		{name: "empty", message: "", wantErr: service.ErrMessageRequired},
		{name: "whitespace only", message: "   \t ", wantErr: service.ErrMessageRequired},
		{name: "one char", message: "k", wantErr: nil},
		{name: "exactly 500", message: strings.Repeat("a", 500), wantErr: nil},
		{name: "501", message: strings.Repeat("a", 501), wantErr: service.ErrMessageTooLong},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			groupRepo := NewMockGroupRepository()
			seedGroup(groupRepo, "user-1")
			groupService := service.NewGroupService(groupRepo, nil, nil)

			_, err := groupService.SendChatMessage(context.Background(), "group-1", "user-1", tc.message)
			if err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestSendChat_ValidationBeforeExistence(t *testing.T) {
	t.Parallel()

	groupRepo := NewMockGroupRepository()
	groupService := service.NewGroupService(groupRepo, nil, nil)

	// An invalid message on a nonexistent group reports the validation
	// error, not not-found.
	_, err := groupService.SendChatMessage(context.Background(), "no-such-group", "user-1", "  ")
	if err != service.ErrMessageRequired {
		t.Errorf("expected ErrMessageRequired, got %v", err)
	}
}
