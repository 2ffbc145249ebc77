package domain

import "time"

// MemberPaymentStatus represents a member's fare-share payment state.
type MemberPaymentStatus string

const (
	MemberPaymentPending MemberPaymentStatus = "pending"
	MemberPaymentPaid    MemberPaymentStatus = "paid"
	MemberPaymentFailed  MemberPaymentStatus = "failed"
)

// GroupStatus represents the current status of a group.
type GroupStatus string

const (
	GroupStatusOpen   GroupStatus = "open"
	GroupStatusClosed GroupStatus = "closed"
	GroupStatusFull   GroupStatus = "full"
)

// DefaultMaxMembers is the group capacity used when none is configured.
const DefaultMaxMembers = 4

// GroupMember is one member's entry in a group, kept in join order.
type GroupMember struct {
	UserID        string
	PaymentStatus MemberPaymentStatus
	JoinedAt      time.Time
}

// ChatMessage is one entry in a group's append-only chat log.
type ChatMessage struct {
	SenderID  string
	Message   string
	Timestamp time.Time
}

// Group is the fare-splitting unit binding a set of users to one ride.
// The admin is always one of the current members. Version supports
// optimistic concurrency on read-modify-write updates.
type Group struct {
	ID         string
	RideID     string
	Members    []GroupMember
	AdminID    string
	Chat       []ChatMessage
	Status     GroupStatus
	MaxMembers int
	Version    int64
	CreatedAt  time.Time
}

// MemberIndex returns the position of userID in the member list, or -1.
func (g *Group) MemberIndex(userID string) int {
	for i, m := range g.Members {
		if m.UserID == userID {
			return i
		}
	}
	return -1
}
