package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// GroupRepository is a PostgreSQL implementation of repository.GroupRepository.
//
// Members and chat are stored as JSONB documents on the group row, so every
// group mutation is a single-row write guarded by the version column.
type GroupRepository struct {
	q Querier
}

// NewGroupRepository creates a new PostgreSQL group repository.
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{q: db}
}

// memberRecord is the JSONB storage shape of a group member.
type memberRecord struct {
	UserID        string    `json:"user_id"`
	PaymentStatus string    `json:"payment_status"`
	JoinedAt      time.Time `json:"joined_at"`
}

// chatRecord is the JSONB storage shape of a chat message.
type chatRecord struct {
	SenderID  string    `json:"sender_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

const groupColumns = `id, ride_id, admin_id, members, chat, status, max_members, version, created_at`

// Create persists a new group.
func (r *GroupRepository) Create(ctx context.Context, group *domain.Group) error {
	members, chat, err := marshalGroup(group)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.q.ExecContext(ctx, query,
		group.ID,
		group.RideID,
		group.AdminID,
		members,
		chat,
		group.Status,
		group.MaxMembers,
		group.Version,
		group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a group by ID.
func (r *GroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByRideID retrieves the group linked to a ride.
func (r *GroupRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE ride_id = $1`
	return r.getOne(ctx, query, rideID)
}

// GetOpen retrieves all groups with status open.
func (r *GroupRepository) GetOpen(ctx context.Context) ([]*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE status = 'open' ORDER BY created_at DESC`
	return r.queryGroups(ctx, query)
}

// GetAll retrieves all groups.
func (r *GroupRepository) GetAll(ctx context.Context) ([]*domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY created_at DESC`
	return r.queryGroups(ctx, query)
}

// Update persists the group under optimistic concurrency control.
func (r *GroupRepository) Update(ctx context.Context, group *domain.Group) error {
	members, chat, err := marshalGroup(group)
	if err != nil {
		return err
	}

	query := `
		UPDATE groups
		SET admin_id = $1, members = $2, chat = $3, status = $4, max_members = $5, version = version + 1
		WHERE id = $6 AND version = $7
	`

	result, err := r.q.ExecContext(ctx, query,
		group.AdminID,
		members,
		chat,
		group.Status,
		group.MaxMembers,
		group.ID,
		group.Version,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.casFailure(ctx, group.ID)
	}

	group.Version++
	return nil
}

// Delete removes the group under optimistic concurrency control.
func (r *GroupRepository) Delete(ctx context.Context, id string, version int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM groups WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return r.casFailure(ctx, id)
	}
	return nil
}

// Count returns the total number of groups.
func (r *GroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups`).Scan(&count)
	return count, err
}

// casFailure distinguishes a missing row from a lost version race.
func (r *GroupRepository) casFailure(ctx context.Context, id string) error {
	var exists bool
	if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrVersionConflict
}

func (r *GroupRepository) getOne(ctx context.Context, query string, arg any) (*domain.Group, error) {
	group, err := scanGroup(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

func (r *GroupRepository) queryGroups(ctx context.Context, query string, args ...any) ([]*domain.Group, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*domain.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

type groupScanner interface {
	Scan(dest ...any) error
}

func scanGroup(s groupScanner) (*domain.Group, error) {
	var group domain.Group
	var members, chat []byte

	if err := s.Scan(
		&group.ID,
		&group.RideID,
		&group.AdminID,
		&members,
		&chat,
		&group.Status,
		&group.MaxMembers,
		&group.Version,
		&group.CreatedAt,
	); err != nil {
		return nil, err
	}

	var memberRecs []memberRecord
	if err := json.Unmarshal(members, &memberRecs); err != nil {
		return nil, err
	}
	for _, m := range memberRecs {
		group.Members = append(group.Members, domain.GroupMember{
			UserID:        m.UserID,
			PaymentStatus: domain.MemberPaymentStatus(m.PaymentStatus),
			JoinedAt:      m.JoinedAt,
		})
	}

	var chatRecs []chatRecord
	if err := json.Unmarshal(chat, &chatRecs); err != nil {
		return nil, err
	}
	for _, c := range chatRecs {
		group.Chat = append(group.Chat, domain.ChatMessage{
			SenderID:  c.SenderID,
			Message:   c.Message,
			Timestamp: c.Timestamp,
		})
	}

	return &group, nil
}

func marshalGroup(group *domain.Group) (members, chat []byte, err error) {
	memberRecs := make([]memberRecord, 0, len(group.Members))
	for _, m := range group.Members {
		memberRecs = append(memberRecs, memberRecord{
			UserID:        m.UserID,
			PaymentStatus: string(m.PaymentStatus),
			JoinedAt:      m.JoinedAt,
		})
	}

	chatRecs := make([]chatRecord, 0, len(group.Chat))
	for _, c := range group.Chat {
		chatRecs = append(chatRecs, chatRecord{
			SenderID:  c.SenderID,
			Message:   c.Message,
			Timestamp: c.Timestamp,
		})
	}

	members, err = json.Marshal(memberRecs)
	if err != nil {
		return nil, nil, err
	}
	chat, err = json.Marshal(chatRecs)
	if err != nil {
		return nil, nil, err
	}
	return members, chat, nil
}
