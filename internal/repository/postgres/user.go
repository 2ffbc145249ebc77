package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

const userColumns = `id, name, email, password_hash, external_id, avatar, college, phone, is_admin, is_banned, payment_verified, commission_balance, created_at`

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		nullString(user.PasswordHash),
		nullString(user.ExternalID),
		nullString(user.Avatar),
		nullString(user.College),
		nullString(user.Phone),
		user.IsAdmin,
		user.IsBanned,
		user.PaymentVerified,
		user.CommissionBalance,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.q.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.q.QueryRowContext(ctx, query, email))
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile refreshes the mutable profile fields of an existing user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, avatar, externalID string) error {
	query := `UPDATE users SET name = $1, avatar = $2, external_id = $3 WHERE id = $4`
	result, err := r.q.ExecContext(ctx, query, name, nullString(avatar), nullString(externalID), id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetBanned flips the ban flag.
func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// SetPaymentVerified marks the user as having a verified payment.
func (r *UserRepository) SetPaymentVerified(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET payment_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// AddCommission atomically increments the user's commission balance.
func (r *UserRepository) AddCommission(ctx context.Context, id string, amount float64) error {
	result, err := r.q.ExecContext(ctx, `UPDATE users SET commission_balance = commission_balance + $1 WHERE id = $2`, amount, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

type userScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user, err := scanUserFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(rows *sql.Rows) (*domain.User, error) {
	return scanUserFrom(rows)
}

func scanUserFrom(s userScanner) (*domain.User, error) {
	var user domain.User
	var passwordHash, externalID, avatar, college, phone sql.NullString

	if err := s.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&passwordHash,
		&externalID,
		&avatar,
		&college,
		&phone,
		&user.IsAdmin,
		&user.IsBanned,
		&user.PaymentVerified,
		&user.CommissionBalance,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}

	user.PasswordHash = passwordHash.String
	user.ExternalID = externalID.String
	user.Avatar = avatar.String
	user.College = college.String
	user.Phone = phone.String
	return &user, nil
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
