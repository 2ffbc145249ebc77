package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// TrackingRepository is a PostgreSQL implementation of repository.TrackingRepository.
type TrackingRepository struct {
	q Querier
}

// NewTrackingRepository creates a new PostgreSQL tracking repository.
func NewTrackingRepository(db *sql.DB) *TrackingRepository {
	return &TrackingRepository{q: db}
}

const trackingColumns = `id, user_id, tracking_id, deep_link, pickup_address, pickup_lat, pickup_lng, drop_address, drop_lat, drop_lng, click_count, estimated_fare, actual_fare, commission_earned, commission_rate, status, proof_uploaded, proof_image, created_at`

// Create persists a new tracking record.
func (r *TrackingRepository) Create(ctx context.Context, tracking *domain.RideTracking) error {
	query := `
		INSERT INTO ride_tracking (` + trackingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.q.ExecContext(ctx, query,
		tracking.ID,
		tracking.UserID,
		tracking.TrackingID,
		tracking.DeepLink,
		tracking.Pickup.Address,
		tracking.Pickup.Lat,
		tracking.Pickup.Lng,
		tracking.Drop.Address,
		tracking.Drop.Lat,
		tracking.Drop.Lng,
		tracking.ClickCount,
		tracking.EstimatedFare,
		tracking.ActualFare,
		tracking.CommissionEarned,
		tracking.CommissionRate,
		tracking.Status,
		tracking.ProofUploaded,
		nullString(tracking.ProofImage),
		tracking.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrAlreadyExists
	}
	return err
}

// GetByTrackingID retrieves a record by its opaque token.
func (r *TrackingRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.RideTracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM ride_tracking WHERE tracking_id = $1`

	tracking, err := scanTracking(r.q.QueryRowContext(ctx, query, trackingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return tracking, nil
}

// GetByUserID retrieves a user's tracking records, newest first.
func (r *TrackingRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.RideTracking, error) {
	query := `SELECT ` + trackingColumns + ` FROM ride_tracking WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RideTracking
	for rows.Next() {
		tracking, err := scanTracking(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, tracking)
	}
	return records, rows.Err()
}

// RegisterClick atomically increments the click count and advances the
// status from created to clicked.
func (r *TrackingRepository) RegisterClick(ctx context.Context, trackingID string) (*domain.RideTracking, error) {
	query := `
		UPDATE ride_tracking
		SET click_count = click_count + 1,
		    status = CASE WHEN status = 'created' THEN 'clicked' ELSE status END
		WHERE tracking_id = $1
		RETURNING ` + trackingColumns

	tracking, err := scanTracking(r.q.QueryRowContext(ctx, query, trackingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return tracking, nil
}

// CompleteProof attaches the proof and commission while the record has not
// yet reached completed. A record already completed matches no row.
func (r *TrackingRepository) CompleteProof(ctx context.Context, trackingID string, actualFare, commission float64, proofImage string) (*domain.RideTracking, error) {
	query := `
		UPDATE ride_tracking
		SET actual_fare = $1, commission_earned = $2, proof_uploaded = TRUE, proof_image = $3, status = 'completed'
		WHERE tracking_id = $4 AND status IN ('created', 'clicked')
		RETURNING ` + trackingColumns

	tracking, err := scanTracking(r.q.QueryRowContext(ctx, query, actualFare, commission, nullString(proofImage), trackingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return tracking, nil
}

type trackingScanner interface {
	Scan(dest ...any) error
}

func scanTracking(s trackingScanner) (*domain.RideTracking, error) {
	var tracking domain.RideTracking
	var proofImage sql.NullString

	if err := s.Scan(
		&tracking.ID,
		&tracking.UserID,
		&tracking.TrackingID,
		&tracking.DeepLink,
		&tracking.Pickup.Address,
		&tracking.Pickup.Lat,
		&tracking.Pickup.Lng,
		&tracking.Drop.Address,
		&tracking.Drop.Lat,
		&tracking.Drop.Lng,
		&tracking.ClickCount,
		&tracking.EstimatedFare,
		&tracking.ActualFare,
		&tracking.CommissionEarned,
		&tracking.CommissionRate,
		&tracking.Status,
		&tracking.ProofUploaded,
		&proofImage,
		&tracking.CreatedAt,
	); err != nil {
		return nil, err
	}

	tracking.ProofImage = proofImage.String
	return &tracking, nil
}
