package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

const rideColumns = `id, creator_id, pickup_address, pickup_lat, pickup_lng, drop_address, drop_lat, drop_lng, ride_time, distance_km, duration_min, fare_estimate, mode, group_id, status, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (` + rideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		ride.ID,
		ride.CreatorID,
		ride.Pickup.Address,
		ride.Pickup.Lat,
		ride.Pickup.Lng,
		ride.Drop.Address,
		ride.Drop.Lat,
		ride.Drop.Lng,
		ride.Time,
		ride.DistanceKm,
		ride.DurationMin,
		ride.FareEstimate,
		ride.Mode,
		nullString(ride.GroupID),
		ride.Status,
		ride.CreatedAt,
	)
	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetByCreatorID retrieves a user's rides, newest first.
func (r *RideRepository) GetByCreatorID(ctx context.Context, creatorID string) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE creator_id = $1 ORDER BY created_at DESC`
	return r.queryRides(ctx, query, creatorID)
}

// GetRecent retrieves the most recently created rides.
func (r *RideRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)
	return r.queryRides(ctx, query)
}

// GetAll retrieves all rides.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC`
	return r.queryRides(ctx, query)
}

// SetGroupID back-fills the group link on a sharing ride.
func (r *RideRepository) SetGroupID(ctx context.Context, rideID, groupID string) error {
	query := `UPDATE rides SET group_id = $1 WHERE id = $2 AND (group_id IS NULL OR group_id = $1)`

	result, err := r.q.ExecContext(ctx, query, groupID, rideID)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Count returns the total number of rides.
func (r *RideRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM rides`).Scan(&count)
	return count, err
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

type rideScanner interface {
	Scan(dest ...any) error
}

func scanRide(s rideScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var groupID sql.NullString

	if err := s.Scan(
		&ride.ID,
		&ride.CreatorID,
		&ride.Pickup.Address,
		&ride.Pickup.Lat,
		&ride.Pickup.Lng,
		&ride.Drop.Address,
		&ride.Drop.Lat,
		&ride.Drop.Lng,
		&ride.Time,
		&ride.DistanceKm,
		&ride.DurationMin,
		&ride.FareEstimate,
		&ride.Mode,
		&groupID,
		&ride.Status,
		&ride.CreatedAt,
	); err != nil {
		return nil, err
	}

	ride.GroupID = groupID.String
	return &ride, nil
}
