package domain

import "time"

// Location is a named point on the map.
type Location struct {
	Address string
	Lat     float64
	Lng     float64
}

// RideMode represents how a ride is shared.
type RideMode string

const (
	RideModeSolo    RideMode = "solo"
	RideModeSharing RideMode = "sharing"
)

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusConfirmed RideStatus = "confirmed"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// Ride represents a single trip request.
// A ride has a linked group if and only if its mode is sharing.
type Ride struct {
	ID           string
	CreatorID    string
	Pickup       Location
	Drop         Location
	Time         time.Time
	DistanceKm   float64
	DurationMin  int
	FareEstimate float64
	Mode         RideMode
	GroupID      string // set once after group creation for sharing rides
	Status       RideStatus
	CreatedAt    time.Time
}
