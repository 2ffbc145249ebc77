package domain

import "time"

// TrackingStatus represents where an external-ride handoff is in its lifecycle.
type TrackingStatus string

const (
	TrackingStatusCreated        TrackingStatus = "created"
	TrackingStatusClicked        TrackingStatus = "clicked"
	TrackingStatusCompleted      TrackingStatus = "completed"
	TrackingStatusCommissionPaid TrackingStatus = "commission_paid"
)

// DefaultCommissionRate is the referral commission percentage applied to
// tracking records at creation.
const DefaultCommissionRate = 3.0

// RideTracking tracks a deep-link handoff to an external ride-hailing app:
// click counting, proof-of-fare submission and commission computation.
// TrackingID is an unguessable opaque token.
type RideTracking struct {
	ID               string
	UserID           string
	TrackingID       string
	DeepLink         string
	Pickup           Location
	Drop             Location
	ClickCount       int
	EstimatedFare    float64
	ActualFare       float64
	CommissionEarned float64
	CommissionRate   float64 // percentage, fixed at creation
	Status           TrackingStatus
	ProofUploaded    bool
	ProofImage       string
	CreatedAt        time.Time
}
