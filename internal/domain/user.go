package domain

import "time"

// User represents a student identity in the system.
//
// Exactly one authentication path is present: locally registered users carry
// a password hash, externally authenticated users carry an external subject id.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string // empty for externally authenticated users
	ExternalID        string // OAuth subject id; empty for local accounts
	Avatar            string
	College           string
	Phone             string
	IsAdmin           bool
	IsBanned          bool
	PaymentVerified   bool
	CommissionBalance float64
	CreatedAt         time.Time
}
