package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrVersionConflict is returned when an optimistic-concurrency update
	// loses the race against a concurrent writer.
	ErrVersionConflict = errors.New("entity was modified concurrently")
)
