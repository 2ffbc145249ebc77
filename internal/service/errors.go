package service

import "errors"

var (
	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidGroupID is returned when a group ID is missing or malformed.
	ErrInvalidGroupID = errors.New("invalid group id")

	// ErrInvalidEmail is returned when a registration email is missing or malformed.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidName is returned when a registration name is empty.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidPickupLocation is returned when the pickup location is incomplete.
	ErrInvalidPickupLocation = errors.New("invalid pickup location")

	// ErrInvalidDropLocation is returned when the drop location is incomplete.
	ErrInvalidDropLocation = errors.New("invalid drop location")

	// ErrInvalidRideTime is returned when the ride time is missing or unparseable.
	ErrInvalidRideTime = errors.New("invalid ride time")

	// ErrInvalidRideMode is returned when the mode is neither solo nor sharing.
	ErrInvalidRideMode = errors.New("mode must be either solo or sharing")

	// ErrMessageRequired is returned when a chat message is missing or blank.
	ErrMessageRequired = errors.New("message is required")

	// ErrMessageTooLong is returned when a chat message exceeds 500 characters.
	ErrMessageTooLong = errors.New("message cannot exceed 500 characters")

	// ErrAlreadyMember is returned when the requester already belongs to the group.
	ErrAlreadyMember = errors.New("already a member of this group")

	// ErrNotMember is returned when the requester does not belong to the group.
	ErrNotMember = errors.New("not a member of this group")

	// ErrGroupFull is returned when a join would exceed the group capacity.
	ErrGroupFull = errors.New("group is full")

	// ErrInvalidAmount is returned when a payment amount is not positive.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentDetails is returned when verification fields are missing.
	ErrInvalidPaymentDetails = errors.New("all payment details are required")

	// ErrVerificationFailed is returned when the gateway signature does not
	// match. The message deliberately carries no detail about which part of
	// the check failed.
	ErrVerificationFailed = errors.New("payment verification failed")

	// ErrGatewayUnavailable is returned when the payment gateway cannot be
	// reached or errors; callers may retry with backoff.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidTrackingID is returned when a tracking token is empty.
	ErrInvalidTrackingID = errors.New("invalid tracking id")

	// ErrInvalidFare is returned when a submitted fare is not positive.
	ErrInvalidFare = errors.New("invalid fare amount")

	// ErrNotTrackingOwner is returned when the requester does not own the
	// tracking record.
	ErrNotTrackingOwner = errors.New("not authorized for this tracking record")

	// ErrProofAlreadySubmitted is returned when proof is resubmitted for a
	// record that already completed; commission is credited at most once.
	ErrProofAlreadySubmitted = errors.New("proof already submitted for this tracking record")
)
