package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cabshare/internal/repository"
	"cabshare/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation and membership errors - Bad Request
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidGroupID),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidPickupLocation),
		errors.Is(err, service.ErrInvalidDropLocation),
		errors.Is(err, service.ErrInvalidRideTime),
		errors.Is(err, service.ErrInvalidRideMode),
		errors.Is(err, service.ErrMessageRequired),
		errors.Is(err, service.ErrMessageTooLong),
		errors.Is(err, service.ErrAlreadyMember),
		errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrGroupFull),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidPaymentDetails),
		errors.Is(err, service.ErrInvalidTrackingID),
		errors.Is(err, service.ErrInvalidFare):
		return http.StatusBadRequest

	// Signature failures never reveal which check failed.
	case errors.Is(err, service.ErrVerificationFailed):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotTrackingOwner):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrProofAlreadySubmitted),
		errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict

	// Upstream gateway failures
	case errors.Is(err, service.ErrGatewayUnavailable):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
