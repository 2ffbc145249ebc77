package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabshare/internal/domain"
	"cabshare/internal/middleware"
	"cabshare/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// LocationPayload is the wire representation of a location.
type LocationPayload struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

func (p LocationPayload) toDomain() domain.Location {
	return domain.Location{Address: p.Address, Lat: p.Lat, Lng: p.Lng}
}

func toLocationPayload(l domain.Location) LocationPayload {
	return LocationPayload{Address: l.Address, Lat: l.Lat, Lng: l.Lng}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	Pickup LocationPayload `json:"pickup"`
	Drop   LocationPayload `json:"drop"`
	Time   string          `json:"time"` // RFC 3339
	Mode   string          `json:"mode"` // solo | sharing
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID           string          `json:"id"`
	CreatorID    string          `json:"creator_id"`
	Pickup       LocationPayload `json:"pickup"`
	Drop         LocationPayload `json:"drop"`
	Time         time.Time       `json:"time"`
	DistanceKm   float64         `json:"distance_km"`
	DurationMin  int             `json:"duration_min"`
	FareEstimate float64         `json:"fare_estimate"`
	Mode         string          `json:"mode"`
	GroupID      string          `json:"group_id,omitempty"`
	Status       string          `json:"status"`
}

// CreateRideResponse is the HTTP response for creating a ride.
type CreateRideResponse struct {
	Ride  RideResponse   `json:"ride"`
	Group *GroupResponse `json:"group,omitempty"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:           r.ID,
		CreatorID:    r.CreatorID,
		Pickup:       toLocationPayload(r.Pickup),
		Drop:         toLocationPayload(r.Drop),
		Time:         r.Time,
		DistanceKm:   r.DistanceKm,
		DurationMin:  r.DurationMin,
		FareEstimate: r.FareEstimate,
		Mode:         string(r.Mode),
		GroupID:      r.GroupID,
		Status:       string(r.Status),
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rideTime, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "time must be RFC 3339"})
		return
	}

	result, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		CreatorID: user.ID,
		Pickup:    req.Pickup.toDomain(),
		Drop:      req.Drop.toDomain(),
		Time:      rideTime,
		Mode:      domain.RideMode(req.Mode),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := CreateRideResponse{Ride: toRideResponse(result.Ride)}
	if result.Group != nil {
		group := toGroupResponse(result.Group)
		response.Group = &group
	}

	respondJSON(c, http.StatusCreated, response)
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetMyRides handles GET /v1/rides/myrides
func (h *RideHandler) GetMyRides(c *gin.Context) {
	user := middleware.CurrentUser(c)

	rides, err := h.rideService.GetMyRides(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// GroupSuggestionResponse is one open group offered for sharing.
type GroupSuggestionResponse struct {
	GroupID     string `json:"group_id"`
	RideID      string `json:"ride_id"`
	AdminID     string `json:"admin_id"`
	MemberCount int    `json:"member_count"`
	MaxMembers  int    `json:"max_members"`
}

// SuggestGroups handles POST /v1/rides/suggest-groups
func (h *RideHandler) SuggestGroups(c *gin.Context) {
	user := middleware.CurrentUser(c)

	suggestions, err := h.rideService.SuggestGroups(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]GroupSuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		response = append(response, GroupSuggestionResponse{
			GroupID:     s.GroupID,
			RideID:      s.RideID,
			AdminID:     s.AdminID,
			MemberCount: s.MemberCount,
			MaxMembers:  s.MaxMembers,
		})
	}
	respondJSON(c, http.StatusOK, response)
}
