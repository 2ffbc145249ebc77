package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabshare/internal/domain"
	"cabshare/internal/middleware"
	"cabshare/internal/service"
)

// TrackingHandler handles HTTP requests for external-ride tracking links.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// CreateLinkRequest is the HTTP request body for minting a tracking link.
type CreateLinkRequest struct {
	Pickup LocationPayload `json:"pickup"`
	Drop   LocationPayload `json:"drop"`
}

// CreateLinkResponse is the HTTP response for minting a tracking link.
type CreateLinkResponse struct {
	TrackingID  string `json:"tracking_id"`
	TrackingURL string `json:"tracking_url"`
	DeepLink    string `json:"deep_link"`
}

// CreateLink handles POST /v1/external/create-link
func (h *TrackingHandler) CreateLink(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.trackingService.CreateLink(c.Request.Context(), service.CreateLinkRequest{
		UserID: user.ID,
		Pickup: req.Pickup.toDomain(),
		Drop:   req.Drop.toDomain(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateLinkResponse{
		TrackingID:  result.TrackingID,
		TrackingURL: result.TrackingURL,
		DeepLink:    result.DeepLink,
	})
}

// Track handles GET /v1/external/track/:token
func (h *TrackingHandler) Track(c *gin.Context) {
	deepLink, err := h.trackingService.Traverse(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, deepLink)
}

// UploadProofRequest is the HTTP request body for submitting proof of fare.
type UploadProofRequest struct {
	TrackingID string  `json:"tracking_id"`
	ActualFare float64 `json:"actual_fare"`
	ProofImage string  `json:"proof_image,omitempty"`
}

// TrackingResponse is the HTTP representation of a tracking record.
type TrackingResponse struct {
	TrackingID       string          `json:"tracking_id"`
	Pickup           LocationPayload `json:"pickup"`
	Drop             LocationPayload `json:"drop"`
	DeepLink         string          `json:"deep_link"`
	ClickCount       int             `json:"click_count"`
	ActualFare       float64         `json:"actual_fare,omitempty"`
	CommissionEarned float64         `json:"commission_earned,omitempty"`
	CommissionRate   float64         `json:"commission_rate"`
	Status           string          `json:"status"`
	ProofUploaded    bool            `json:"proof_uploaded"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toTrackingResponse(t *domain.RideTracking) TrackingResponse {
	return TrackingResponse{
		TrackingID:       t.TrackingID,
		Pickup:           toLocationPayload(t.Pickup),
		Drop:             toLocationPayload(t.Drop),
		DeepLink:         t.DeepLink,
		ClickCount:       t.ClickCount,
		ActualFare:       t.ActualFare,
		CommissionEarned: t.CommissionEarned,
		CommissionRate:   t.CommissionRate,
		Status:           string(t.Status),
		ProofUploaded:    t.ProofUploaded,
		CreatedAt:        t.CreatedAt,
	}
}

// UploadProof handles POST /v1/external/upload-proof
func (h *TrackingHandler) UploadProof(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req UploadProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tracking, err := h.trackingService.SubmitProof(c.Request.Context(), service.SubmitProofRequest{
		UserID:     user.ID,
		TrackingID: req.TrackingID,
		ActualFare: req.ActualFare,
		ProofImage: req.ProofImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTrackingResponse(tracking))
}

// GetMyTracking handles GET /v1/external/my-tracking
func (h *TrackingHandler) GetMyTracking(c *gin.Context) {
	user := middleware.CurrentUser(c)

	records, err := h.trackingService.GetMyRecords(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TrackingResponse, 0, len(records))
	for _, t := range records {
		response = append(response, toTrackingResponse(t))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetTracking handles GET /v1/external/tracking/:token
func (h *TrackingHandler) GetTracking(c *gin.Context) {
	user := middleware.CurrentUser(c)

	tracking, err := h.trackingService.GetRecord(c.Request.Context(), user.ID, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTrackingResponse(tracking))
}
