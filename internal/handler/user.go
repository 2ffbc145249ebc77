package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabshare/internal/domain"
	"cabshare/internal/middleware"
	"cabshare/internal/service"
)

// UserHandler handles HTTP requests for identities.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest is the HTTP request body for provisioning an identity
// from verified external claims.
type RegisterRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// UserResponse is the HTTP representation of an identity.
type UserResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Avatar            string  `json:"avatar,omitempty"`
	College           string  `json:"college,omitempty"`
	Phone             string  `json:"phone,omitempty"`
	IsAdmin           bool    `json:"is_admin"`
	PaymentVerified   bool    `json:"payment_verified"`
	CommissionBalance float64 `json:"commission_balance"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Avatar:            u.Avatar,
		College:           u.College,
		Phone:             u.Phone,
		IsAdmin:           u.IsAdmin,
		PaymentVerified:   u.PaymentVerified,
		CommissionBalance: u.CommissionBalance,
	}
}

// Register handles POST /v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterRequest{
		Email:      req.Email,
		Name:       req.Name,
		Picture:    req.Picture,
		ExternalID: req.ExternalID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toUserResponse(user))
}

// GetProfile handles GET /v1/users/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toUserResponse(profile))
}
