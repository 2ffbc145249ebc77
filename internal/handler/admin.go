package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabshare/internal/service"
)

// AdminHandler handles the admin dashboard and moderation endpoints.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetStats handles GET /v1/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, stats)
}

// ListUsers handles GET /v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, toUserResponse(u))
	}
	respondJSON(c, http.StatusOK, response)
}

// ListRides handles GET /v1/admin/rides
func (h *AdminHandler) ListRides(c *gin.Context) {
	rides, err := h.adminService.ListRides(c.Request.Context())
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

// ListGroups handles GET /v1/admin/groups
func (h *AdminHandler) ListGroups(c *gin.Context) {
	groups, err := h.adminService.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		response = append(response, toGroupResponse(g))
	}
	respondJSON(c, http.StatusOK, response)
}

// ListPayments handles GET /v1/admin/payments
func (h *AdminHandler) ListPayments(c *gin.Context) {
	payments, err := h.adminService.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, PaymentResponse{
			ID:               p.ID,
			OrderID:          p.OrderID,
			UserID:           p.UserID,
			GroupID:          p.GroupID,
			Amount:           p.Amount,
			Currency:         p.Currency,
			Status:           string(p.Status),
			GatewayPaymentID: p.GatewayPaymentID,
		})
	}
	respondJSON(c, http.StatusOK, response)
}

// BanUser handles PUT /v1/admin/users/:id/ban
func (h *AdminHandler) BanUser(c *gin.Context) {
	if err := h.adminService.BanUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"banned": true})
}

// UnbanUser handles PUT /v1/admin/users/:id/unban
func (h *AdminHandler) UnbanUser(c *gin.Context) {
	if err := h.adminService.UnbanUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"banned": false})
}
