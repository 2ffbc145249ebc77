package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabshare/internal/domain"
	"cabshare/internal/middleware"
	"cabshare/internal/service"
)

// GroupHandler handles HTTP requests for fare-splitting groups.
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// GroupMemberResponse is one member entry in a group.
type GroupMemberResponse struct {
	UserID        string    `json:"user_id"`
	PaymentStatus string    `json:"payment_status"`
	JoinedAt      time.Time `json:"joined_at"`
}

// ChatMessageResponse is one chat entry in a group.
type ChatMessageResponse struct {
	SenderID  string    `json:"sender_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// GroupResponse is the HTTP representation of a group.
type GroupResponse struct {
	ID         string                `json:"id"`
	RideID     string                `json:"ride_id"`
	AdminID    string                `json:"admin_id"`
	Members    []GroupMemberResponse `json:"members"`
	Chat       []ChatMessageResponse `json:"chat"`
	Status     string                `json:"status"`
	MaxMembers int                   `json:"max_members"`
}

func toGroupResponse(g *domain.Group) GroupResponse {
	members := make([]GroupMemberResponse, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, GroupMemberResponse{
			UserID:        m.UserID,
			PaymentStatus: string(m.PaymentStatus),
			JoinedAt:      m.JoinedAt,
		})
	}

	chat := make([]ChatMessageResponse, 0, len(g.Chat))
	for _, m := range g.Chat {
		chat = append(chat, ChatMessageResponse{
			SenderID:  m.SenderID,
			Message:   m.Message,
			Timestamp: m.Timestamp,
		})
	}

	return GroupResponse{
		ID:         g.ID,
		RideID:     g.RideID,
		AdminID:    g.AdminID,
		Members:    members,
		Chat:       chat,
		Status:     string(g.Status),
		MaxMembers: g.MaxMembers,
	}
}

// GetGroup handles GET /v1/groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toGroupResponse(group))
}

// JoinGroup handles POST /v1/groups/:id/join
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)

	group, err := h.groupService.JoinGroup(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toGroupResponse(group))
}

// LeaveGroupResponse is the HTTP response for leaving a group.
type LeaveGroupResponse struct {
	Deleted bool           `json:"deleted"`
	Group   *GroupResponse `json:"group,omitempty"`
}

// LeaveGroup handles DELETE /v1/groups/:id/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	user := middleware.CurrentUser(c)

	result, err := h.groupService.LeaveGroup(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := LeaveGroupResponse{Deleted: result.Deleted}
	if !result.Deleted {
		group := toGroupResponse(result.Group)
		response.Group = &group
	}
	respondJSON(c, http.StatusOK, response)
}

// SendChatRequest is the HTTP request body for posting a chat message.
type SendChatRequest struct {
	Message string `json:"message"`
}

// SendChat handles POST /v1/groups/:id/chat
func (h *GroupHandler) SendChat(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req SendChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	entry, err := h.groupService.SendChatMessage(c.Request.Context(), c.Param("id"), user.ID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, ChatMessageResponse{
		SenderID:  entry.SenderID,
		Message:   entry.Message,
		Timestamp: entry.Timestamp,
	})
}
