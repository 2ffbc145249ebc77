package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabshare/internal/middleware"
	"cabshare/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	GroupID string  `json:"group_id"`
	Amount  float64 `json:"amount"`
}

// InitiatePaymentResponse is the HTTP response for initiating a payment.
type InitiatePaymentResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// InitiatePayment handles POST /v1/payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.InitiatePayment(c.Request.Context(), service.InitiatePaymentRequest{
		UserID:  user.ID,
		GroupID: req.GroupID,
		Amount:  req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, InitiatePaymentResponse{
		OrderID:  result.OrderID,
		Amount:   result.Amount,
		Currency: result.Currency,
	})
}

// VerifyPaymentRequest is the HTTP request body carrying the gateway
// callback identifiers.
type VerifyPaymentRequest struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
	GroupID   string `json:"group_id"`
}

// VerifyPayment handles POST /v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.paymentService.VerifyPayment(c.Request.Context(), service.VerifyPaymentRequest{
		UserID:           user.ID,
		GatewayPaymentID: req.PaymentID,
		GatewayOrderID:   req.OrderID,
		Signature:        req.Signature,
		GroupID:          req.GroupID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"verified": true})
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	UserID           string  `json:"user_id"`
	GroupID          string  `json:"group_id"`
	Amount           float64 `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	GatewayPaymentID string  `json:"gateway_payment_id,omitempty"`
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	payment, err := h.paymentService.GetPayment(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PaymentResponse{
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		UserID:           payment.UserID,
		GroupID:          payment.GroupID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Status:           string(payment.Status),
		GatewayPaymentID: payment.GatewayPaymentID,
	})
}
