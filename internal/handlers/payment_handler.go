package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/services"
)

// PaymentHandler handles ledger-related HTTP requests
type PaymentHandler struct {
	paymentService services.PaymentService
	userService    services.UserService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService services.PaymentService, userService services.UserService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		userService:    userService,
	}
}

// SubmitPayment handles POST /tontines/:id/payments
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	tontineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, err := h.userService.GetProfile(c, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.paymentService.Submit(c, tontineID, actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// ValidatePayment handles POST /payments/:id/validate
func (h *PaymentHandler) ValidatePayment(c *gin.Context) {
	paymentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Validate(c, paymentID, c.GetString("userID"), req.Decision)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetPayments handles GET /tontines/:id/payments
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	tontineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	status := models.PaymentStatus(c.Query("status"))
	payments, err := h.paymentService.ListByTontine(c, tontineID, c.GetString("userID"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// GetMyPayments handles GET /tontines/:id/payments/me
func (h *PaymentHandler) GetMyPayments(c *gin.Context) {
	tontineID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	payments, err := h.paymentService.ListByParticipant(c, tontineID, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
