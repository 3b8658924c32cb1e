package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tontiva/tontine-backend/internal/models"
	"github.com/tontiva/tontine-backend/internal/services"
)

// TontineHandler handles tontine-related HTTP requests
type TontineHandler struct {
	tontineService services.TontineService
	userService    services.UserService
}

// NewTontineHandler creates a new TontineHandler
func NewTontineHandler(tontineService services.TontineService, userService services.UserService) *TontineHandler {
	return &TontineHandler{
		tontineService: tontineService,
		userService:    userService,
	}
}

// CreateTontine handles POST /tontines
func (h *TontineHandler) CreateTontine(c *gin.Context) {
	var req models.CreateTontineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, err := h.userService.GetProfile(c, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	tontine, err := h.tontineService.Create(c, actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tontine)
}

// GetTontines handles GET /tontines
func (h *TontineHandler) GetTontines(c *gin.Context) {
	tontines, err := h.tontineService.ListForUser(c, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tontines)
}

// GetTontineByID handles GET /tontines/:id
func (h *TontineHandler) GetTontineByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	tontine, err := h.tontineService.GetByID(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tontine)
}

// ChangeStatus handles PATCH /tontines/:id/status
func (h *TontineHandler) ChangeStatus(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tontine, err := h.tontineService.ChangeStatus(c, id, c.GetString("userID"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tontine)
}

// Reorder handles PUT /tontines/:id/order
func (h *TontineHandler) Reorder(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tontine, err := h.tontineService.Reorder(c, id, c.GetString("userID"), req.Order)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tontine)
}

// Join handles POST /tontines/join
func (h *TontineHandler) Join(c *gin.Context) {
	var req models.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor, err := h.userService.GetProfile(c, c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	participant, err := h.tontineService.Join(c, req.Code, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

// GetRoster handles GET /tontines/:id/participants
func (h *TontineHandler) GetRoster(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	participants, err := h.tontineService.Roster(c, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

// ResolveInvitation handles GET /invitations/:code
func (h *TontineHandler) ResolveInvitation(c *gin.Context) {
	preview, err := h.tontineService.ResolveInviteCode(c, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
