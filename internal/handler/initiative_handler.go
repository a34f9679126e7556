package handler

import (
	"net/http"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/middleware"
	"github.com/archmap/archmap-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// InitiativeHandler handles initiative lifecycle requests
type InitiativeHandler struct {
	service     service.InitiativeService
	conflictSvc service.ConflictService
}

// NewInitiativeHandler creates a new InitiativeHandler
func NewInitiativeHandler(service service.InitiativeService, conflictSvc service.ConflictService) *InitiativeHandler {
	return &InitiativeHandler{service: service, conflictSvc: conflictSvc}
}

// Create handles POST /api/v2/initiatives
func (h *InitiativeHandler) Create(c *gin.Context) {
	var req domain.CreateInitiativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "name is required", err)
		return
	}

	actor := middleware.GetUserID(c)
	initiative, err := h.service.Create(&req, actor)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Created(c, initiative)
}

// List handles GET /api/v2/initiatives
func (h *InitiativeHandler) List(c *gin.Context) {
	initiatives, err := h.service.List(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.Success(c, initiatives)
}

// Get handles GET /api/v2/initiatives/:id
func (h *InitiativeHandler) Get(c *gin.Context) {
	initiative, err := h.service.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.Success(c, initiative)
}

// ListParticipants handles GET /api/v2/initiatives/:id/participants
func (h *InitiativeHandler) ListParticipants(c *gin.Context) {
	participants, err := h.service.ListParticipants(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.Success(c, participants)
}

// DetectConflicts handles POST /api/v2/initiatives/:id/detect-conflicts
func (h *InitiativeHandler) DetectConflicts(c *gin.Context) {
	initiativeID := c.Param("id")
	if _, err := h.service.Get(initiativeID); err != nil {
		writeError(c, err)
		return
	}

	conflicts, err := h.conflictSvc.DetectConflicts(initiativeID)
	if err != nil {
		writeError(c, err)
		return
	}
	for _, conflict := range conflicts {
		middleware.RecordConflictDetected(string(conflict.ArtifactType))
	}

	common.Success(c, gin.H{
		"conflicts": conflicts,
		"count":     len(conflicts),
	})
}

// Baseline handles POST /api/v2/initiatives/:id/baseline
func (h *InitiativeHandler) Baseline(c *gin.Context) {
	actor := middleware.GetUserID(c)
	baselined, err := h.service.BaselineInitiative(c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, gin.H{
		"baselined": baselined,
		"count":     len(baselined),
	})
}
