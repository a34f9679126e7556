package handler

import (
	"net/http"
	"strconv"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/middleware"
	"github.com/archmap/archmap-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ConflictHandler handles conflict inspection and resolution requests
type ConflictHandler struct {
	conflictSvc   service.ConflictService
	resolutionSvc service.ResolutionService
}

// NewConflictHandler creates a new ConflictHandler
func NewConflictHandler(conflictSvc service.ConflictService, resolutionSvc service.ResolutionService) *ConflictHandler {
	return &ConflictHandler{conflictSvc: conflictSvc, resolutionSvc: resolutionSvc}
}

// parseConflictID reads the :cid path param and checks the conflict belongs
// to the initiative in the route.
func (h *ConflictHandler) parseConflictID(c *gin.Context) (*domain.Conflict, bool) {
	id, err := strconv.ParseUint(c.Param("cid"), 10, 64)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid conflict id", err)
		return nil, false
	}
	conflict, err := h.conflictSvc.GetConflict(id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if conflict.InitiativeID != c.Param("id") {
		common.ErrorResponse(c, http.StatusNotFound, "conflict not found in this initiative", nil)
		return nil, false
	}
	return conflict, true
}

// List handles GET /api/v2/initiatives/:id/conflicts
func (h *ConflictHandler) List(c *gin.Context) {
	conflicts, err := h.conflictSvc.ListConflicts(c.Param("id"), c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	common.Success(c, conflicts)
}

// GetAnalysis handles GET /api/v2/initiatives/:id/conflicts/:cid/analysis
func (h *ConflictHandler) GetAnalysis(c *gin.Context) {
	conflict, ok := h.parseConflictID(c)
	if !ok {
		return
	}

	// Pending conflicts get a fresh analysis; resolved ones keep the stored
	// snapshot from detection time.
	analysis := conflict.ConflictDetails
	if conflict.ResolutionStatus == domain.ResolutionPending {
		fresh, err := h.conflictSvc.AnalyzeArtifact(conflict.ArtifactType, conflict.ArtifactID, conflict.InitiativeID)
		if err != nil {
			writeError(c, err)
			return
		}
		analysis = *fresh
	}

	common.Success(c, gin.H{
		"conflict": conflict,
		"analysis": analysis,
	})
}

// Resolve handles POST /api/v2/initiatives/:id/conflicts/:cid/resolve
func (h *ConflictHandler) Resolve(c *gin.Context) {
	conflict, ok := h.parseConflictID(c)
	if !ok {
		return
	}

	var req domain.ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "strategy is required", err)
		return
	}

	actor := middleware.GetUserID(c)
	resolved, err := h.resolutionSvc.Resolve(conflict.ID, actor, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.RecordConflictResolved(req.Strategy)
	common.Success(c, resolved)
}

// AutoResolve handles POST /api/v2/initiatives/:id/conflicts/:cid/auto-resolve
func (h *ConflictHandler) AutoResolve(c *gin.Context) {
	conflict, ok := h.parseConflictID(c)
	if !ok {
		return
	}

	actor := middleware.GetUserID(c)
	resolved, err := h.resolutionSvc.AutoResolve(conflict.ID, actor)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.RecordConflictResolved(domain.StrategyAutoMerge)
	common.Success(c, resolved)
}
