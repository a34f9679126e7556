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

// VersionControlHandler handles checkout, checkin and lock requests
type VersionControlHandler struct {
	service service.VersionControlService
}

// NewVersionControlHandler creates a new VersionControlHandler
func NewVersionControlHandler(service service.VersionControlService) *VersionControlHandler {
	return &VersionControlHandler{service: service}
}

// Checkout handles POST /api/v2/version-control/:type/:id/checkout
func (h *VersionControlHandler) Checkout(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "initiative_id is required", err)
		return
	}

	actor := middleware.GetUserID(c)
	draft, err := h.service.Checkout(t, id, req.InitiativeID, actor, req.BaselineData)
	if err != nil {
		middleware.RecordCheckout(string(t), "rejected")
		writeError(c, err)
		return
	}

	middleware.RecordCheckout(string(t), "granted")
	common.Created(c, draft)
}

// Checkin handles POST /api/v2/version-control/:type/:id/checkin
func (h *VersionControlHandler) Checkin(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	var req domain.CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "initiative_id and data are required", err)
		return
	}

	actor := middleware.GetUserID(c)
	version, err := h.service.Checkin(t, id, req.InitiativeID, actor, req.Data, req.ChangeReason)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Created(c, version)
}

// CancelCheckout handles POST /api/v2/version-control/cancel-checkout
func (h *VersionControlHandler) CancelCheckout(c *gin.Context) {
	var req domain.CancelCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "artifact_type, artifact_id and initiative_id are required", err)
		return
	}
	if !domain.ValidArtifactType(req.ArtifactType) {
		common.ErrorResponse(c, http.StatusBadRequest, "unknown artifact type", nil)
		return
	}

	actor := middleware.GetUserID(c)
	if err := h.service.CancelCheckout(req.ArtifactType, req.ArtifactID, req.InitiativeID, actor); err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, gin.H{"cancelled": true})
}

// ListLocks handles GET /api/v2/version-control/locks
func (h *VersionControlHandler) ListLocks(c *gin.Context) {
	initiativeID := c.Query("initiative_id")
	if initiativeID == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "initiative_id is required", nil)
		return
	}

	locks, err := h.service.ListLocks(c.Request.Context(), initiativeID)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, locks)
}

// ListVersions handles GET /api/v2/version-control/:type/:id/versions
func (h *VersionControlHandler) ListVersions(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	versions, err := h.service.ListVersions(t, id, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	common.SuccessWithMeta(c, versions, &common.Meta{
		Limit: limit,
		Total: int64(len(versions)),
	})
}

// BaselineHistory handles GET /api/v2/version-control/:type/:id/baseline-history
func (h *VersionControlHandler) BaselineHistory(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	history, err := h.service.BaselineHistory(c.Request.Context(), t, id)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, history)
}
