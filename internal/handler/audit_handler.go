package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/archmap/archmap-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuditHandler handles audit trail and version comparison requests
type AuditHandler struct {
	service service.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service service.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// GetTrail handles GET /api/v2/audit/trail
func (h *AuditHandler) GetTrail(c *gin.Context) {
	filter := repository.AuditFilter{
		ArtifactType: domain.ArtifactType(c.Query("artifact_type")),
		InitiativeID: c.Query("initiative_id"),
		UserID:       c.Query("user_id"),
		ChangeType:   c.Query("change_type"),
	}
	if raw := c.Query("artifact_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid artifact_id", err)
			return
		}
		filter.ArtifactID = id
	}
	if raw := c.Query("from_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "from_date must be RFC3339", err)
			return
		}
		filter.FromDate = &t
	}
	if raw := c.Query("to_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "to_date must be RFC3339", err)
			return
		}
		filter.ToDate = &t
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	trail, err := h.service.GetAuditTrail(filter)
	if err != nil {
		writeError(c, err)
		return
	}

	common.SuccessWithMeta(c, trail.Entries, &common.Meta{
		Limit: filter.Limit,
		Total: trail.Total,
	})
}

// CompareVersions handles GET /api/v2/audit/compare-versions
func (h *AuditHandler) CompareVersions(c *gin.Context) {
	t := domain.ArtifactType(c.Query("type"))
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil || id <= 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid artifact id", err)
		return
	}
	from, err := strconv.Atoi(c.Query("from"))
	if err != nil || from < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid from version", err)
		return
	}
	to, err := strconv.Atoi(c.Query("to"))
	if err != nil || to < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid to version", err)
		return
	}

	comparison, err := h.service.CompareVersions(t, id, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, comparison)
}

// GetHistory handles GET /api/v2/audit/history/:type/:id
func (h *AuditHandler) GetHistory(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}

	history, err := h.service.GetVersionHistory(t, id, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	common.SuccessWithMeta(c, history.Versions, &common.Meta{
		Limit: limit,
		Total: history.Total,
	})
}
