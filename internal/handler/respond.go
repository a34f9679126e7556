package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP status codes and the standard
// error envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUnknownArtifactType),
		errors.Is(err, common.ErrInvalidInput),
		errors.Is(err, common.ErrInvalidStrategy):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, common.ErrVersionNotFound),
		errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrConflictNotFound),
		errors.Is(err, common.ErrInitiativeNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, common.ErrAlreadyLocked),
		errors.Is(err, common.ErrNoCheckout),
		errors.Is(err, common.ErrConflictAlreadyResolved),
		errors.Is(err, common.ErrUnresolvedConflicts):
		common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, common.ErrNotLockHolder),
		errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, common.ErrManualInterventionRequired),
		errors.Is(err, common.ErrIncompleteResolution):
		common.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "internal error", err)
	}
}

// parseArtifactParams reads :type and :id path params.
func parseArtifactParams(c *gin.Context) (domain.ArtifactType, int64, bool) {
	t := domain.ArtifactType(c.Param("type"))
	if !domain.ValidArtifactType(t) {
		common.ErrorResponse(c, http.StatusBadRequest, "unknown artifact type", nil)
		return "", 0, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid artifact id", err)
		return "", 0, false
	}
	return t, id, true
}
