package handler

import (
	"net/http"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/gin-gonic/gin"
)

var dependencyTypes = map[string]bool{
	domain.DependencyRequires:  true,
	domain.DependencyImpacts:   true,
	domain.DependencyRelatedTo: true,
}

// DependencyHandler handles dependency edge requests
type DependencyHandler struct {
	dependencyRepo repository.DependencyRepository
	versionRepo    repository.VersionRepository
}

// NewDependencyHandler creates a new DependencyHandler
func NewDependencyHandler(dependencyRepo repository.DependencyRepository, versionRepo repository.VersionRepository) *DependencyHandler {
	return &DependencyHandler{dependencyRepo: dependencyRepo, versionRepo: versionRepo}
}

// List handles GET /api/v2/dependencies/:type/:id
// Returns the dependency edges touching the artifact's current baseline.
func (h *DependencyHandler) List(c *gin.Context) {
	t, id, ok := parseArtifactParams(c)
	if !ok {
		return
	}

	baseline, err := h.versionRepo.FindBaseline(t, id)
	if err != nil {
		writeError(c, err)
		return
	}

	deps, err := h.dependencyRepo.ListForVersion(baseline.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	common.Success(c, gin.H{
		"baseline_version_id": baseline.ID,
		"dependencies":        deps,
	})
}

// Create handles POST /api/v2/dependencies
// Records an edge between the current baselines of two artifacts.
func (h *DependencyHandler) Create(c *gin.Context) {
	var req domain.CreateDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "both artifacts and dependency_type are required", err)
		return
	}
	if !domain.ValidArtifactType(req.FromArtifactType) || !domain.ValidArtifactType(req.ToArtifactType) {
		common.ErrorResponse(c, http.StatusBadRequest, "unknown artifact type", nil)
		return
	}
	if !dependencyTypes[req.DependencyType] {
		common.ErrorResponse(c, http.StatusBadRequest, "unknown dependency type", nil)
		return
	}

	from, err := h.versionRepo.FindBaseline(req.FromArtifactType, req.FromArtifactID)
	if err != nil {
		writeError(c, err)
		return
	}
	to, err := h.versionRepo.FindBaseline(req.ToArtifactType, req.ToArtifactID)
	if err != nil {
		writeError(c, err)
		return
	}

	dep := &domain.VersionDependency{
		FromVersionID:      from.ID,
		ToVersionID:        to.ID,
		DependencyType:     req.DependencyType,
		DependencyStrength: req.Strength,
		Description:        req.Description,
	}
	if err := h.dependencyRepo.Create(dep); err != nil {
		writeError(c, err)
		return
	}

	common.Created(c, dep)
}
