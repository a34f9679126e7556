package repository

import (
	"time"

	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
)

// AuditFilter narrows an audit trail query. Zero values mean "no filter".
type AuditFilter struct {
	ArtifactType domain.ArtifactType
	ArtifactID   int64
	InitiativeID string
	UserID       string
	ChangeType   string
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
}

// AuditRepository is the read-side projection over artifact_versions.
type AuditRepository interface {
	// Search returns matching versions newest-first plus the total match
	// count independent of the limit.
	Search(filter AuditFilter) ([]*domain.ArtifactVersion, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Search(filter AuditFilter) ([]*domain.ArtifactVersion, int64, error) {
	q := r.db.Model(&domain.ArtifactVersion{})

	if filter.ArtifactType != "" {
		q = q.Where("artifact_type = ?", filter.ArtifactType)
	}
	if filter.ArtifactID != 0 {
		q = q.Where("artifact_id = ?", filter.ArtifactID)
	}
	if filter.InitiativeID != "" {
		q = q.Where("initiative_id = ?", filter.InitiativeID)
	}
	if filter.UserID != "" {
		q = q.Where("created_by = ? OR updated_by = ?", filter.UserID, filter.UserID)
	}
	if filter.ChangeType != "" {
		q = q.Where("change_type = ?", filter.ChangeType)
	}
	if filter.FromDate != nil {
		q = q.Where("created_at >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("created_at <= ?", filter.ToDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var versions []*domain.ArtifactVersion
	err := q.Order("created_at DESC").Limit(limit).Find(&versions).Error
	return versions, total, err
}
