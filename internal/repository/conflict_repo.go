package repository

import (
	"errors"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
)

// ConflictRepository persists conflict rows. Rows are append-plus-resolve:
// never deleted, resolved exactly once.
type ConflictRepository interface {
	Create(conflict *domain.Conflict) error
	FindByID(id uint64) (*domain.Conflict, error)
	FindPending(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error)
	ListByInitiative(initiativeID, status string) ([]*domain.Conflict, error)
	CountPending(initiativeID string) (int64, error)
	FindResolved(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error)
	UpdateAnalysis(id uint64, fields domain.StringList, analysis domain.ConflictAnalysis) error
	MarkResolved(id uint64, strategy string, resolvedData domain.Document, actor, notes string) error
	WithTx(tx *gorm.DB) ConflictRepository
}

type conflictRepository struct {
	db *gorm.DB
}

// NewConflictRepository creates a new ConflictRepository
func NewConflictRepository(db *gorm.DB) ConflictRepository {
	return &conflictRepository{db: db}
}

// WithTx returns a ConflictRepository bound to the given transaction
func (r *conflictRepository) WithTx(tx *gorm.DB) ConflictRepository {
	return &conflictRepository{db: tx}
}

func (r *conflictRepository) Create(conflict *domain.Conflict) error {
	return r.db.Create(conflict).Error
}

func (r *conflictRepository) FindByID(id uint64) (*domain.Conflict, error) {
	var conflict domain.Conflict
	err := r.db.First(&conflict, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrConflictNotFound
	}
	return &conflict, err
}

func (r *conflictRepository) FindPending(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error) {
	var conflict domain.Conflict
	err := r.db.
		Where("initiative_id = ? AND artifact_type = ? AND artifact_id = ? AND resolution_status = ?",
			initiativeID, t, artifactID, domain.ResolutionPending).
		First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrConflictNotFound
	}
	return &conflict, err
}

func (r *conflictRepository) ListByInitiative(initiativeID, status string) ([]*domain.Conflict, error) {
	var conflicts []*domain.Conflict
	q := r.db.Where("initiative_id = ?", initiativeID)
	if status != "" {
		q = q.Where("resolution_status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&conflicts).Error
	return conflicts, err
}

func (r *conflictRepository) CountPending(initiativeID string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Conflict{}).
		Where("initiative_id = ? AND resolution_status = ?", initiativeID, domain.ResolutionPending).
		Count(&count).Error
	return count, err
}

func (r *conflictRepository) FindResolved(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error) {
	var conflict domain.Conflict
	err := r.db.
		Where("initiative_id = ? AND artifact_type = ? AND artifact_id = ? AND resolution_status = ?",
			initiativeID, t, artifactID, domain.ResolutionResolved).
		Order("resolved_at DESC").
		First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrConflictNotFound
	}
	return &conflict, err
}

func (r *conflictRepository) UpdateAnalysis(id uint64, fields domain.StringList, analysis domain.ConflictAnalysis) error {
	return r.db.Model(&domain.Conflict{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"conflicting_fields": fields,
			"conflict_details":   analysis,
		}).Error
}

func (r *conflictRepository) MarkResolved(id uint64, strategy string, resolvedData domain.Document, actor, notes string) error {
	res := r.db.Model(&domain.Conflict{}).
		Where("id = ? AND resolution_status = ?", id, domain.ResolutionPending).
		Updates(map[string]interface{}{
			"resolution_status":   domain.ResolutionResolved,
			"resolution_strategy": strategy,
			"resolved_data":       resolvedData,
			"resolved_by":         actor,
			"resolved_at":         time.Now(),
			"resolution_notes":    notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrConflictAlreadyResolved
	}
	return nil
}
