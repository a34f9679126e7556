package repository

import (
	"errors"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VersionRepository is the append-only artifact version store.
type VersionRepository interface {
	// Create inserts a new version, assigning the next version number for
	// the (artifact_type, artifact_id) lineage inside one transaction.
	Create(version *domain.ArtifactVersion) error
	FindByID(id uint64) (*domain.ArtifactVersion, error)
	FindBaseline(t domain.ArtifactType, artifactID int64) (*domain.ArtifactVersion, error)
	FindLatestDraft(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactVersion, error)
	FindByVersionNumber(t domain.ArtifactType, artifactID int64, versionNumber int) (*domain.ArtifactVersion, error)
	List(t domain.ArtifactType, artifactID int64, limit int) ([]*domain.ArtifactVersion, error)
	ListByInitiative(initiativeID string) ([]*domain.ArtifactVersion, error)
	Count(t domain.ArtifactType, artifactID int64) (int64, error)
	// PromoteBaseline atomically moves the baseline flag to versionID and
	// appends a baseline_history row. Readers never observe zero or two
	// baselines for a lineage.
	PromoteBaseline(t domain.ArtifactType, artifactID int64, versionID uint64, actor string, initiativeID *string, reason string) error
	ListBaselineHistory(t domain.ArtifactType, artifactID int64) ([]*domain.BaselineHistory, error)
	// DeleteDraft removes a single non-baseline version. Checked-in versions
	// from earlier sessions are ordinary history and are never deleted in bulk.
	DeleteDraft(id uint64) error
	WithTx(tx *gorm.DB) VersionRepository
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

// WithTx returns a VersionRepository bound to the given transaction
func (r *versionRepository) WithTx(tx *gorm.DB) VersionRepository {
	return &versionRepository{db: tx}
}

func (r *versionRepository) Create(version *domain.ArtifactVersion) error {
	if !domain.ValidArtifactType(version.ArtifactType) {
		return common.ErrUnknownArtifactType
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxVersion *int
		err := tx.Model(&domain.ArtifactVersion{}).
			Where("artifact_type = ? AND artifact_id = ?", version.ArtifactType, version.ArtifactID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("MAX(version_number)").
			Scan(&maxVersion).Error
		if err != nil {
			return err
		}
		if maxVersion == nil {
			version.VersionNumber = 1
		} else {
			version.VersionNumber = *maxVersion + 1
		}
		return tx.Create(version).Error
	})
}

func (r *versionRepository) FindByID(id uint64) (*domain.ArtifactVersion, error) {
	var version domain.ArtifactVersion
	err := r.db.First(&version, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	return &version, err
}

func (r *versionRepository) FindBaseline(t domain.ArtifactType, artifactID int64) (*domain.ArtifactVersion, error) {
	var version domain.ArtifactVersion
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ? AND is_baseline = ?", t, artifactID, true).
		Order("version_number DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	return &version, err
}

func (r *versionRepository) FindLatestDraft(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactVersion, error) {
	var version domain.ArtifactVersion
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ? AND initiative_id = ? AND is_baseline = ?",
			t, artifactID, initiativeID, false).
		Order("version_number DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	return &version, err
}

func (r *versionRepository) FindByVersionNumber(t domain.ArtifactType, artifactID int64, versionNumber int) (*domain.ArtifactVersion, error) {
	var version domain.ArtifactVersion
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ? AND version_number = ?", t, artifactID, versionNumber).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrVersionNotFound
	}
	return &version, err
}

func (r *versionRepository) List(t domain.ArtifactType, artifactID int64, limit int) ([]*domain.ArtifactVersion, error) {
	var versions []*domain.ArtifactVersion
	q := r.db.
		Where("artifact_type = ? AND artifact_id = ?", t, artifactID).
		Order("version_number DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&versions).Error
	return versions, err
}

func (r *versionRepository) ListByInitiative(initiativeID string) ([]*domain.ArtifactVersion, error) {
	var versions []*domain.ArtifactVersion
	err := r.db.
		Where("initiative_id = ? AND is_baseline = ?", initiativeID, false).
		Order("artifact_type, artifact_id, version_number DESC").
		Find(&versions).Error
	return versions, err
}

func (r *versionRepository) Count(t domain.ArtifactType, artifactID int64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ArtifactVersion{}).
		Where("artifact_type = ? AND artifact_id = ?", t, artifactID).
		Count(&count).Error
	return count, err
}

func (r *versionRepository) PromoteBaseline(t domain.ArtifactType, artifactID int64, versionID uint64, actor string, initiativeID *string, reason string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var target domain.ArtifactVersion
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND artifact_type = ? AND artifact_id = ?", versionID, t, artifactID).
			First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrVersionNotFound
		}
		if err != nil {
			return err
		}

		// Lock the current baseline row so two concurrent promotions for the
		// same lineage serialize; the loser retries against the new baseline.
		var previous domain.ArtifactVersion
		var fromID *uint64
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("artifact_type = ? AND artifact_id = ? AND is_baseline = ?", t, artifactID, true).
			First(&previous).Error
		switch {
		case err == nil:
			fromID = &previous.ID
			if previous.ID != target.ID {
				if err := tx.Model(&domain.ArtifactVersion{}).
					Where("id = ?", previous.ID).
					Update("is_baseline", false).Error; err != nil {
					return err
				}
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First baseline for this lineage.
		default:
			return err
		}

		now := time.Now()
		if err := tx.Model(&domain.ArtifactVersion{}).
			Where("id = ?", target.ID).
			Updates(map[string]interface{}{
				"is_baseline":   true,
				"baselined_by":  actor,
				"baseline_date": now,
			}).Error; err != nil {
			return err
		}

		history := &domain.BaselineHistory{
			ArtifactType:   t,
			ArtifactID:     artifactID,
			FromVersionID:  fromID,
			ToVersionID:    target.ID,
			InitiativeID:   initiativeID,
			BaselinedBy:    actor,
			BaselineReason: reason,
		}
		return tx.Create(history).Error
	})
}

func (r *versionRepository) ListBaselineHistory(t domain.ArtifactType, artifactID int64) ([]*domain.BaselineHistory, error) {
	var history []*domain.BaselineHistory
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ?", t, artifactID).
		Order("baselined_at DESC, id DESC").
		Find(&history).Error
	return history, err
}

func (r *versionRepository) DeleteDraft(id uint64) error {
	return r.db.
		Where("id = ? AND is_baseline = ?", id, false).
		Delete(&domain.ArtifactVersion{}).Error
}
