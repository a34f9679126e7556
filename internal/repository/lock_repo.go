package repository

import (
	"errors"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
)

// LockRepository manages checkout locks. The unique index on
// (artifact_type, artifact_id, initiative_id) is the single-writer guarantee:
// a second concurrent insert fails fast instead of blocking.
type LockRepository interface {
	Create(lock *domain.ArtifactLock) error
	Find(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactLock, error)
	FindByArtifact(t domain.ArtifactType, artifactID int64) ([]*domain.ArtifactLock, error)
	ListByInitiative(initiativeID string) ([]*domain.ArtifactLock, error)
	Delete(t domain.ArtifactType, artifactID int64, initiativeID string) (bool, error)
	DeleteByInitiative(initiativeID string) error
	WithTx(tx *gorm.DB) LockRepository
}

type lockRepository struct {
	db *gorm.DB
}

// NewLockRepository creates a new LockRepository
func NewLockRepository(db *gorm.DB) LockRepository {
	return &lockRepository{db: db}
}

// WithTx returns a LockRepository bound to the given transaction
func (r *lockRepository) WithTx(tx *gorm.DB) LockRepository {
	return &lockRepository{db: tx}
}

func (r *lockRepository) Create(lock *domain.ArtifactLock) error {
	err := r.db.Create(lock).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrAlreadyLocked
	}
	return err
}

func (r *lockRepository) Find(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactLock, error) {
	var lock domain.ArtifactLock
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ? AND initiative_id = ?", t, artifactID, initiativeID).
		First(&lock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	return &lock, err
}

func (r *lockRepository) FindByArtifact(t domain.ArtifactType, artifactID int64) ([]*domain.ArtifactLock, error) {
	var locks []*domain.ArtifactLock
	err := r.db.
		Where("artifact_type = ? AND artifact_id = ?", t, artifactID).
		Find(&locks).Error
	return locks, err
}

func (r *lockRepository) ListByInitiative(initiativeID string) ([]*domain.ArtifactLock, error) {
	var locks []*domain.ArtifactLock
	err := r.db.
		Where("initiative_id = ?", initiativeID).
		Order("locked_at DESC").
		Find(&locks).Error
	return locks, err
}

func (r *lockRepository) Delete(t domain.ArtifactType, artifactID int64, initiativeID string) (bool, error) {
	res := r.db.
		Where("artifact_type = ? AND artifact_id = ? AND initiative_id = ?", t, artifactID, initiativeID).
		Delete(&domain.ArtifactLock{})
	return res.RowsAffected > 0, res.Error
}

func (r *lockRepository) DeleteByInitiative(initiativeID string) error {
	return r.db.
		Where("initiative_id = ?", initiativeID).
		Delete(&domain.ArtifactLock{}).Error
}
