package repository

import (
	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
)

// Dependent pairs a dependency edge with the artifact on its far end.
type Dependent struct {
	Dependency   domain.VersionDependency
	ArtifactType domain.ArtifactType
	ArtifactID   int64
}

// DependencyRepository reads and writes dependency edges between versions.
type DependencyRepository interface {
	Create(dep *domain.VersionDependency) error
	// FindDependents returns the artifacts whose versions depend on the
	// given version (edges pointing at versionID).
	FindDependents(versionID uint64) ([]Dependent, error)
	ListForVersion(versionID uint64) ([]*domain.VersionDependency, error)
}

type dependencyRepository struct {
	db *gorm.DB
}

// NewDependencyRepository creates a new DependencyRepository
func NewDependencyRepository(db *gorm.DB) DependencyRepository {
	return &dependencyRepository{db: db}
}

func (r *dependencyRepository) Create(dep *domain.VersionDependency) error {
	return r.db.Create(dep).Error
}

func (r *dependencyRepository) FindDependents(versionID uint64) ([]Dependent, error) {
	type row struct {
		domain.VersionDependency
		DepArtifactType domain.ArtifactType `gorm:"column:dep_artifact_type"`
		DepArtifactID   int64               `gorm:"column:dep_artifact_id"`
	}
	var rows []row
	err := r.db.Model(&domain.VersionDependency{}).
		Select("version_dependencies.*, v.artifact_type AS dep_artifact_type, v.artifact_id AS dep_artifact_id").
		Joins("JOIN artifact_versions v ON v.id = version_dependencies.from_version_id").
		Where("version_dependencies.to_version_id = ?", versionID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	dependents := make([]Dependent, len(rows))
	for i, rw := range rows {
		dependents[i] = Dependent{
			Dependency:   rw.VersionDependency,
			ArtifactType: rw.DepArtifactType,
			ArtifactID:   rw.DepArtifactID,
		}
	}
	return dependents, nil
}

func (r *dependencyRepository) ListForVersion(versionID uint64) ([]*domain.VersionDependency, error) {
	var deps []*domain.VersionDependency
	err := r.db.
		Where("from_version_id = ? OR to_version_id = ?", versionID, versionID).
		Order("created_at DESC").
		Find(&deps).Error
	return deps, err
}
