package domain

import "time"

// Dependency types and strengths.
const (
	DependencyRequires  = "requires"
	DependencyImpacts   = "impacts"
	DependencyRelatedTo = "related_to"

	StrengthStrong   = "strong"
	StrengthWeak     = "weak"
	StrengthOptional = "optional"
)

// VersionDependency links two artifact versions, typically "this baseline
// version is required by that one". The conflict analyzer walks these edges
// to surface impact warnings.
type VersionDependency struct {
	ID                 uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FromVersionID      uint64    `gorm:"column:from_version_id;index:idx_dependencies_from" json:"from_version_id"`
	ToVersionID        uint64    `gorm:"column:to_version_id;index:idx_dependencies_to" json:"to_version_id"`
	DependencyType     string    `gorm:"column:dependency_type;size:32" json:"dependency_type"`
	DependencyStrength string    `gorm:"column:dependency_strength;size:16" json:"dependency_strength,omitempty"`
	Description        string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (VersionDependency) TableName() string {
	return "version_dependencies"
}

// CreateDependencyRequest is the body for POST /dependencies. Both endpoints
// are resolved to their current baseline versions before the edge is stored.
type CreateDependencyRequest struct {
	FromArtifactType ArtifactType `json:"from_artifact_type" binding:"required"`
	FromArtifactID   int64        `json:"from_artifact_id" binding:"required"`
	ToArtifactType   ArtifactType `json:"to_artifact_type" binding:"required"`
	ToArtifactID     int64        `json:"to_artifact_id" binding:"required"`
	DependencyType   string       `json:"dependency_type" binding:"required"`
	Strength         string       `json:"strength,omitempty"`
	Description      string       `json:"description,omitempty"`
}
