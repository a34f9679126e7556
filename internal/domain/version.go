package domain

import "time"

// ArtifactType identifies the kind of architecture artifact being versioned.
type ArtifactType string

const (
	ArtifactApplication      ArtifactType = "application"
	ArtifactInterface        ArtifactType = "interface"
	ArtifactBusinessProcess  ArtifactType = "business_process"
	ArtifactInternalProcess  ArtifactType = "internal_process"
	ArtifactTechnicalProcess ArtifactType = "technical_process"
)

// ValidArtifactType reports whether t names a recognized artifact kind.
func ValidArtifactType(t ArtifactType) bool {
	switch t {
	case ArtifactApplication, ArtifactInterface, ArtifactBusinessProcess,
		ArtifactInternalProcess, ArtifactTechnicalProcess:
		return true
	}
	return false
}

// Change types recorded on artifact versions.
const (
	ChangeCreate   = "create"
	ChangeUpdate   = "update"
	ChangeDelete   = "delete"
	ChangeBaseline = "baseline"
	ChangeCheckout = "checkout"
	ChangeCheckin  = "checkin"
)

// ArtifactVersion is one immutable snapshot in an artifact's lineage.
// Version numbers are assigned by the store and strictly increase per
// (artifact_type, artifact_id).
type ArtifactVersion struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArtifactType  ArtifactType `gorm:"column:artifact_type;size:32;index:idx_artifact_lineage,priority:1;uniqueIndex:uq_artifact_version,priority:1" json:"artifact_type"`
	ArtifactID    int64        `gorm:"column:artifact_id;index:idx_artifact_lineage,priority:2;uniqueIndex:uq_artifact_version,priority:2" json:"artifact_id"`
	VersionNumber int          `gorm:"column:version_number;uniqueIndex:uq_artifact_version,priority:3" json:"version_number"`
	InitiativeID  *string      `gorm:"column:initiative_id;size:64;index:idx_versions_initiative" json:"initiative_id,omitempty"`
	IsBaseline    bool         `gorm:"column:is_baseline;index:idx_versions_baseline" json:"is_baseline"`
	// BaseVersionID records, for a draft, the baseline version the checkout
	// was taken from. Conflict analysis diffs against this anchor.
	BaseVersionID *uint64    `gorm:"column:base_version_id" json:"base_version_id,omitempty"`
	ArtifactData  Document   `gorm:"column:artifact_data;type:json" json:"artifact_data"`
	ChangedFields StringList `gorm:"column:changed_fields;type:json" json:"changed_fields,omitempty"`
	ChangeType    string     `gorm:"column:change_type;size:16" json:"change_type"`
	ChangeReason  string     `gorm:"column:change_reason" json:"change_reason,omitempty"`
	CreatedBy     string     `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedBy     string     `gorm:"column:updated_by;size:64" json:"updated_by,omitempty"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	BaselinedBy   string     `gorm:"column:baselined_by;size:64" json:"baselined_by,omitempty"`
	BaselineDate  *time.Time `gorm:"column:baseline_date" json:"baseline_date,omitempty"`
}

func (ArtifactVersion) TableName() string {
	return "artifact_versions"
}

// ArtifactLock marks an artifact as checked out within one initiative.
// Its existence is equivalent to "a live draft exists for this artifact in
// this initiative"; the unique index is what makes checkout single-writer.
type ArtifactLock struct {
	ID           uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArtifactType ArtifactType `gorm:"column:artifact_type;size:32;uniqueIndex:uq_artifact_lock,priority:1;index:idx_locks_artifact,priority:1" json:"artifact_type"`
	ArtifactID   int64        `gorm:"column:artifact_id;uniqueIndex:uq_artifact_lock,priority:2;index:idx_locks_artifact,priority:2" json:"artifact_id"`
	InitiativeID string       `gorm:"column:initiative_id;size:64;uniqueIndex:uq_artifact_lock,priority:3;index:idx_locks_initiative" json:"initiative_id"`
	LockedBy     string       `gorm:"column:locked_by;size:64" json:"locked_by"`
	// DraftVersionID is the checkout draft created for this lock session.
	// Cancelling the checkout discards exactly this version, never work
	// checked in during earlier sessions.
	DraftVersionID uint64    `gorm:"column:draft_version_id" json:"draft_version_id"`
	LockedAt       time.Time `gorm:"column:locked_at;autoCreateTime" json:"locked_at"`
}

func (ArtifactLock) TableName() string {
	return "artifact_locks"
}

// BaselineHistory records every baseline promotion for an artifact.
type BaselineHistory struct {
	ID             uint64       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ArtifactType   ArtifactType `gorm:"column:artifact_type;size:32;index:idx_baseline_history,priority:1" json:"artifact_type"`
	ArtifactID     int64        `gorm:"column:artifact_id;index:idx_baseline_history,priority:2" json:"artifact_id"`
	FromVersionID  *uint64      `gorm:"column:from_version_id" json:"from_version_id,omitempty"`
	ToVersionID    uint64       `gorm:"column:to_version_id" json:"to_version_id"`
	InitiativeID   *string      `gorm:"column:initiative_id;size:64" json:"initiative_id,omitempty"`
	BaselinedBy    string       `gorm:"column:baselined_by;size:64" json:"baselined_by"`
	BaselinedAt    time.Time    `gorm:"column:baselined_at;autoCreateTime" json:"baselined_at"`
	BaselineReason string       `gorm:"column:baseline_reason" json:"baseline_reason,omitempty"`
}

func (BaselineHistory) TableName() string {
	return "baseline_history"
}

// CheckoutRequest is the body for POST /version-control/:type/:id/checkout.
// BaselineData seeds version 1 when the artifact has no lineage yet.
type CheckoutRequest struct {
	InitiativeID string   `json:"initiative_id" binding:"required"`
	BaselineData Document `json:"baseline_data,omitempty"`
}

// CheckinRequest is the body for POST /version-control/:type/:id/checkin.
type CheckinRequest struct {
	InitiativeID string   `json:"initiative_id" binding:"required"`
	Data         Document `json:"data" binding:"required"`
	ChangeReason string   `json:"change_reason,omitempty"`
}

// CancelCheckoutRequest is the body for POST /version-control/cancel-checkout.
type CancelCheckoutRequest struct {
	ArtifactType ArtifactType `json:"artifact_type" binding:"required"`
	ArtifactID   int64        `json:"artifact_id" binding:"required"`
	InitiativeID string       `json:"initiative_id" binding:"required"`
}
