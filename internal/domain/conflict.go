package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Conflict severities, ordered from least to most serious.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Resolution strategies.
const (
	StrategyAutoMerge      = "auto_merge"
	StrategyAcceptBaseline = "accept_baseline"
	StrategyKeepInitiative = "keep_initiative"
	StrategyManualMerge    = "manual_merge"
)

// Per-field merge strategies assigned by conflict analysis and applied by
// the resolution engine during auto-merge.
const (
	MergeLatest       = "latest"
	MergeConcatenate  = "concatenate"
	MergeMaxVersion   = "max_version"
	MergeStateMachine = "state_machine"
	MergeNumeric      = "numeric"
	MergeManual       = "manual"
)

// Suggested strategies from conflict analysis.
const (
	SuggestAuto     = "auto"
	SuggestManual   = "manual"
	SuggestEscalate = "escalate"
)

// Resolution statuses.
const (
	ResolutionPending  = "pending"
	ResolutionResolved = "resolved"
)

// FieldConflict is one field that changed on both sides since the draft's
// base version.
type FieldConflict struct {
	Field           string      `json:"field"`
	Path            []string    `json:"path"`
	OriginalValue   interface{} `json:"original_value"`
	BaselineValue   interface{} `json:"baseline_value"`
	InitiativeValue interface{} `json:"initiative_value"`
	Severity        string      `json:"severity"`
	AutoResolvable  bool        `json:"auto_resolvable"`
	MergeStrategy   string      `json:"merge_strategy,omitempty"`
}

// DependencyImpact describes another artifact affected by resolving a conflict.
type DependencyImpact struct {
	ArtifactType ArtifactType `json:"artifact_type"`
	ArtifactID   int64        `json:"artifact_id"`
	ImpactType   string       `json:"impact_type"` // breaking, warning, info
	Description  string       `json:"description"`
}

// ConflictAnalysis is the full analyzer output for one artifact.
type ConflictAnalysis struct {
	ArtifactType      ArtifactType       `json:"artifact_type"`
	ArtifactID        int64              `json:"artifact_id"`
	Conflicts         []FieldConflict    `json:"conflicts"`
	Dependencies      []DependencyImpact `json:"dependencies"`
	RiskScore         int                `json:"risk_score"`
	AutoResolvable    bool               `json:"auto_resolvable"`
	SuggestedStrategy string             `json:"suggested_strategy"`
}

// Value implements driver.Valuer so an analysis can live in a json column.
func (a ConflictAnalysis) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *ConflictAnalysis) Scan(value interface{}) error {
	if value == nil {
		*a = ConflictAnalysis{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return errors.New("unsupported conflict analysis column type")
	}
}

// Conflict is a persisted disagreement between an initiative draft and a
// baseline that moved since the draft's base version. Rows are never deleted;
// resolution only fills in the resolution metadata.
type Conflict struct {
	ID                  uint64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InitiativeID        string           `gorm:"column:initiative_id;size:64;index:idx_conflicts_initiative" json:"initiative_id"`
	ArtifactType        ArtifactType     `gorm:"column:artifact_type;size:32" json:"artifact_type"`
	ArtifactID          int64            `gorm:"column:artifact_id" json:"artifact_id"`
	BaselineVersionID   uint64           `gorm:"column:baseline_version_id" json:"baseline_version_id"`
	InitiativeVersionID uint64           `gorm:"column:initiative_version_id" json:"initiative_version_id"`
	ConflictingFields   StringList       `gorm:"column:conflicting_fields;type:json" json:"conflicting_fields"`
	ConflictDetails     ConflictAnalysis `gorm:"column:conflict_details;type:json" json:"conflict_details"`
	ResolutionStatus    string           `gorm:"column:resolution_status;size:16;index:idx_conflicts_status" json:"resolution_status"`
	ResolutionStrategy  string           `gorm:"column:resolution_strategy;size:32" json:"resolution_strategy,omitempty"`
	ResolvedData        Document         `gorm:"column:resolved_data;type:json" json:"resolved_data,omitempty"`
	ResolvedBy          string           `gorm:"column:resolved_by;size:64" json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time       `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolutionNotes     string           `gorm:"column:resolution_notes" json:"resolution_notes,omitempty"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Conflict) TableName() string {
	return "version_conflicts"
}

// ResolveConflictRequest is the body for POST .../conflicts/:cid/resolve.
type ResolveConflictRequest struct {
	Strategy     string   `json:"strategy" binding:"required"`
	ResolvedData Document `json:"resolved_data,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}
