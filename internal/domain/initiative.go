package domain

import "time"

// Initiative statuses.
const (
	InitiativeDraft     = "draft"
	InitiativeActive    = "active"
	InitiativeReview    = "review"
	InitiativeCompleted = "completed"
	InitiativeCancelled = "cancelled"
)

// Initiative is a named unit of work under which artifacts are checked out
// and drafted before being merged back into the baseline.
type Initiative struct {
	ID                    uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InitiativeID          string     `gorm:"column:initiative_id;size:64;uniqueIndex" json:"initiative_id"`
	Name                  string     `gorm:"column:name;size:255" json:"name"`
	Description           string     `gorm:"column:description" json:"description,omitempty"`
	BusinessJustification string     `gorm:"column:business_justification" json:"business_justification,omitempty"`
	Status                string     `gorm:"column:status;size:16;index:idx_initiatives_status" json:"status"`
	Priority              string     `gorm:"column:priority;size:16" json:"priority"`
	StartDate             time.Time  `gorm:"column:start_date;autoCreateTime" json:"start_date"`
	TargetCompletionDate  *time.Time `gorm:"column:target_completion_date" json:"target_completion_date,omitempty"`
	ActualCompletionDate  *time.Time `gorm:"column:actual_completion_date" json:"actual_completion_date,omitempty"`
	CreatedBy             string     `gorm:"column:created_by;size:64" json:"created_by"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedBy             string     `gorm:"column:updated_by;size:64" json:"updated_by,omitempty"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Initiative) TableName() string {
	return "initiatives"
}

// InitiativeParticipant links a user to an initiative with a role.
type InitiativeParticipant struct {
	ID           uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InitiativeID string     `gorm:"column:initiative_id;size:64;uniqueIndex:uq_participant,priority:1" json:"initiative_id"`
	UserID       string     `gorm:"column:user_id;size:64;uniqueIndex:uq_participant,priority:2;index:idx_participants_user" json:"user_id"`
	Role         string     `gorm:"column:role;size:32" json:"role"`
	JoinedAt     time.Time  `gorm:"column:joined_at;autoCreateTime" json:"joined_at"`
	LeftAt       *time.Time `gorm:"column:left_at" json:"left_at,omitempty"`
	AddedBy      string     `gorm:"column:added_by;size:64" json:"added_by,omitempty"`
}

func (InitiativeParticipant) TableName() string {
	return "initiative_participants"
}

// CreateInitiativeRequest is the body for POST /initiatives.
type CreateInitiativeRequest struct {
	Name                  string     `json:"name" binding:"required"`
	Description           string     `json:"description,omitempty"`
	BusinessJustification string     `json:"business_justification,omitempty"`
	Priority              string     `json:"priority,omitempty"`
	TargetCompletionDate  *time.Time `json:"target_completion_date,omitempty"`
}
