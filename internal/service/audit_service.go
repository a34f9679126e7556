package service

import (
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/diff"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
)

// AuditEntry is one row of the audit trail, derived from a stored version.
type AuditEntry struct {
	ID             uint64              `json:"id"`
	Timestamp      time.Time           `json:"timestamp"`
	ArtifactType   domain.ArtifactType `json:"artifact_type"`
	ArtifactID     int64               `json:"artifact_id"`
	Action         string              `json:"action"`
	ChangeType     string              `json:"change_type"`
	VersionFrom    *int                `json:"version_from,omitempty"`
	VersionTo      int                 `json:"version_to"`
	UserID         string              `json:"user_id"`
	InitiativeID   string              `json:"initiative_id,omitempty"`
	InitiativeName string              `json:"initiative_name,omitempty"`
	ChangeReason   string              `json:"change_reason,omitempty"`
	ChangedFields  []string            `json:"changed_fields,omitempty"`
	IsBaseline     bool                `json:"is_baseline"`
}

// AuditTrail is a filtered page of entries plus the unfiltered match count.
type AuditTrail struct {
	Entries []AuditEntry `json:"entries"`
	Total   int64        `json:"total"`
}

// VersionRef summarizes one side of a comparison.
type VersionRef struct {
	Number     int       `json:"number"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	IsBaseline bool      `json:"is_baseline"`
}

// VersionComparison is the full diff between two versions of an artifact.
type VersionComparison struct {
	ArtifactType domain.ArtifactType `json:"artifact_type"`
	ArtifactID   int64               `json:"artifact_id"`
	VersionFrom  VersionRef          `json:"version_from"`
	VersionTo    VersionRef          `json:"version_to"`
	Changes      []diff.FieldChange  `json:"changes"`
	Summary      diff.Summary        `json:"summary"`
}

// HistoryEntry is one line of an artifact's version history.
type HistoryEntry struct {
	Version            int       `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	CreatedBy          string    `json:"created_by"`
	IsBaseline         bool      `json:"is_baseline"`
	InitiativeName     string    `json:"initiative_name,omitempty"`
	ChangeReason       string    `json:"change_reason,omitempty"`
	ChangedFieldsCount int       `json:"changed_fields_count"`
}

// VersionHistory is the newest-first lineage of an artifact.
type VersionHistory struct {
	Versions []HistoryEntry `json:"versions"`
	Total    int64          `json:"total"`
}

// AuditService is the read side over the version store: trails, version
// comparisons and per-artifact history. It never writes.
type AuditService interface {
	GetAuditTrail(filter repository.AuditFilter) (*AuditTrail, error)
	CompareVersions(t domain.ArtifactType, artifactID int64, versionFrom, versionTo int) (*VersionComparison, error)
	GetVersionHistory(t domain.ArtifactType, artifactID int64, limit int) (*VersionHistory, error)
}

type auditService struct {
	auditRepo      repository.AuditRepository
	versionRepo    repository.VersionRepository
	initiativeRepo repository.InitiativeRepository
}

// NewAuditService creates a new AuditService
func NewAuditService(
	auditRepo repository.AuditRepository,
	versionRepo repository.VersionRepository,
	initiativeRepo repository.InitiativeRepository,
) AuditService {
	return &auditService{
		auditRepo:      auditRepo,
		versionRepo:    versionRepo,
		initiativeRepo: initiativeRepo,
	}
}

// ActionLabel renders the human-readable action for a version. Version 1 is
// a creation regardless of its change type.
func ActionLabel(v *domain.ArtifactVersion) string {
	switch {
	case v.VersionNumber == 1:
		return "Created"
	case v.IsBaseline && v.BaselinedBy != "":
		return "Baselined"
	case v.ChangeType == domain.ChangeCheckout:
		return "Checked out"
	case v.ChangeType == domain.ChangeCheckin:
		return "Checked in"
	default:
		return "Updated"
	}
}

func (s *auditService) GetAuditTrail(filter repository.AuditFilter) (*AuditTrail, error) {
	if filter.ArtifactType != "" && !domain.ValidArtifactType(filter.ArtifactType) {
		return nil, common.ErrUnknownArtifactType
	}

	versions, total, err := s.auditRepo.Search(filter)
	if err != nil {
		return nil, err
	}

	initiativeNames := map[string]string{}
	entries := make([]AuditEntry, 0, len(versions))
	for _, v := range versions {
		entry := AuditEntry{
			ID:            v.ID,
			Timestamp:     v.CreatedAt,
			ArtifactType:  v.ArtifactType,
			ArtifactID:    v.ArtifactID,
			Action:        ActionLabel(v),
			ChangeType:    v.ChangeType,
			VersionTo:     v.VersionNumber,
			UserID:        v.CreatedBy,
			ChangeReason:  v.ChangeReason,
			ChangedFields: v.ChangedFields,
			IsBaseline:    v.IsBaseline,
		}

		if v.VersionNumber > 1 {
			from := v.VersionNumber - 1
			entry.VersionFrom = &from
		}

		if v.InitiativeID != nil {
			entry.InitiativeID = *v.InitiativeID
			name, ok := initiativeNames[*v.InitiativeID]
			if !ok {
				if initiative, err := s.initiativeRepo.FindByInitiativeID(*v.InitiativeID); err == nil {
					name = initiative.Name
				}
				initiativeNames[*v.InitiativeID] = name
			}
			entry.InitiativeName = name
		}

		entries = append(entries, entry)
	}

	return &AuditTrail{Entries: entries, Total: total}, nil
}

func (s *auditService) CompareVersions(t domain.ArtifactType, artifactID int64, versionFrom, versionTo int) (*VersionComparison, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}

	from, err := s.versionRepo.FindByVersionNumber(t, artifactID, versionFrom)
	if err != nil {
		return nil, err
	}
	to, err := s.versionRepo.FindByVersionNumber(t, artifactID, versionTo)
	if err != nil {
		return nil, err
	}

	changes := diff.Compare(from.ArtifactData, to.ArtifactData)

	return &VersionComparison{
		ArtifactType: t,
		ArtifactID:   artifactID,
		VersionFrom: VersionRef{
			Number:     from.VersionNumber,
			CreatedAt:  from.CreatedAt,
			CreatedBy:  from.CreatedBy,
			IsBaseline: from.IsBaseline,
		},
		VersionTo: VersionRef{
			Number:     to.VersionNumber,
			CreatedAt:  to.CreatedAt,
			CreatedBy:  to.CreatedBy,
			IsBaseline: to.IsBaseline,
		},
		Changes: changes,
		Summary: diff.Summarize(changes),
	}, nil
}

func (s *auditService) GetVersionHistory(t domain.ArtifactType, artifactID int64, limit int) (*VersionHistory, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}
	if limit <= 0 {
		limit = 20
	}

	versions, err := s.versionRepo.List(t, artifactID, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.versionRepo.Count(t, artifactID)
	if err != nil {
		return nil, err
	}

	initiativeNames := map[string]string{}
	entries := make([]HistoryEntry, 0, len(versions))
	for _, v := range versions {
		entry := HistoryEntry{
			Version:            v.VersionNumber,
			CreatedAt:          v.CreatedAt,
			CreatedBy:          v.CreatedBy,
			IsBaseline:         v.IsBaseline,
			ChangeReason:       v.ChangeReason,
			ChangedFieldsCount: len(v.ChangedFields),
		}
		if v.InitiativeID != nil {
			name, ok := initiativeNames[*v.InitiativeID]
			if !ok {
				if initiative, err := s.initiativeRepo.FindByInitiativeID(*v.InitiativeID); err == nil {
					name = initiative.Name
				}
				initiativeNames[*v.InitiativeID] = name
			}
			entry.InitiativeName = name
		}
		entries = append(entries, entry)
	}

	return &VersionHistory{Versions: entries, Total: total}, nil
}
