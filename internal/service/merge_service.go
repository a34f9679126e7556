package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/diff"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/archmap/archmap-backend/pkg/logger"
	"gorm.io/gorm"
)

// Status precedence for the state-machine merge rule. Higher wins.
var statusPrecedence = map[string]int{
	"active":         7,
	"enabled":        6,
	"maintenance":    5,
	"deprecated":     4,
	"inactive":       3,
	"retired":        2,
	"decommissioned": 1,
}

// Timestamp layouts accepted by the latest-wins merge rule.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolutionService applies a resolution strategy to a conflict and promotes
// the merged snapshot to baseline.
type ResolutionService interface {
	// Resolve applies the requested strategy, creates the merged version,
	// promotes it to baseline and marks the conflict resolved, all in one
	// transaction.
	Resolve(conflictID uint64, actor string, req *domain.ResolveConflictRequest) (*domain.Conflict, error)
	// AutoResolve re-analyzes the conflict and merges it without custom data.
	// Fails with ErrManualInterventionRequired when any field needs a human.
	AutoResolve(conflictID uint64, actor string) (*domain.Conflict, error)
}

type resolutionService struct {
	db           *gorm.DB
	versionRepo  repository.VersionRepository
	conflictRepo repository.ConflictRepository
	conflictSvc  ConflictService
}

// NewResolutionService creates a new ResolutionService
func NewResolutionService(
	db *gorm.DB,
	versionRepo repository.VersionRepository,
	conflictRepo repository.ConflictRepository,
	conflictSvc ConflictService,
) ResolutionService {
	return &resolutionService{
		db:           db,
		versionRepo:  versionRepo,
		conflictRepo: conflictRepo,
		conflictSvc:  conflictSvc,
	}
}

func (s *resolutionService) Resolve(conflictID uint64, actor string, req *domain.ResolveConflictRequest) (*domain.Conflict, error) {
	conflict, err := s.conflictRepo.FindByID(conflictID)
	if err != nil {
		return nil, err
	}
	if conflict.ResolutionStatus != domain.ResolutionPending {
		return nil, common.ErrConflictAlreadyResolved
	}

	draft, err := s.versionRepo.FindByID(conflict.InitiativeVersionID)
	if err != nil {
		return nil, err
	}
	var base domain.Document
	if draft.BaseVersionID != nil {
		baseVersion, err := s.versionRepo.FindByID(*draft.BaseVersionID)
		if err != nil {
			return nil, err
		}
		base = baseVersion.ArtifactData
	}
	baseline, err := s.versionRepo.FindBaseline(conflict.ArtifactType, conflict.ArtifactID)
	if err != nil {
		return nil, err
	}

	resolved, err := ApplyStrategy(req.Strategy, conflict.ConflictDetails.Conflicts,
		base, baseline.ArtifactData, draft.ArtifactData, req.ResolvedData)
	if err != nil {
		return nil, err
	}

	if err := s.commitResolution(conflict, draft, resolved, req.Strategy, actor, req.Notes); err != nil {
		return nil, err
	}

	logger.GetLogger().Info().
		Uint64("conflict_id", conflict.ID).
		Str("strategy", req.Strategy).
		Str("resolved_by", actor).
		Msg("conflict resolved")
	return s.conflictRepo.FindByID(conflict.ID)
}

func (s *resolutionService) AutoResolve(conflictID uint64, actor string) (*domain.Conflict, error) {
	conflict, err := s.conflictRepo.FindByID(conflictID)
	if err != nil {
		return nil, err
	}
	if conflict.ResolutionStatus != domain.ResolutionPending {
		return nil, common.ErrConflictAlreadyResolved
	}

	// Re-analyze: the baseline may have moved again since detection.
	analysis, err := s.conflictSvc.AnalyzeArtifact(conflict.ArtifactType, conflict.ArtifactID, conflict.InitiativeID)
	if err != nil {
		return nil, err
	}
	if !analysis.AutoResolvable {
		return nil, fmt.Errorf("%w: %s", common.ErrManualInterventionRequired,
			strings.Join(manualFields(analysis.Conflicts), ", "))
	}

	draft, err := s.versionRepo.FindByID(conflict.InitiativeVersionID)
	if err != nil {
		return nil, err
	}
	var base domain.Document
	if draft.BaseVersionID != nil {
		baseVersion, err := s.versionRepo.FindByID(*draft.BaseVersionID)
		if err != nil {
			return nil, err
		}
		base = baseVersion.ArtifactData
	}
	baseline, err := s.versionRepo.FindBaseline(conflict.ArtifactType, conflict.ArtifactID)
	if err != nil {
		return nil, err
	}

	resolved, err := ApplyStrategy(domain.StrategyAutoMerge, analysis.Conflicts,
		base, baseline.ArtifactData, draft.ArtifactData, nil)
	if err != nil {
		return nil, err
	}

	if err := s.commitResolution(conflict, draft, resolved, domain.StrategyAutoMerge, actor, "automatically merged"); err != nil {
		return nil, err
	}
	return s.conflictRepo.FindByID(conflict.ID)
}

// commitResolution writes the merged version, promotes it and closes the
// conflict as a single unit.
func (s *resolutionService) commitResolution(conflict *domain.Conflict, draft *domain.ArtifactVersion, resolved domain.Document, strategy, actor, notes string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		versions := s.versionRepo.WithTx(tx)
		conflicts := s.conflictRepo.WithTx(tx)

		merged := &domain.ArtifactVersion{
			ArtifactType:  conflict.ArtifactType,
			ArtifactID:    conflict.ArtifactID,
			InitiativeID:  &conflict.InitiativeID,
			BaseVersionID: draft.BaseVersionID,
			ArtifactData:  resolved.Clone(),
			ChangedFields: diff.ChangedFields(draft.ArtifactData, resolved),
			ChangeType:    domain.ChangeUpdate,
			ChangeReason:  fmt.Sprintf("conflict resolution (%s)", strategy),
			CreatedBy:     actor,
		}
		if err := versions.Create(merged); err != nil {
			return err
		}

		reason := fmt.Sprintf("conflict %d resolved via %s", conflict.ID, strategy)
		if err := versions.PromoteBaseline(conflict.ArtifactType, conflict.ArtifactID, merged.ID, actor, &conflict.InitiativeID, reason); err != nil {
			return err
		}

		return conflicts.MarkResolved(conflict.ID, strategy, resolved, actor, notes)
	})
}

// ApplyStrategy computes the resolved snapshot for a conflict. It is pure:
// no repository access, no clock beyond timestamp parsing.
func ApplyStrategy(strategy string, conflicts []domain.FieldConflict, base, baseline, draft, custom domain.Document) (domain.Document, error) {
	switch strategy {
	case domain.StrategyAcceptBaseline:
		return baseline.Clone(), nil

	case domain.StrategyKeepInitiative:
		return draft.Clone(), nil

	case domain.StrategyManualMerge:
		return applyManualMerge(conflicts, baseline, custom)

	case domain.StrategyAutoMerge:
		return applyAutoMerge(conflicts, base, baseline, draft)

	default:
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidStrategy, strategy)
	}
}

// applyManualMerge starts from the baseline and overlays the caller's value
// for every conflicting field. All conflicts must be covered.
func applyManualMerge(conflicts []domain.FieldConflict, baseline, custom domain.Document) (domain.Document, error) {
	resolved := baseline.Clone()

	var missing []string
	for _, c := range conflicts {
		value, ok := custom.GetPath(c.Path)
		if !ok {
			missing = append(missing, strings.Join(c.Path, "."))
			continue
		}
		resolved.SetPath(c.Path, value)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing values for %s", common.ErrIncompleteResolution, strings.Join(missing, ", "))
	}
	return resolved, nil
}

// applyAutoMerge performs a three-way merge: baseline wins by default,
// initiative-only changes carry over untouched, and each double-edited field
// is merged by its per-field rule.
func applyAutoMerge(conflicts []domain.FieldConflict, base, baseline, draft domain.Document) (domain.Document, error) {
	if fields := manualFields(conflicts); len(fields) > 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrManualInterventionRequired, strings.Join(fields, ", "))
	}

	resolved := baseline.Clone()
	if resolved == nil {
		resolved = domain.Document{}
	}

	conflictPaths := make(map[string]bool, len(conflicts))
	for _, c := range conflicts {
		conflictPaths[strings.Join(c.Path, ".")] = true
	}

	// Carry over changes made only on the initiative side.
	var overlay func(origObj, baseObj, initObj map[string]interface{}, path []string)
	overlay = func(origObj, baseObj, initObj map[string]interface{}, path []string) {
		for _, key := range unionKeys3(origObj, baseObj, initObj) {
			currentPath := append(append([]string{}, path...), key)
			if conflictPaths[strings.Join(currentPath, ".")] {
				continue
			}

			origVal := origObj[key]
			baseVal := baseObj[key]
			initVal := initObj[key]

			baselineChanged := !diff.Equal(origVal, baseVal)
			initiativeChanged := !diff.Equal(origVal, initVal)

			if initiativeChanged && !baselineChanged {
				resolved.SetPath(currentPath, initVal)
				continue
			}

			origMap, origIsMap := origVal.(map[string]interface{})
			if !origIsMap {
				continue
			}
			baseMap, _ := baseVal.(map[string]interface{})
			initMap, _ := initVal.(map[string]interface{})
			if baseMap == nil {
				baseMap = map[string]interface{}{}
			}
			if initMap == nil {
				initMap = map[string]interface{}{}
			}
			overlay(origMap, baseMap, initMap, currentPath)
		}
	}
	overlay(base, baseline, draft, nil)

	for _, c := range conflicts {
		resolved.SetPath(c.Path, mergeField(c))
	}
	return resolved, nil
}

// mergeField resolves one auto-resolvable conflict by its merge rule.
func mergeField(c domain.FieldConflict) interface{} {
	switch c.MergeStrategy {
	case domain.MergeLatest:
		baseTime, baseOK := parseTime(c.BaselineValue)
		initTime, initOK := parseTime(c.InitiativeValue)
		if baseOK && initOK && baseTime.After(initTime) {
			return c.BaselineValue
		}
		return c.InitiativeValue

	case domain.MergeConcatenate:
		baseStr, baseOK := c.BaselineValue.(string)
		initStr, initOK := c.InitiativeValue.(string)
		if baseOK && initOK && baseStr != "" && initStr != "" {
			if strings.Contains(baseStr, initStr) {
				return baseStr
			}
			if strings.Contains(initStr, baseStr) {
				return initStr
			}
			return baseStr + "\n\n" + initStr
		}
		if baseOK && baseStr != "" {
			return baseStr
		}
		return c.InitiativeValue

	case domain.MergeMaxVersion:
		baseStr, baseOK := c.BaselineValue.(string)
		initStr, initOK := c.InitiativeValue.(string)
		if baseOK && initOK && strings.Compare(baseStr, initStr) > 0 {
			return c.BaselineValue
		}
		return c.InitiativeValue

	case domain.MergeStateMachine:
		baseStr, baseOK := c.BaselineValue.(string)
		initStr, initOK := c.InitiativeValue.(string)
		if baseOK && initOK && statusPrecedence[baseStr] > statusPrecedence[initStr] {
			return c.BaselineValue
		}
		return c.InitiativeValue

	default:
		// Numeric drift and free-text fields without a sharper rule keep the
		// initiative's value; that is the side actively being worked on.
		return c.InitiativeValue
	}
}

func parseTime(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func manualFields(conflicts []domain.FieldConflict) []string {
	var fields []string
	for _, c := range conflicts {
		if !c.AutoResolvable {
			fields = append(fields, strings.Join(c.Path, "."))
		}
	}
	return fields
}
