package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/diff"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/archmap/archmap-backend/pkg/logger"
)

// Per-field severity by artifact type. Fields missing from a map fall back
// to medium, or low when the field is in autoResolvableFields.
var fieldSeverity = map[domain.ArtifactType]map[string]string{
	domain.ArtifactApplication: {
		"name":                  domain.SeverityCritical,
		"amlNumber":             domain.SeverityCritical,
		"status":                domain.SeverityHigh,
		"providesExtInterface":  domain.SeverityHigh,
		"consumesExtInterfaces": domain.SeverityHigh,
		"decommissionDate":      domain.SeverityHigh,
		"deployment":            domain.SeverityMedium,
		"uptime":                domain.SeverityMedium,
		"team":                  domain.SeverityMedium,
		"tmfDomain":             domain.SeverityMedium,
		"description":           domain.SeverityLow,
		"purpose":               domain.SeverityLow,
	},
	domain.ArtifactInterface: {
		"imlNumber":             domain.SeverityCritical,
		"providerApplicationId": domain.SeverityCritical,
		"consumerApplicationId": domain.SeverityCritical,
		"interfaceType":         domain.SeverityHigh,
		"middleware":            domain.SeverityHigh,
		"status":                domain.SeverityHigh,
		"version":               domain.SeverityHigh,
		"protocol":              domain.SeverityHigh,
		"dataFlow":              domain.SeverityMedium,
		"frequency":             domain.SeverityMedium,
		"description":           domain.SeverityLow,
		"sampleCode":            domain.SeverityLow,
	},
	domain.ArtifactBusinessProcess: {
		"processId":        domain.SeverityCritical,
		"name":             domain.SeverityCritical,
		"status":           domain.SeverityHigh,
		"processType":      domain.SeverityHigh,
		"businessFunction": domain.SeverityHigh,
		"startEvent":       domain.SeverityMedium,
		"endEvent":         domain.SeverityMedium,
		"description":      domain.SeverityLow,
		"documentation":    domain.SeverityLow,
	},
	domain.ArtifactInternalProcess: {
		"name":        domain.SeverityCritical,
		"status":      domain.SeverityHigh,
		"processFlow": domain.SeverityHigh,
		"department":  domain.SeverityMedium,
		"description": domain.SeverityLow,
	},
	domain.ArtifactTechnicalProcess: {
		"name":           domain.SeverityCritical,
		"status":         domain.SeverityHigh,
		"implementation": domain.SeverityHigh,
		"technology":     domain.SeverityMedium,
		"description":    domain.SeverityLow,
	},
}

// Fields that are candidates for automatic resolution.
var autoResolvableFields = map[string]bool{
	"updatedAt":      true,
	"lastChangeDate": true,
	"description":    true,
	"documentation":  true,
	"notes":          true,
	"comments":       true,
}

// Fields on an interface artifact whose change alters the contract seen by
// consumer and provider applications.
var interfaceContractFields = map[string]bool{
	"interfaceType": true,
	"protocol":      true,
	"dataFlow":      true,
	"middleware":    true,
}

// ConflictService detects double edits between a moved baseline and an
// initiative draft, scores their risk, and maintains the persisted conflict
// rows for an initiative.
type ConflictService interface {
	// AnalyzeArtifact runs a fresh three-way analysis for one artifact
	// against the draft's recorded base version.
	AnalyzeArtifact(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ConflictAnalysis, error)
	// DetectConflicts analyzes every artifact drafted in the initiative and
	// upserts a pending conflict row per artifact in conflict.
	DetectConflicts(initiativeID string) ([]*domain.Conflict, error)
	GetConflict(id uint64) (*domain.Conflict, error)
	ListConflicts(initiativeID, status string) ([]*domain.Conflict, error)
}

type conflictService struct {
	versionRepo    repository.VersionRepository
	conflictRepo   repository.ConflictRepository
	dependencyRepo repository.DependencyRepository
}

// NewConflictService creates a new ConflictService
func NewConflictService(
	versionRepo repository.VersionRepository,
	conflictRepo repository.ConflictRepository,
	dependencyRepo repository.DependencyRepository,
) ConflictService {
	return &conflictService{
		versionRepo:    versionRepo,
		conflictRepo:   conflictRepo,
		dependencyRepo: dependencyRepo,
	}
}

func (s *conflictService) AnalyzeArtifact(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ConflictAnalysis, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}

	analysis := &domain.ConflictAnalysis{
		ArtifactType:      t,
		ArtifactID:        artifactID,
		Conflicts:         []domain.FieldConflict{},
		Dependencies:      []domain.DependencyImpact{},
		AutoResolvable:    true,
		SuggestedStrategy: domain.SuggestAuto,
	}

	draft, err := s.versionRepo.FindLatestDraft(t, artifactID, initiativeID)
	if errors.Is(err, common.ErrVersionNotFound) {
		return analysis, nil
	}
	if err != nil {
		return nil, err
	}
	if draft.BaseVersionID == nil {
		return analysis, nil
	}

	base, err := s.versionRepo.FindByID(*draft.BaseVersionID)
	if err != nil {
		return nil, err
	}
	baseline, err := s.versionRepo.FindBaseline(t, artifactID)
	if err != nil {
		return nil, err
	}
	if baseline.ID == base.ID {
		// Baseline has not moved since checkout; nothing to conflict with.
		return analysis, nil
	}

	conflicts := detectFieldConflicts(t, base.ArtifactData, baseline.ArtifactData, draft.ArtifactData)

	impacts, err := s.analyzeDependencyImpacts(t, baseline.ID, conflicts)
	if err != nil {
		return nil, err
	}

	analysis.Conflicts = conflicts
	analysis.Dependencies = impacts
	analysis.RiskScore = riskScore(conflicts, impacts)
	analysis.AutoResolvable = allAutoResolvable(conflicts)
	analysis.SuggestedStrategy = suggestedStrategy(analysis.RiskScore, analysis.AutoResolvable, len(conflicts))
	return analysis, nil
}

func (s *conflictService) DetectConflicts(initiativeID string) ([]*domain.Conflict, error) {
	drafts, err := s.versionRepo.ListByInitiative(initiativeID)
	if err != nil {
		return nil, err
	}

	// One analysis per artifact; ListByInitiative orders newest draft first
	// within each lineage.
	type artifactKey struct {
		t  domain.ArtifactType
		id int64
	}
	seen := make(map[artifactKey]bool)

	var detected []*domain.Conflict
	for _, draft := range drafts {
		key := artifactKey{draft.ArtifactType, draft.ArtifactID}
		if seen[key] {
			continue
		}
		seen[key] = true

		analysis, err := s.AnalyzeArtifact(draft.ArtifactType, draft.ArtifactID, initiativeID)
		if err != nil {
			return nil, err
		}
		if len(analysis.Conflicts) == 0 {
			continue
		}

		conflict, err := s.upsertConflict(initiativeID, draft, analysis)
		if err != nil {
			return nil, err
		}
		detected = append(detected, conflict)

		logger.GetLogger().Info().
			Str("initiative_id", initiativeID).
			Str("artifact_type", string(draft.ArtifactType)).
			Int64("artifact_id", draft.ArtifactID).
			Int("conflict_count", len(analysis.Conflicts)).
			Int("risk_score", analysis.RiskScore).
			Msg("conflict detected")
	}
	return detected, nil
}

// upsertConflict refreshes the pending row for the artifact or creates one.
func (s *conflictService) upsertConflict(initiativeID string, draft *domain.ArtifactVersion, analysis *domain.ConflictAnalysis) (*domain.Conflict, error) {
	fields := conflictingFieldNames(analysis.Conflicts)

	existing, err := s.conflictRepo.FindPending(initiativeID, draft.ArtifactType, draft.ArtifactID)
	if err == nil {
		if err := s.conflictRepo.UpdateAnalysis(existing.ID, fields, *analysis); err != nil {
			return nil, err
		}
		return s.conflictRepo.FindByID(existing.ID)
	}
	if !errors.Is(err, common.ErrConflictNotFound) {
		return nil, err
	}

	baseline, err := s.versionRepo.FindBaseline(draft.ArtifactType, draft.ArtifactID)
	if err != nil {
		return nil, err
	}
	conflict := &domain.Conflict{
		InitiativeID:        initiativeID,
		ArtifactType:        draft.ArtifactType,
		ArtifactID:          draft.ArtifactID,
		BaselineVersionID:   baseline.ID,
		InitiativeVersionID: draft.ID,
		ConflictingFields:   fields,
		ConflictDetails:     *analysis,
		ResolutionStatus:    domain.ResolutionPending,
	}
	if err := s.conflictRepo.Create(conflict); err != nil {
		return nil, err
	}
	return conflict, nil
}

func (s *conflictService) GetConflict(id uint64) (*domain.Conflict, error) {
	return s.conflictRepo.FindByID(id)
}

func (s *conflictService) ListConflicts(initiativeID, status string) ([]*domain.Conflict, error) {
	return s.conflictRepo.ListByInitiative(initiativeID, status)
}

// detectFieldConflicts walks all three snapshots and reports every field
// changed on both sides since the base version. Nested plain objects are
// recursed into; severity lookups use the dotted field path.
func detectFieldConflicts(t domain.ArtifactType, base, baseline, initiative domain.Document) []domain.FieldConflict {
	severityMap := fieldSeverity[t]
	var conflicts []domain.FieldConflict

	var walk func(origObj, baseObj, initObj map[string]interface{}, path []string)
	walk = func(origObj, baseObj, initObj map[string]interface{}, path []string) {
		for _, key := range unionKeys3(origObj, baseObj, initObj) {
			currentPath := append(append([]string{}, path...), key)
			fieldPath := strings.Join(currentPath, ".")

			origVal := origObj[key]
			baseVal := baseObj[key]
			initVal := initObj[key]

			baselineChanged := !diff.Equal(origVal, baseVal)
			initiativeChanged := !diff.Equal(origVal, initVal)

			switch {
			case baselineChanged && initiativeChanged:
				if diff.Equal(baseVal, initVal) {
					// Both sides landed on the same value.
					continue
				}
				severity, ok := severityMap[fieldPath]
				if !ok {
					severity = domain.SeverityMedium
					if autoResolvableFields[key] {
						severity = domain.SeverityLow
					}
				}
				conflicts = append(conflicts, domain.FieldConflict{
					Field:           key,
					Path:            currentPath,
					OriginalValue:   origVal,
					BaselineValue:   baseVal,
					InitiativeValue: initVal,
					Severity:        severity,
					AutoResolvable:  isAutoResolvable(key, baseVal, initVal),
					MergeStrategy:   mergeStrategy(key, baseVal, initVal),
				})
			default:
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
				walk(origMap, baseMap, initMap, currentPath)
			}
		}
	}

	walk(base, baseline, initiative, nil)
	return conflicts
}

// isAutoResolvable decides whether the engine may merge the field without a
// human in the loop.
func isAutoResolvable(field string, baselineValue, initiativeValue interface{}) bool {
	// Timestamps always merge to the latest value.
	if strings.Contains(field, "Date") || strings.Contains(field, "At") {
		return true
	}

	// Free-text fields merge when one side contains the other, or when the
	// values are not strings at all.
	if autoResolvableFields[field] {
		baseStr, baseOK := baselineValue.(string)
		initStr, initOK := initiativeValue.(string)
		if baseOK && initOK {
			return strings.Contains(baseStr, initStr) || strings.Contains(initStr, baseStr)
		}
		return true
	}

	// Numeric drift under ten percent of the mean is considered minor.
	baseNum, baseOK := toFloat(baselineValue)
	initNum, initOK := toFloat(initiativeValue)
	if baseOK && initOK {
		avg := (baseNum + initNum) / 2
		if avg == 0 {
			return baseNum == initNum
		}
		return math.Abs(baseNum-initNum)/math.Abs(avg) < 0.1
	}

	return false
}

// mergeStrategy names the per-field rule the resolution engine applies
// during an auto merge.
func mergeStrategy(field string, baselineValue, initiativeValue interface{}) string {
	switch {
	case field == "description" || field == "documentation":
		return domain.MergeConcatenate
	case strings.Contains(field, "Date") || strings.Contains(field, "At"):
		return domain.MergeLatest
	case field == "version" || strings.Contains(field, "Version"):
		return domain.MergeMaxVersion
	case field == "status":
		return domain.MergeStateMachine
	}
	if _, baseOK := toFloat(baselineValue); baseOK {
		if _, initOK := toFloat(initiativeValue); initOK {
			return domain.MergeNumeric
		}
	}
	return domain.MergeManual
}

// analyzeDependencyImpacts surfaces artifacts that depend on the conflicted
// baseline and would be affected by resolving it.
func (s *conflictService) analyzeDependencyImpacts(t domain.ArtifactType, baselineVersionID uint64, conflicts []domain.FieldConflict) ([]domain.DependencyImpact, error) {
	impacts := []domain.DependencyImpact{}

	var criticalFields, highFields []string
	for _, c := range conflicts {
		switch c.Severity {
		case domain.SeverityCritical:
			criticalFields = append(criticalFields, c.Field)
		case domain.SeverityHigh:
			highFields = append(highFields, c.Field)
		}
	}

	dependents, err := s.dependencyRepo.FindDependents(baselineVersionID)
	if err != nil {
		return nil, err
	}
	for _, dep := range dependents {
		switch {
		case len(criticalFields) > 0:
			impacts = append(impacts, domain.DependencyImpact{
				ArtifactType: dep.ArtifactType,
				ArtifactID:   dep.ArtifactID,
				ImpactType:   "breaking",
				Description:  fmt.Sprintf("critical changes to %s may break this dependency", strings.Join(criticalFields, ", ")),
			})
		case len(highFields) > 0 && dep.Dependency.DependencyStrength == domain.StrengthStrong:
			impacts = append(impacts, domain.DependencyImpact{
				ArtifactType: dep.ArtifactType,
				ArtifactID:   dep.ArtifactID,
				ImpactType:   "warning",
				Description:  fmt.Sprintf("changes to %s may affect this dependency", strings.Join(highFields, ", ")),
			})
		}
	}

	// Interface contract changes always affect both endpoint applications,
	// whether or not explicit dependency edges exist.
	if t == domain.ArtifactInterface {
		for _, c := range conflicts {
			if interfaceContractFields[c.Field] {
				impacts = append(impacts, domain.DependencyImpact{
					ArtifactType: domain.ArtifactApplication,
					ArtifactID:   0,
					ImpactType:   "warning",
					Description:  "interface contract changes may require updates to consumer and provider applications",
				})
				break
			}
		}
	}

	return impacts, nil
}

// riskScore folds conflict severities and dependency impacts into a 0-100
// score.
func riskScore(conflicts []domain.FieldConflict, impacts []domain.DependencyImpact) int {
	severityScores := map[string]int{
		domain.SeverityLow:      1,
		domain.SeverityMedium:   3,
		domain.SeverityHigh:     5,
		domain.SeverityCritical: 10,
	}
	impactScores := map[string]int{
		"info":     1,
		"warning":  5,
		"breaking": 15,
	}

	score := 0
	for _, c := range conflicts {
		score += severityScores[c.Severity]
		if !c.AutoResolvable {
			score += 2
		}
	}
	for _, impact := range impacts {
		score += impactScores[impact.ImpactType]
	}
	if score > 100 {
		score = 100
	}
	return score
}

func suggestedStrategy(riskScore int, autoResolvable bool, conflictCount int) string {
	if riskScore > 50 || conflictCount > 10 {
		return domain.SuggestEscalate
	}
	if autoResolvable && riskScore < 20 {
		return domain.SuggestAuto
	}
	return domain.SuggestManual
}

func allAutoResolvable(conflicts []domain.FieldConflict) bool {
	for _, c := range conflicts {
		if !c.AutoResolvable {
			return false
		}
	}
	return true
}

func conflictingFieldNames(conflicts []domain.FieldConflict) domain.StringList {
	fields := make(domain.StringList, 0, len(conflicts))
	for _, c := range conflicts {
		fields = append(fields, strings.Join(c.Path, "."))
	}
	return fields
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func unionKeys3(a, b, c map[string]interface{}) []string {
	seen := make(map[string]bool, len(a)+len(b)+len(c))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	for k := range c {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
