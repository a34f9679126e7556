package service

import (
	"testing"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestDetectFieldConflicts_DoubleEdit(t *testing.T) {
	base := domain.Document{"name": "Billing", "status": "active"}
	baseline := domain.Document{"name": "Billing Core", "status": "active"}
	initiative := domain.Document{"name": "Billing Service", "status": "active"}

	conflicts := detectFieldConflicts(domain.ArtifactApplication, base, baseline, initiative)

	assert.Len(t, conflicts, 1)
	c := conflicts[0]
	assert.Equal(t, "name", c.Field)
	assert.Equal(t, []string{"name"}, c.Path)
	assert.Equal(t, "Billing", c.OriginalValue)
	assert.Equal(t, "Billing Core", c.BaselineValue)
	assert.Equal(t, "Billing Service", c.InitiativeValue)
	assert.Equal(t, domain.SeverityCritical, c.Severity)
	assert.False(t, c.AutoResolvable)
}

func TestDetectFieldConflicts_SingleSideChangeIgnored(t *testing.T) {
	base := domain.Document{"name": "Billing", "team": "alpha"}
	baseline := domain.Document{"name": "Billing Core", "team": "alpha"}
	initiative := domain.Document{"name": "Billing", "team": "beta"}

	conflicts := detectFieldConflicts(domain.ArtifactApplication, base, baseline, initiative)

	assert.Empty(t, conflicts)
}

func TestDetectFieldConflicts_ConvergentEditSkipped(t *testing.T) {
	base := domain.Document{"status": "active"}
	baseline := domain.Document{"status": "retired"}
	initiative := domain.Document{"status": "retired"}

	conflicts := detectFieldConflicts(domain.ArtifactApplication, base, baseline, initiative)

	assert.Empty(t, conflicts)
}

func TestDetectFieldConflicts_NestedObject(t *testing.T) {
	base := domain.Document{
		"name":       "Billing",
		"deployment": map[string]interface{}{"region": "eu-west", "zone": "a"},
	}
	baseline := domain.Document{
		"name":       "Billing",
		"deployment": map[string]interface{}{"region": "eu-central", "zone": "a"},
	}
	initiative := domain.Document{
		"name":       "Billing",
		"deployment": map[string]interface{}{"region": "us-east", "zone": "a"},
	}

	conflicts := detectFieldConflicts(domain.ArtifactApplication, base, baseline, initiative)

	assert.Len(t, conflicts, 1)
	assert.Equal(t, "region", conflicts[0].Field)
	assert.Equal(t, []string{"deployment", "region"}, conflicts[0].Path)
	// No severity entry for the dotted path, so it falls back to medium.
	assert.Equal(t, domain.SeverityMedium, conflicts[0].Severity)
}

func TestDetectFieldConflicts_AutoFieldFallsBackToLow(t *testing.T) {
	base := domain.Document{"notes": "a"}
	baseline := domain.Document{"notes": "b"}
	initiative := domain.Document{"notes": "c"}

	conflicts := detectFieldConflicts(domain.ArtifactBusinessProcess, base, baseline, initiative)

	assert.Len(t, conflicts, 1)
	assert.Equal(t, domain.SeverityLow, conflicts[0].Severity)
}

func TestIsAutoResolvable(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		baseline  interface{}
		draft     interface{}
		resolvable bool
	}{
		{"date fields always merge", "decommissionDate", "2026-01-01", "2026-06-01", true},
		{"timestamp fields always merge", "updatedAt", "2026-01-01T00:00:00Z", "2026-02-01T00:00:00Z", true},
		{"free text with containment", "description", "billing core", "billing core service", true},
		{"free text disjoint", "description", "handles invoices", "sends reminders", false},
		{"free text non-string", "notes", 1, 2, true},
		{"numeric drift under ten percent", "uptime", 100.0, 101.0, true},
		{"numeric drift over ten percent", "uptime", 100.0, 150.0, false},
		{"zero values equal", "retryCount", 0, 0, true},
		{"business field strings", "name", "Billing", "Payments", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.resolvable, isAutoResolvable(tt.field, tt.baseline, tt.draft))
		})
	}
}

func TestMergeStrategyByField(t *testing.T) {
	assert.Equal(t, domain.MergeConcatenate, mergeStrategy("description", "a", "b"))
	assert.Equal(t, domain.MergeConcatenate, mergeStrategy("documentation", "a", "b"))
	assert.Equal(t, domain.MergeLatest, mergeStrategy("lastChangeDate", "2026-01-01", "2026-02-01"))
	assert.Equal(t, domain.MergeLatest, mergeStrategy("updatedAt", "x", "y"))
	assert.Equal(t, domain.MergeMaxVersion, mergeStrategy("version", "1.0", "2.0"))
	assert.Equal(t, domain.MergeStateMachine, mergeStrategy("status", "active", "retired"))
	assert.Equal(t, domain.MergeNumeric, mergeStrategy("uptime", 99.5, 99.9))
	assert.Equal(t, domain.MergeManual, mergeStrategy("team", "alpha", "beta"))
}

func TestRiskScore(t *testing.T) {
	conflicts := []domain.FieldConflict{
		{Severity: domain.SeverityCritical, AutoResolvable: false},
		{Severity: domain.SeverityLow, AutoResolvable: true},
	}
	impacts := []domain.DependencyImpact{
		{ImpactType: "breaking"},
	}

	// critical 10 + manual surcharge 2 + low 1 + breaking 15
	assert.Equal(t, 28, riskScore(conflicts, impacts))
}

func TestRiskScore_CappedAt100(t *testing.T) {
	var conflicts []domain.FieldConflict
	for i := 0; i < 20; i++ {
		conflicts = append(conflicts, domain.FieldConflict{Severity: domain.SeverityCritical})
	}

	assert.Equal(t, 100, riskScore(conflicts, nil))
}

func TestSuggestedStrategy(t *testing.T) {
	assert.Equal(t, domain.SuggestEscalate, suggestedStrategy(60, true, 1))
	assert.Equal(t, domain.SuggestEscalate, suggestedStrategy(10, true, 11))
	assert.Equal(t, domain.SuggestAuto, suggestedStrategy(10, true, 2))
	assert.Equal(t, domain.SuggestManual, suggestedStrategy(30, true, 2))
	assert.Equal(t, domain.SuggestManual, suggestedStrategy(10, false, 1))
}

func TestAnalyzeArtifact_NoDraft(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	conflictRepo := new(MockConflictRepository)
	dependencyRepo := new(MockDependencyRepository)
	svc := NewConflictService(versionRepo, conflictRepo, dependencyRepo)

	versionRepo.On("FindLatestDraft", domain.ArtifactApplication, int64(42), "INIT-1").
		Return(nil, common.ErrVersionNotFound)

	analysis, err := svc.AnalyzeArtifact(domain.ArtifactApplication, 42, "INIT-1")

	assert.NoError(t, err)
	assert.Empty(t, analysis.Conflicts)
	assert.True(t, analysis.AutoResolvable)
	assert.Equal(t, domain.SuggestAuto, analysis.SuggestedStrategy)
}

func TestAnalyzeArtifact_BaselineUnmoved(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	conflictRepo := new(MockConflictRepository)
	dependencyRepo := new(MockDependencyRepository)
	svc := NewConflictService(versionRepo, conflictRepo, dependencyRepo)

	baseID := uint64(10)
	versionRepo.On("FindLatestDraft", domain.ArtifactApplication, int64(42), "INIT-1").
		Return(&domain.ArtifactVersion{ID: 11, BaseVersionID: &baseID}, nil)
	versionRepo.On("FindByID", baseID).
		Return(&domain.ArtifactVersion{ID: 10, ArtifactData: domain.Document{"name": "Billing"}}, nil)
	versionRepo.On("FindBaseline", domain.ArtifactApplication, int64(42)).
		Return(&domain.ArtifactVersion{ID: 10, ArtifactData: domain.Document{"name": "Billing"}}, nil)

	analysis, err := svc.AnalyzeArtifact(domain.ArtifactApplication, 42, "INIT-1")

	assert.NoError(t, err)
	assert.Empty(t, analysis.Conflicts)
	assert.Equal(t, 0, analysis.RiskScore)
}

func TestAnalyzeArtifact_BaselineMoved(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	conflictRepo := new(MockConflictRepository)
	dependencyRepo := new(MockDependencyRepository)
	svc := NewConflictService(versionRepo, conflictRepo, dependencyRepo)

	baseID := uint64(10)
	versionRepo.On("FindLatestDraft", domain.ArtifactApplication, int64(42), "INIT-1").
		Return(&domain.ArtifactVersion{
			ID:            11,
			BaseVersionID: &baseID,
			ArtifactData:  domain.Document{"name": "Billing Service", "status": "active"},
		}, nil)
	versionRepo.On("FindByID", baseID).
		Return(&domain.ArtifactVersion{
			ID:           10,
			ArtifactData: domain.Document{"name": "Billing", "status": "active"},
		}, nil)
	versionRepo.On("FindBaseline", domain.ArtifactApplication, int64(42)).
		Return(&domain.ArtifactVersion{
			ID:           12,
			ArtifactData: domain.Document{"name": "Billing Core", "status": "active"},
		}, nil)
	dependencyRepo.On("FindDependents", uint64(12)).Return([]repository.Dependent{}, nil)

	analysis, err := svc.AnalyzeArtifact(domain.ArtifactApplication, 42, "INIT-1")

	assert.NoError(t, err)
	assert.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, "name", analysis.Conflicts[0].Field)
	assert.False(t, analysis.AutoResolvable)
	// critical 10 + manual surcharge 2
	assert.Equal(t, 12, analysis.RiskScore)
	assert.Equal(t, domain.SuggestManual, analysis.SuggestedStrategy)
}

func TestAnalyzeDependencyImpacts_InterfaceContract(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	conflictRepo := new(MockConflictRepository)
	dependencyRepo := new(MockDependencyRepository)
	svc := &conflictService{
		versionRepo:    versionRepo,
		conflictRepo:   conflictRepo,
		dependencyRepo: dependencyRepo,
	}

	dependencyRepo.On("FindDependents", uint64(5)).Return([]repository.Dependent{}, nil)

	conflicts := []domain.FieldConflict{
		{Field: "protocol", Severity: domain.SeverityHigh},
	}
	impacts, err := svc.analyzeDependencyImpacts(domain.ArtifactInterface, 5, conflicts)

	assert.NoError(t, err)
	assert.Len(t, impacts, 1)
	assert.Equal(t, domain.ArtifactApplication, impacts[0].ArtifactType)
	assert.Equal(t, int64(0), impacts[0].ArtifactID)
	assert.Equal(t, "warning", impacts[0].ImpactType)
}

func TestAnalyzeDependencyImpacts_CriticalBreaksDependents(t *testing.T) {
	versionRepo := new(MockVersionRepository)
	conflictRepo := new(MockConflictRepository)
	dependencyRepo := new(MockDependencyRepository)
	svc := &conflictService{
		versionRepo:    versionRepo,
		conflictRepo:   conflictRepo,
		dependencyRepo: dependencyRepo,
	}

	dependencyRepo.On("FindDependents", uint64(5)).Return([]repository.Dependent{
		{
			Dependency:   domain.VersionDependency{DependencyStrength: domain.StrengthWeak},
			ArtifactType: domain.ArtifactInterface,
			ArtifactID:   7,
		},
	}, nil)

	conflicts := []domain.FieldConflict{
		{Field: "amlNumber", Severity: domain.SeverityCritical},
	}
	impacts, err := svc.analyzeDependencyImpacts(domain.ArtifactApplication, 5, conflicts)

	assert.NoError(t, err)
	assert.Len(t, impacts, 1)
	assert.Equal(t, "breaking", impacts[0].ImpactType)
	assert.Equal(t, int64(7), impacts[0].ArtifactID)
}
