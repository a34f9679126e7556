package service

import (
	"testing"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestActionLabel(t *testing.T) {
	tests := []struct {
		name    string
		version domain.ArtifactVersion
		want    string
	}{
		{
			name:    "first version is a creation",
			version: domain.ArtifactVersion{VersionNumber: 1, ChangeType: domain.ChangeCheckout},
			want:    "Created",
		},
		{
			name:    "promoted baseline",
			version: domain.ArtifactVersion{VersionNumber: 4, IsBaseline: true, BaselinedBy: "alice"},
			want:    "Baselined",
		},
		{
			name:    "checkout draft",
			version: domain.ArtifactVersion{VersionNumber: 2, ChangeType: domain.ChangeCheckout},
			want:    "Checked out",
		},
		{
			name:    "checkin",
			version: domain.ArtifactVersion{VersionNumber: 3, ChangeType: domain.ChangeCheckin},
			want:    "Checked in",
		},
		{
			name:    "plain update",
			version: domain.ArtifactVersion{VersionNumber: 5, ChangeType: domain.ChangeUpdate},
			want:    "Updated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActionLabel(&tt.version))
		})
	}
}

func newTestAuditService() (AuditService, *MockAuditRepository, *MockVersionRepository, *MockInitiativeRepository) {
	auditRepo := new(MockAuditRepository)
	versionRepo := new(MockVersionRepository)
	initiativeRepo := new(MockInitiativeRepository)
	svc := NewAuditService(auditRepo, versionRepo, initiativeRepo)
	return svc, auditRepo, versionRepo, initiativeRepo
}

func TestGetAuditTrail(t *testing.T) {
	svc, auditRepo, _, initiativeRepo := newTestAuditService()

	initiativeID := "INIT-1"
	filter := repository.AuditFilter{InitiativeID: initiativeID}
	auditRepo.On("Search", filter).Return([]*domain.ArtifactVersion{
		{
			ID:            22,
			ArtifactType:  domain.ArtifactApplication,
			ArtifactID:    42,
			VersionNumber: 2,
			InitiativeID:  &initiativeID,
			ChangeType:    domain.ChangeCheckin,
			ChangedFields: domain.StringList{"status"},
			CreatedBy:     "alice",
		},
		{
			ID:            21,
			ArtifactType:  domain.ArtifactApplication,
			ArtifactID:    42,
			VersionNumber: 1,
			InitiativeID:  &initiativeID,
			ChangeType:    domain.ChangeCheckout,
			CreatedBy:     "alice",
		},
	}, int64(2), nil)
	// Both entries share the initiative, so the name is looked up once.
	initiativeRepo.On("FindByInitiativeID", initiativeID).
		Return(&domain.Initiative{InitiativeID: initiativeID, Name: "Cloud Migration"}, nil).Once()

	trail, err := svc.GetAuditTrail(filter)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), trail.Total)
	assert.Len(t, trail.Entries, 2)

	first := trail.Entries[0]
	assert.Equal(t, "Checked in", first.Action)
	assert.Equal(t, 2, first.VersionTo)
	if assert.NotNil(t, first.VersionFrom) {
		assert.Equal(t, 1, *first.VersionFrom)
	}
	assert.Equal(t, "Cloud Migration", first.InitiativeName)

	second := trail.Entries[1]
	assert.Equal(t, "Created", second.Action)
	assert.Nil(t, second.VersionFrom)

	initiativeRepo.AssertExpectations(t)
}

func TestGetAuditTrail_UnknownArtifactType(t *testing.T) {
	svc, _, _, _ := newTestAuditService()

	trail, err := svc.GetAuditTrail(repository.AuditFilter{ArtifactType: "widget"})

	assert.Nil(t, trail)
	assert.ErrorIs(t, err, common.ErrUnknownArtifactType)
}

func TestCompareVersions(t *testing.T) {
	svc, _, versionRepo, _ := newTestAuditService()

	versionRepo.On("FindByVersionNumber", domain.ArtifactApplication, int64(42), 1).
		Return(&domain.ArtifactVersion{
			VersionNumber: 1,
			CreatedBy:     "alice",
			CreatedAt:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			ArtifactData:  domain.Document{"name": "Billing", "status": "active"},
		}, nil)
	versionRepo.On("FindByVersionNumber", domain.ArtifactApplication, int64(42), 3).
		Return(&domain.ArtifactVersion{
			VersionNumber: 3,
			CreatedBy:     "bob",
			CreatedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			IsBaseline:    true,
			ArtifactData:  domain.Document{"name": "Billing", "status": "retired"},
		}, nil)

	comparison, err := svc.CompareVersions(domain.ArtifactApplication, 42, 1, 3)

	assert.NoError(t, err)
	assert.Equal(t, 1, comparison.VersionFrom.Number)
	assert.Equal(t, 3, comparison.VersionTo.Number)
	assert.True(t, comparison.VersionTo.IsBaseline)
	assert.Equal(t, 1, comparison.Summary.Modified)
	assert.Equal(t, 1, comparison.Summary.Unchanged)
}

func TestCompareVersions_MissingVersion(t *testing.T) {
	svc, _, versionRepo, _ := newTestAuditService()

	versionRepo.On("FindByVersionNumber", domain.ArtifactApplication, int64(42), 1).
		Return(nil, common.ErrVersionNotFound)

	comparison, err := svc.CompareVersions(domain.ArtifactApplication, 42, 1, 3)

	assert.Nil(t, comparison)
	assert.ErrorIs(t, err, common.ErrVersionNotFound)
}

func TestGetVersionHistory_DefaultLimit(t *testing.T) {
	svc, _, versionRepo, _ := newTestAuditService()

	versionRepo.On("List", domain.ArtifactApplication, int64(42), 20).
		Return([]*domain.ArtifactVersion{
			{VersionNumber: 2, CreatedBy: "alice", ChangedFields: domain.StringList{"status", "team"}},
			{VersionNumber: 1, CreatedBy: "alice", IsBaseline: true},
		}, nil)
	versionRepo.On("Count", domain.ArtifactApplication, int64(42)).Return(int64(2), nil)

	history, err := svc.GetVersionHistory(domain.ArtifactApplication, 42, 0)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), history.Total)
	assert.Len(t, history.Versions, 2)
	assert.Equal(t, 2, history.Versions[0].ChangedFieldsCount)
	versionRepo.AssertExpectations(t)
}
