package service

import (
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockVersionRepository is a mock implementation of VersionRepository
type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) WithTx(tx *gorm.DB) repository.VersionRepository {
	return m
}

func (m *MockVersionRepository) Create(version *domain.ArtifactVersion) error {
	args := m.Called(version)
	return args.Error(0)
}

func (m *MockVersionRepository) FindByID(id uint64) (*domain.ArtifactVersion, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) FindBaseline(t domain.ArtifactType, artifactID int64) (*domain.ArtifactVersion, error) {
	args := m.Called(t, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) FindLatestDraft(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactVersion, error) {
	args := m.Called(t, artifactID, initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) FindByVersionNumber(t domain.ArtifactType, artifactID int64, versionNumber int) (*domain.ArtifactVersion, error) {
	args := m.Called(t, artifactID, versionNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) List(t domain.ArtifactType, artifactID int64, limit int) ([]*domain.ArtifactVersion, error) {
	args := m.Called(t, artifactID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) ListByInitiative(initiativeID string) ([]*domain.ArtifactVersion, error) {
	args := m.Called(initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactVersion), args.Error(1)
}

func (m *MockVersionRepository) Count(t domain.ArtifactType, artifactID int64) (int64, error) {
	args := m.Called(t, artifactID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVersionRepository) PromoteBaseline(t domain.ArtifactType, artifactID int64, versionID uint64, actor string, initiativeID *string, reason string) error {
	args := m.Called(t, artifactID, versionID, actor, initiativeID, reason)
	return args.Error(0)
}

func (m *MockVersionRepository) ListBaselineHistory(t domain.ArtifactType, artifactID int64) ([]*domain.BaselineHistory, error) {
	args := m.Called(t, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BaselineHistory), args.Error(1)
}

func (m *MockVersionRepository) DeleteDraft(id uint64) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockLockRepository is a mock implementation of LockRepository
type MockLockRepository struct {
	mock.Mock
}

func (m *MockLockRepository) WithTx(tx *gorm.DB) repository.LockRepository {
	return m
}

func (m *MockLockRepository) Create(lock *domain.ArtifactLock) error {
	args := m.Called(lock)
	return args.Error(0)
}

func (m *MockLockRepository) Find(t domain.ArtifactType, artifactID int64, initiativeID string) (*domain.ArtifactLock, error) {
	args := m.Called(t, artifactID, initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ArtifactLock), args.Error(1)
}

func (m *MockLockRepository) FindByArtifact(t domain.ArtifactType, artifactID int64) ([]*domain.ArtifactLock, error) {
	args := m.Called(t, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactLock), args.Error(1)
}

func (m *MockLockRepository) ListByInitiative(initiativeID string) ([]*domain.ArtifactLock, error) {
	args := m.Called(initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ArtifactLock), args.Error(1)
}

func (m *MockLockRepository) Delete(t domain.ArtifactType, artifactID int64, initiativeID string) (bool, error) {
	args := m.Called(t, artifactID, initiativeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockRepository) DeleteByInitiative(initiativeID string) error {
	args := m.Called(initiativeID)
	return args.Error(0)
}

// MockInitiativeRepository is a mock implementation of InitiativeRepository
type MockInitiativeRepository struct {
	mock.Mock
}

func (m *MockInitiativeRepository) WithTx(tx *gorm.DB) repository.InitiativeRepository {
	return m
}

func (m *MockInitiativeRepository) Create(initiative *domain.Initiative, lead *domain.InitiativeParticipant) error {
	args := m.Called(initiative, lead)
	return args.Error(0)
}

func (m *MockInitiativeRepository) FindByInitiativeID(initiativeID string) (*domain.Initiative, error) {
	args := m.Called(initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Initiative), args.Error(1)
}

func (m *MockInitiativeRepository) List(status string) ([]*domain.Initiative, error) {
	args := m.Called(status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Initiative), args.Error(1)
}

func (m *MockInitiativeRepository) Complete(initiativeID, actor string) error {
	args := m.Called(initiativeID, actor)
	return args.Error(0)
}

func (m *MockInitiativeRepository) ListParticipants(initiativeID string) ([]*domain.InitiativeParticipant, error) {
	args := m.Called(initiativeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InitiativeParticipant), args.Error(1)
}

func (m *MockInitiativeRepository) ListActiveForUser(userID string) ([]*domain.Initiative, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Initiative), args.Error(1)
}

// MockConflictRepository is a mock implementation of ConflictRepository
type MockConflictRepository struct {
	mock.Mock
}

func (m *MockConflictRepository) WithTx(tx *gorm.DB) repository.ConflictRepository {
	return m
}

func (m *MockConflictRepository) Create(conflict *domain.Conflict) error {
	args := m.Called(conflict)
	return args.Error(0)
}

func (m *MockConflictRepository) FindByID(id uint64) (*domain.Conflict, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conflict), args.Error(1)
}

func (m *MockConflictRepository) FindPending(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error) {
	args := m.Called(initiativeID, t, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conflict), args.Error(1)
}

func (m *MockConflictRepository) ListByInitiative(initiativeID, status string) ([]*domain.Conflict, error) {
	args := m.Called(initiativeID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conflict), args.Error(1)
}

func (m *MockConflictRepository) CountPending(initiativeID string) (int64, error) {
	args := m.Called(initiativeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConflictRepository) FindResolved(initiativeID string, t domain.ArtifactType, artifactID int64) (*domain.Conflict, error) {
	args := m.Called(initiativeID, t, artifactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conflict), args.Error(1)
}

func (m *MockConflictRepository) UpdateAnalysis(id uint64, fields domain.StringList, analysis domain.ConflictAnalysis) error {
	args := m.Called(id, fields, analysis)
	return args.Error(0)
}

func (m *MockConflictRepository) MarkResolved(id uint64, strategy string, resolvedData domain.Document, actor, notes string) error {
	args := m.Called(id, strategy, resolvedData, actor, notes)
	return args.Error(0)
}

// MockDependencyRepository is a mock implementation of DependencyRepository
type MockDependencyRepository struct {
	mock.Mock
}

func (m *MockDependencyRepository) Create(dep *domain.VersionDependency) error {
	args := m.Called(dep)
	return args.Error(0)
}

func (m *MockDependencyRepository) FindDependents(versionID uint64) ([]repository.Dependent, error) {
	args := m.Called(versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.Dependent), args.Error(1)
}

func (m *MockDependencyRepository) ListForVersion(versionID uint64) ([]*domain.VersionDependency, error) {
	args := m.Called(versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.VersionDependency), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Search(filter repository.AuditFilter) ([]*domain.ArtifactVersion, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ArtifactVersion), args.Get(1).(int64), args.Error(2)
}
