package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	pkgcache "github.com/archmap/archmap-backend/pkg/cache"
	"github.com/archmap/archmap-backend/pkg/logger"
	"gorm.io/gorm"
)

// InitiativeService manages initiative lifecycle up to and including the
// final baseline merge.
type InitiativeService interface {
	Create(req *domain.CreateInitiativeRequest, actor string) (*domain.Initiative, error)
	Get(initiativeID string) (*domain.Initiative, error)
	List(status string) ([]*domain.Initiative, error)
	ListParticipants(initiativeID string) ([]*domain.InitiativeParticipant, error)
	// BaselineInitiative promotes every drafted artifact to baseline and
	// completes the initiative. Refused while unresolved conflicts remain.
	BaselineInitiative(initiativeID, actor string) ([]*domain.ArtifactVersion, error)
}

type initiativeService struct {
	db             *gorm.DB
	initiativeRepo repository.InitiativeRepository
	versionRepo    repository.VersionRepository
	lockRepo       repository.LockRepository
	conflictRepo   repository.ConflictRepository
	cache          pkgcache.Service
}

// NewInitiativeService creates a new InitiativeService
func NewInitiativeService(
	db *gorm.DB,
	initiativeRepo repository.InitiativeRepository,
	versionRepo repository.VersionRepository,
	lockRepo repository.LockRepository,
	conflictRepo repository.ConflictRepository,
	cache pkgcache.Service,
) InitiativeService {
	return &initiativeService{
		db:             db,
		initiativeRepo: initiativeRepo,
		versionRepo:    versionRepo,
		lockRepo:       lockRepo,
		conflictRepo:   conflictRepo,
		cache:          cache,
	}
}

// newInitiativeID builds a unique external identifier, e.g.
// INIT-1724900000000-483920.
func newInitiativeID() string {
	return fmt.Sprintf("INIT-%d-%06d", time.Now().UnixMilli(), rand.Intn(1000000))
}

func (s *initiativeService) Create(req *domain.CreateInitiativeRequest, actor string) (*domain.Initiative, error) {
	priority := req.Priority
	if priority == "" {
		priority = "medium"
	}

	initiative := &domain.Initiative{
		InitiativeID:          newInitiativeID(),
		Name:                  req.Name,
		Description:           req.Description,
		BusinessJustification: req.BusinessJustification,
		Status:                domain.InitiativeActive,
		Priority:              priority,
		TargetCompletionDate:  req.TargetCompletionDate,
		CreatedBy:             actor,
	}
	lead := &domain.InitiativeParticipant{
		InitiativeID: initiative.InitiativeID,
		UserID:       actor,
		Role:         "lead",
		AddedBy:      actor,
	}
	if err := s.initiativeRepo.Create(initiative, lead); err != nil {
		return nil, err
	}

	logger.GetLogger().Info().
		Str("initiative_id", initiative.InitiativeID).
		Str("created_by", actor).
		Msg("initiative created")
	return initiative, nil
}

func (s *initiativeService) Get(initiativeID string) (*domain.Initiative, error) {
	return s.initiativeRepo.FindByInitiativeID(initiativeID)
}

func (s *initiativeService) List(status string) ([]*domain.Initiative, error) {
	return s.initiativeRepo.List(status)
}

func (s *initiativeService) ListParticipants(initiativeID string) ([]*domain.InitiativeParticipant, error) {
	if _, err := s.initiativeRepo.FindByInitiativeID(initiativeID); err != nil {
		return nil, err
	}
	return s.initiativeRepo.ListParticipants(initiativeID)
}

func (s *initiativeService) BaselineInitiative(initiativeID, actor string) ([]*domain.ArtifactVersion, error) {
	initiative, err := s.initiativeRepo.FindByInitiativeID(initiativeID)
	if err != nil {
		return nil, err
	}

	pending, err := s.conflictRepo.CountPending(initiativeID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, fmt.Errorf("%w: %d pending", common.ErrUnresolvedConflicts, pending)
	}

	drafts, err := s.versionRepo.ListByInitiative(initiativeID)
	if err != nil {
		return nil, err
	}

	// Newest draft per artifact; ListByInitiative orders version_number DESC
	// within each lineage.
	type artifactKey struct {
		t  domain.ArtifactType
		id int64
	}
	latest := make(map[artifactKey]*domain.ArtifactVersion)
	var order []artifactKey
	for _, draft := range drafts {
		key := artifactKey{draft.ArtifactType, draft.ArtifactID}
		if _, ok := latest[key]; !ok {
			latest[key] = draft
			order = append(order, key)
		}
	}

	var baselined []*domain.ArtifactVersion
	err = s.db.Transaction(func(tx *gorm.DB) error {
		versions := s.versionRepo.WithTx(tx)
		locks := s.lockRepo.WithTx(tx)
		conflicts := s.conflictRepo.WithTx(tx)
		initiatives := s.initiativeRepo.WithTx(tx)

		for _, key := range order {
			draft := latest[key]

			// Resolved conflicts already promoted their merged snapshot;
			// re-promoting the stale draft would undo the resolution.
			if _, err := conflicts.FindResolved(initiativeID, key.t, key.id); err == nil {
				continue
			} else if !errors.Is(err, common.ErrConflictNotFound) {
				return err
			}

			version := &domain.ArtifactVersion{
				ArtifactType:  key.t,
				ArtifactID:    key.id,
				InitiativeID:  &initiativeID,
				BaseVersionID: draft.BaseVersionID,
				ArtifactData:  draft.ArtifactData.Clone(),
				ChangedFields: draft.ChangedFields,
				ChangeType:    domain.ChangeBaseline,
				ChangeReason:  fmt.Sprintf("Baselined from initiative %s", initiativeID),
				CreatedBy:     actor,
			}
			if err := versions.Create(version); err != nil {
				return err
			}
			if err := versions.PromoteBaseline(key.t, key.id, version.ID, actor, &initiativeID, version.ChangeReason); err != nil {
				return err
			}
			baselined = append(baselined, version)
		}

		if err := locks.DeleteByInitiative(initiativeID); err != nil {
			return err
		}
		return initiatives.Complete(initiativeID, actor)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLocks(context.Background(), initiativeID); err != nil {
			logger.GetLogger().Warn().Err(err).Str("initiative_id", initiativeID).Msg("lock cache invalidation failed")
		}
	}

	logger.GetLogger().Info().
		Str("initiative_id", initiative.InitiativeID).
		Int("artifacts", len(baselined)).
		Str("baselined_by", actor).
		Msg("initiative baselined")
	return baselined, nil
}
