package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/diff"
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/internal/repository"
	pkgcache "github.com/archmap/archmap-backend/pkg/cache"
	"github.com/archmap/archmap-backend/pkg/logger"
	"gorm.io/gorm"
)

// VersionControlService enforces single-writer checkout semantics per
// (artifact, initiative) and owns the draft lifecycle.
type VersionControlService interface {
	Checkout(t domain.ArtifactType, artifactID int64, initiativeID, actor string, baselineData domain.Document) (*domain.ArtifactVersion, error)
	Checkin(t domain.ArtifactType, artifactID int64, initiativeID, actor string, data domain.Document, changeReason string) (*domain.ArtifactVersion, error)
	CancelCheckout(t domain.ArtifactType, artifactID int64, initiativeID, actor string) error
	ListLocks(ctx context.Context, initiativeID string) ([]*domain.ArtifactLock, error)
	ListVersions(t domain.ArtifactType, artifactID int64, limit int) ([]*domain.ArtifactVersion, error)
	BaselineHistory(ctx context.Context, t domain.ArtifactType, artifactID int64) ([]*domain.BaselineHistory, error)
	// AutoCheckout opportunistically checks the artifact out in every active
	// initiative the actor participates in. Best effort: failures are logged
	// and never propagate to the caller's edit.
	AutoCheckout(t domain.ArtifactType, artifactID int64, actor string, baselineData domain.Document)
}

type versionControlService struct {
	db             *gorm.DB
	versionRepo    repository.VersionRepository
	lockRepo       repository.LockRepository
	initiativeRepo repository.InitiativeRepository
	cache          pkgcache.Service
	transact       func(fc func(tx *gorm.DB) error) error
}

// NewVersionControlService creates a new VersionControlService
func NewVersionControlService(
	db *gorm.DB,
	versionRepo repository.VersionRepository,
	lockRepo repository.LockRepository,
	initiativeRepo repository.InitiativeRepository,
	cache pkgcache.Service,
) VersionControlService {
	return &versionControlService{
		db:             db,
		versionRepo:    versionRepo,
		lockRepo:       lockRepo,
		initiativeRepo: initiativeRepo,
		cache:          cache,
		transact: func(fc func(tx *gorm.DB) error) error {
			return db.Transaction(fc)
		},
	}
}

// Checkout creates a lock and a draft version for the initiative's working
// copy. The draft resumes from the initiative's latest checked-in version
// when one exists; a first checkout clones the current baseline. Re-checkout
// by the lock holder returns the existing draft; anyone else gets
// ErrAlreadyLocked.
func (s *versionControlService) Checkout(t domain.ArtifactType, artifactID int64, initiativeID, actor string, baselineData domain.Document) (*domain.ArtifactVersion, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}

	if existing, err := s.lockRepo.Find(t, artifactID, initiativeID); err == nil {
		if existing.LockedBy == actor {
			return s.versionRepo.FindLatestDraft(t, artifactID, initiativeID)
		}
		return nil, fmt.Errorf("%w by %s", common.ErrAlreadyLocked, existing.LockedBy)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	var draft *domain.ArtifactVersion
	err := s.transact(func(tx *gorm.DB) error {
		versions := s.versionRepo.WithTx(tx)
		locks := s.lockRepo.WithTx(tx)

		var source domain.Document
		var baseVersionID uint64

		prior, err := versions.FindLatestDraft(t, artifactID, initiativeID)
		switch {
		case err == nil:
			// Work checked in during an earlier session continues here.
			source = prior.ArtifactData
			if prior.BaseVersionID != nil {
				baseVersionID = *prior.BaseVersionID
			}
		case errors.Is(err, common.ErrVersionNotFound):
			baseline, err := versions.FindBaseline(t, artifactID)
			if errors.Is(err, common.ErrVersionNotFound) {
				baseline, err = s.bootstrapBaseline(versions, t, artifactID, actor, baselineData)
			}
			if err != nil {
				return err
			}
			source = baseline.ArtifactData
			baseVersionID = baseline.ID
		default:
			return err
		}

		draft = &domain.ArtifactVersion{
			ArtifactType: t,
			ArtifactID:   artifactID,
			InitiativeID: &initiativeID,
			ArtifactData: source.Clone(),
			ChangeType:   domain.ChangeCheckout,
			CreatedBy:    actor,
		}
		if baseVersionID != 0 {
			draft.BaseVersionID = &baseVersionID
		}
		if err := versions.Create(draft); err != nil {
			return err
		}

		return locks.Create(&domain.ArtifactLock{
			ArtifactType:   t,
			ArtifactID:     artifactID,
			InitiativeID:   initiativeID,
			LockedBy:       actor,
			DraftVersionID: draft.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLocks(initiativeID)
	return draft, nil
}

// bootstrapBaseline creates version 1 as baseline from the supplied
// production snapshot for an artifact with no lineage yet.
func (s *versionControlService) bootstrapBaseline(versions repository.VersionRepository, t domain.ArtifactType, artifactID int64, actor string, data domain.Document) (*domain.ArtifactVersion, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: no baseline exists for %s %d and no production snapshot was supplied",
			common.ErrVersionNotFound, t, artifactID)
	}
	baseline := &domain.ArtifactVersion{
		ArtifactType: t,
		ArtifactID:   artifactID,
		ArtifactData: data.Clone(),
		ChangeType:   domain.ChangeCreate,
		CreatedBy:    actor,
	}
	if err := versions.Create(baseline); err != nil {
		return nil, err
	}
	if err := versions.PromoteBaseline(t, artifactID, baseline.ID, actor, nil, "initial baseline"); err != nil {
		return nil, err
	}
	return versions.FindByID(baseline.ID)
}

// Checkin persists the edited snapshot as a new draft version and releases
// the lock. The baseline is not touched.
func (s *versionControlService) Checkin(t domain.ArtifactType, artifactID int64, initiativeID, actor string, data domain.Document, changeReason string) (*domain.ArtifactVersion, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}

	lock, err := s.lockRepo.Find(t, artifactID, initiativeID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrNoCheckout
	}
	if err != nil {
		return nil, err
	}
	if lock.LockedBy != actor {
		return nil, fmt.Errorf("%w: lock is held by %s", common.ErrNotLockHolder, lock.LockedBy)
	}

	current, err := s.versionRepo.FindLatestDraft(t, artifactID, initiativeID)
	if err != nil {
		return nil, err
	}

	var version *domain.ArtifactVersion
	err = s.transact(func(tx *gorm.DB) error {
		versions := s.versionRepo.WithTx(tx)
		locks := s.lockRepo.WithTx(tx)

		version = &domain.ArtifactVersion{
			ArtifactType:  t,
			ArtifactID:    artifactID,
			InitiativeID:  &initiativeID,
			BaseVersionID: current.BaseVersionID,
			ArtifactData:  data.Clone(),
			ChangedFields: diff.ChangedFields(current.ArtifactData, data),
			ChangeType:    domain.ChangeCheckin,
			ChangeReason:  changeReason,
			CreatedBy:     actor,
		}
		if err := versions.Create(version); err != nil {
			return err
		}

		released, err := locks.Delete(t, artifactID, initiativeID)
		if err != nil {
			return err
		}
		if !released {
			return common.ErrNoCheckout
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateLocks(initiativeID)
	return version, nil
}

// CancelCheckout discards the current session's draft and releases the lock.
// Versions checked in during earlier sessions are history and stay intact.
// Idempotent: a missing lock means already cancelled.
func (s *versionControlService) CancelCheckout(t domain.ArtifactType, artifactID int64, initiativeID, actor string) error {
	lock, err := s.lockRepo.Find(t, artifactID, initiativeID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if lock.LockedBy != actor {
		return fmt.Errorf("%w: lock is held by %s", common.ErrNotLockHolder, lock.LockedBy)
	}

	err = s.transact(func(tx *gorm.DB) error {
		if lock.DraftVersionID != 0 {
			if err := s.versionRepo.WithTx(tx).DeleteDraft(lock.DraftVersionID); err != nil {
				return err
			}
		}
		_, err := s.lockRepo.WithTx(tx).Delete(t, artifactID, initiativeID)
		return err
	})
	if err != nil {
		return err
	}

	s.invalidateLocks(initiativeID)
	return nil
}

func (s *versionControlService) ListLocks(ctx context.Context, initiativeID string) ([]*domain.ArtifactLock, error) {
	if s.cache != nil {
		var cached []*domain.ArtifactLock
		if err := s.cache.GetLocks(ctx, initiativeID, &cached); err == nil {
			return cached, nil
		}
	}

	locks, err := s.lockRepo.ListByInitiative(initiativeID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetLocks(ctx, initiativeID, locks); err != nil {
			logger.GetLogger().Warn().Err(err).Str("initiative_id", initiativeID).Msg("lock cache write failed")
		}
	}
	return locks, nil
}

func (s *versionControlService) ListVersions(t domain.ArtifactType, artifactID int64, limit int) ([]*domain.ArtifactVersion, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}
	return s.versionRepo.List(t, artifactID, limit)
}

// BaselineHistory lists the artifact's baseline promotions, newest first.
// Cached with a short TTL; promotions shortly before a read may lag.
func (s *versionControlService) BaselineHistory(ctx context.Context, t domain.ArtifactType, artifactID int64) ([]*domain.BaselineHistory, error) {
	if !domain.ValidArtifactType(t) {
		return nil, common.ErrUnknownArtifactType
	}

	if s.cache != nil {
		var cached []*domain.BaselineHistory
		if err := s.cache.GetBaselineHistory(ctx, string(t), artifactID, &cached); err == nil {
			return cached, nil
		}
	}

	history, err := s.versionRepo.ListBaselineHistory(t, artifactID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBaselineHistory(ctx, string(t), artifactID, history); err != nil {
			logger.GetLogger().Warn().Err(err).
				Str("artifact_type", string(t)).
				Int64("artifact_id", artifactID).
				Msg("baseline history cache write failed")
		}
	}
	return history, nil
}

func (s *versionControlService) AutoCheckout(t domain.ArtifactType, artifactID int64, actor string, baselineData domain.Document) {
	initiatives, err := s.initiativeRepo.ListActiveForUser(actor)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Str("user_id", actor).Msg("auto-checkout: initiative lookup failed")
		return
	}

	for _, initiative := range initiatives {
		if _, err := s.lockRepo.Find(t, artifactID, initiative.InitiativeID); err == nil {
			continue
		}
		if _, err := s.Checkout(t, artifactID, initiative.InitiativeID, actor, baselineData); err != nil {
			logger.GetLogger().Warn().Err(err).
				Str("artifact_type", string(t)).
				Int64("artifact_id", artifactID).
				Str("initiative_id", initiative.InitiativeID).
				Msg("auto-checkout failed")
		}
	}
}

func (s *versionControlService) invalidateLocks(initiativeID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLocks(context.Background(), initiativeID); err != nil {
		logger.GetLogger().Warn().Err(err).Str("initiative_id", initiativeID).Msg("lock cache invalidation failed")
	}
}
