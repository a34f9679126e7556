package repository

import (
	"errors"
	"time"

	"github.com/archmap/archmap-backend/internal/common"
	"github.com/archmap/archmap-backend/internal/domain"
	"gorm.io/gorm"
)

// InitiativeRepository manages initiative rows and their participants.
type InitiativeRepository interface {
	Create(initiative *domain.Initiative, lead *domain.InitiativeParticipant) error
	FindByInitiativeID(initiativeID string) (*domain.Initiative, error)
	List(status string) ([]*domain.Initiative, error)
	Complete(initiativeID, actor string) error
	ListParticipants(initiativeID string) ([]*domain.InitiativeParticipant, error)
	ListActiveForUser(userID string) ([]*domain.Initiative, error)
	WithTx(tx *gorm.DB) InitiativeRepository
}

type initiativeRepository struct {
	db *gorm.DB
}

// NewInitiativeRepository creates a new InitiativeRepository
func NewInitiativeRepository(db *gorm.DB) InitiativeRepository {
	return &initiativeRepository{db: db}
}

// WithTx returns an InitiativeRepository bound to the given transaction
func (r *initiativeRepository) WithTx(tx *gorm.DB) InitiativeRepository {
	return &initiativeRepository{db: tx}
}

func (r *initiativeRepository) Create(initiative *domain.Initiative, lead *domain.InitiativeParticipant) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(initiative).Error; err != nil {
			return err
		}
		return tx.Create(lead).Error
	})
}

func (r *initiativeRepository) FindByInitiativeID(initiativeID string) (*domain.Initiative, error) {
	var initiative domain.Initiative
	err := r.db.Where("initiative_id = ?", initiativeID).First(&initiative).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrInitiativeNotFound
	}
	return &initiative, err
}

func (r *initiativeRepository) List(status string) ([]*domain.Initiative, error) {
	var initiatives []*domain.Initiative
	q := r.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&initiatives).Error
	return initiatives, err
}

func (r *initiativeRepository) Complete(initiativeID, actor string) error {
	return r.db.Model(&domain.Initiative{}).
		Where("initiative_id = ?", initiativeID).
		Updates(map[string]interface{}{
			"status":                 domain.InitiativeCompleted,
			"actual_completion_date": time.Now(),
			"updated_by":             actor,
		}).Error
}

func (r *initiativeRepository) ListParticipants(initiativeID string) ([]*domain.InitiativeParticipant, error) {
	var participants []*domain.InitiativeParticipant
	err := r.db.
		Where("initiative_id = ? AND left_at IS NULL", initiativeID).
		Find(&participants).Error
	return participants, err
}

func (r *initiativeRepository) ListActiveForUser(userID string) ([]*domain.Initiative, error) {
	var initiatives []*domain.Initiative
	err := r.db.
		Joins("JOIN initiative_participants p ON p.initiative_id = initiatives.initiative_id").
		Where("p.user_id = ? AND p.left_at IS NULL AND initiatives.status = ?", userID, domain.InitiativeActive).
		Find(&initiatives).Error
	return initiatives, err
}
