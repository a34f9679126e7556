package migration

import (
	"github.com/archmap/archmap-backend/internal/domain"
	"github.com/archmap/archmap-backend/pkg/logger"
	"gorm.io/gorm"
)

// Run applies the schema for all version control tables
func Run(db *gorm.DB) error {
	logger.GetLogger().Info().Msg("running database migration")

	return db.AutoMigrate(
		&domain.ArtifactVersion{},
		&domain.ArtifactLock{},
		&domain.BaselineHistory{},
		&domain.Conflict{},
		&domain.Initiative{},
		&domain.InitiativeParticipant{},
		&domain.VersionDependency{},
	)
}
