package migration

import (
	"fmt"

	"gorm.io/gorm"

	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/logger"
)

// AutoMigrateModels lists every persistence model in dependency order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ProfileModel{},
		&models.PartnerApplicationModel{},
		&models.PartnerModel{},
		&models.ApprovalKeyModel{},
		&models.LicenseModel{},
		&models.LicenseViolationModel{},
		&models.NotificationModel{},
	}
}

// GormAutoMigrateStrategy lets GORM derive the schema from the models.
// Development convenience only; deployed environments run versioned scripts.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

// NewGormAutoMigrateStrategy creates a new auto-migrate strategy
func NewGormAutoMigrateStrategy() *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

// Migrate runs GORM AutoMigrate over the given models
func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, migrateModels ...interface{}) error {
	if len(migrateModels) == 0 {
		migrateModels = AutoMigrateModels()
	}

	s.logger.Infow("starting auto-migration", "models_count", len(migrateModels))
	if err := db.AutoMigrate(migrateModels...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	s.logger.Infow("auto-migration completed successfully")
	return nil
}

// GetName returns the strategy name
func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_automigrate"
}
