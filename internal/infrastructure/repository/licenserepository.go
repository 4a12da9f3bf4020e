package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"skillforge/internal/domain/license"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/db"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

// LicenseRepositoryImpl implements the license.Repository interface
type LicenseRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewLicenseRepository creates a new license repository instance
func NewLicenseRepository(gdb *gorm.DB, logger logger.Interface) license.Repository {
	return &LicenseRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a new license record
func (r *LicenseRepositoryImpl) Create(ctx context.Context, l *license.License) error {
	model, err := licenseToModel(l)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("tenant already has a license")
		}
		r.logger.Errorw("failed to create license",
			"tenant_id", l.TenantID(),
			"error", err)
		return fmt.Errorf("failed to create license: %w", err)
	}

	if err := l.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set license ID: %w", err)
	}

	r.logger.Infow("license created",
		"id", model.ID,
		"tenant_id", model.TenantID,
		"tier", model.Tier)
	return nil
}

// Update persists license changes with optimistic locking
func (r *LicenseRepositoryImpl) Update(ctx context.Context, l *license.License) error {
	model, err := licenseToModel(l)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenseModel{}).
		Where("id = ? AND version = ?", l.ID(), l.Version()-1).
		Updates(map[string]any{
			"tier":                   model.Tier,
			"status":                 model.Status,
			"expires_at":             model.ExpiresAt,
			"current_period_end":     model.CurrentPeriodEnd,
			"stripe_subscription_id": model.StripeSubscriptionID,
			"features":               model.Features,
			"max_users":              model.MaxUsers,
			"max_deployments":        model.MaxDeployments,
			"version":                model.Version,
			"updated_at":             model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update license", "id", l.ID(), "error", result.Error)
		return fmt.Errorf("failed to update license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("license was modified concurrently")
	}
	return nil
}

// GetByTenant returns the tenant's license, or nil when none exists
func (r *LicenseRepositoryImpl) GetByTenant(ctx context.Context, tenantID string) (*license.License, error) {
	var model models.LicenseModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get license", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return licenseToDomain(&model)
}

// GetBySID retrieves a license by its short ID
func (r *LicenseRepositoryImpl) GetBySID(ctx context.Context, sid string) (*license.License, error) {
	var model models.LicenseModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, license.ErrLicenseNotFound
		}
		return nil, fmt.Errorf("failed to get license: %w", err)
	}
	return licenseToDomain(&model)
}

func licenseToModel(l *license.License) (*models.LicenseModel, error) {
	features, err := json.Marshal(l.Features())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	return &models.LicenseModel{
		ID:                   l.ID(),
		SID:                  l.SID(),
		TenantID:             l.TenantID(),
		Tier:                 l.Tier().String(),
		Status:               l.Status().String(),
		ExpiresAt:            l.ExpiresAt(),
		CurrentPeriodEnd:     l.CurrentPeriodEnd(),
		StripeSubscriptionID: l.StripeSubscriptionID(),
		Features:             datatypes.JSON(features),
		MaxUsers:             l.MaxUsers(),
		MaxDeployments:       l.MaxDeployments(),
		CreatedAt:            l.CreatedAt(),
		UpdatedAt:            l.UpdatedAt(),
		Version:              l.Version(),
	}, nil
}

func licenseToDomain(m *models.LicenseModel) (*license.License, error) {
	var features []string
	if len(m.Features) > 0 {
		if err := json.Unmarshal(m.Features, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}
	return license.ReconstructLicense(
		m.ID,
		m.SID,
		m.TenantID,
		license.Tier(m.Tier),
		license.Status(m.Status),
		m.ExpiresAt,
		m.CurrentPeriodEnd,
		m.StripeSubscriptionID,
		features,
		m.MaxUsers,
		m.MaxDeployments,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
