package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/logger"
)

// ProfileRepositoryImpl implements the profile.Repository interface
type ProfileRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(gdb *gorm.DB, logger logger.Interface) profile.Repository {
	return &ProfileRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// GetByID retrieves a profile scoped to a tenant. The tenant filter is part
// of the query so cross-tenant lookups read as absence.
func (r *ProfileRepositoryImpl) GetByID(ctx context.Context, tenantID, userID string) (*profile.Profile, error) {
	var model models.ProfileModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", userID, tenantID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, profile.ErrProfileNotFound
		}
		r.logger.Errorw("failed to get profile", "user_id", userID, "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile.Profile{
		ID:        model.ID,
		TenantID:  model.TenantID,
		Email:     model.Email,
		FullName:  model.FullName,
		Role:      tenant.Role(model.Role),
		CreatedAt: model.CreatedAt,
	}, nil
}

// CountByTenant returns the tenant's current seat usage
func (r *ProfileRepositoryImpl) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}
