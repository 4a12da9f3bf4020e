package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"skillforge/internal/domain/license"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/logger"
)

// ViolationRepositoryImpl implements the license.ViolationRepository
// interface. The table is append-only.
type ViolationRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewViolationRepository creates a new violation repository instance
func NewViolationRepository(gdb *gorm.DB, logger logger.Interface) license.ViolationRepository {
	return &ViolationRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Record appends one audit row
func (r *ViolationRepositoryImpl) Record(ctx context.Context, v license.Violation) error {
	model := &models.LicenseViolationModel{
		TenantID:   v.TenantID,
		UserID:     v.UserID,
		Reason:     v.Reason,
		Feature:    v.Feature,
		RequestID:  v.RequestID,
		OccurredAt: v.OccurredAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to record violation: %w", err)
	}
	return nil
}

// ListByTenant returns a tenant's most recent violations
func (r *ViolationRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, limit int) ([]license.Violation, error) {
	var rows []models.LicenseViolationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list violations", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}

	out := make([]license.Violation, len(rows))
	for i, m := range rows {
		out[i] = license.Violation{
			TenantID:   m.TenantID,
			UserID:     m.UserID,
			Reason:     m.Reason,
			Feature:    m.Feature,
			RequestID:  m.RequestID,
			OccurredAt: m.OccurredAt,
		}
	}
	return out, nil
}
