package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"skillforge/internal/domain/partner"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/db"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

// ApplicationRepositoryImpl implements the partner.ApplicationRepository interface
type ApplicationRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewApplicationRepository creates a new application repository instance
func NewApplicationRepository(gdb *gorm.DB, logger logger.Interface) partner.ApplicationRepository {
	return &ApplicationRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Create creates a new intake application
func (r *ApplicationRepositoryImpl) Create(ctx context.Context, a *partner.Application) error {
	model, err := applicationToModel(a)
	if err != nil {
		return err
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("application already exists")
		}
		r.logger.Errorw("failed to create application",
			"sid", a.SID(),
			"tenant_id", a.TenantID(),
			"error", err)
		return fmt.Errorf("failed to create application: %w", err)
	}

	if err := a.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set application ID: %w", err)
	}

	r.logger.Infow("application created",
		"id", model.ID,
		"sid", model.SID,
		"tenant_id", model.TenantID)
	return nil
}

// GetBySID retrieves an application by its short ID
func (r *ApplicationRepositoryImpl) GetBySID(ctx context.Context, sid string) (*partner.Application, error) {
	var model models.PartnerApplicationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, partner.ErrApplicationNotFound
		}
		r.logger.Errorw("failed to get application", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return applicationToDomain(&model)
}

// ListByTenant returns a tenant's applications, newest first
func (r *ApplicationRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, page, pageSize int) ([]*partner.Application, int64, error) {
	conn := db.GetTxFromContext(ctx, r.db)

	var total int64
	if err := conn.Model(&models.PartnerApplicationModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	var rows []models.PartnerApplicationModel
	if err := conn.
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list applications", "tenant_id", tenantID, "error", err)
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	apps := make([]*partner.Application, 0, len(rows))
	for i := range rows {
		a, err := applicationToDomain(&rows[i])
		if err != nil {
			r.logger.Warnw("skipping unreadable application row", "id", rows[i].ID, "error", err)
			continue
		}
		apps = append(apps, a)
	}
	return apps, total, nil
}

// UpdateStatus persists a status transition with optimistic locking
func (r *ApplicationRepositoryImpl) UpdateStatus(ctx context.Context, a *partner.Application) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PartnerApplicationModel{}).
		Where("id = ? AND version = ?", a.ID(), a.Version()-1).
		Updates(map[string]any{
			"status":     a.Status().String(),
			"version":    a.Version(),
			"updated_at": a.UpdatedAt(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update application status",
			"sid", a.SID(),
			"status", a.Status(),
			"error", result.Error)
		return fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewConflictError("application was modified concurrently")
	}
	return nil
}

func applicationToModel(a *partner.Application) (*models.PartnerApplicationModel, error) {
	programs, err := json.Marshal(a.RequestedPrograms())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal requested programs: %w", err)
	}
	return &models.PartnerApplicationModel{
		ID:                a.ID(),
		SID:               a.SID(),
		TenantID:          a.TenantID(),
		ContactEmail:      a.ContactEmail(),
		OwnerName:         a.OwnerName(),
		RequestedPrograms: datatypes.JSON(programs),
		Status:            a.Status().String(),
		CreatedAt:         a.CreatedAt(),
		UpdatedAt:         a.UpdatedAt(),
		Version:           a.Version(),
	}, nil
}

func applicationToDomain(m *models.PartnerApplicationModel) (*partner.Application, error) {
	var programs []string
	if len(m.RequestedPrograms) > 0 {
		if err := json.Unmarshal(m.RequestedPrograms, &programs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal requested programs: %w", err)
		}
	}
	return partner.ReconstructApplication(
		m.ID,
		m.SID,
		m.TenantID,
		m.ContactEmail,
		m.OwnerName,
		programs,
		partner.ApplicationStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
