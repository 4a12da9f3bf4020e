package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"skillforge/internal/domain/partner"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/db"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

const (
	keyScopeApproval = "approval"
	keyScopeLink     = "link"
)

// PartnerRepositoryImpl implements the partner.Repository interface. The two
// procedure methods own their transactions; plain reads go through whatever
// connection the context carries.
type PartnerRepositoryImpl struct {
	db     *gorm.DB
	txm    *db.TransactionManager
	logger logger.Interface
}

// NewPartnerRepository creates a new partner repository instance
func NewPartnerRepository(gdb *gorm.DB, txm *db.TransactionManager, logger logger.Interface) partner.Repository {
	return &PartnerRepositoryImpl{
		db:     gdb,
		txm:    txm,
		logger: logger,
	}
}

// GetBySID retrieves a partner by its short ID
func (r *PartnerRepositoryImpl) GetBySID(ctx context.Context, sid string) (*partner.Partner, error) {
	var model models.PartnerModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("sid = ?", sid).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, partner.ErrPartnerNotFound
		}
		r.logger.Errorw("failed to get partner", "sid", sid, "error", err)
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return partnerToDomain(&model)
}

// GetByApplicationID retrieves the partner provisioned for an application
func (r *PartnerRepositoryImpl) GetByApplicationID(ctx context.Context, applicationID uint) (*partner.Partner, error) {
	var model models.PartnerModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("application_id = ?", applicationID).
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner by application: %w", err)
	}
	return partnerToDomain(&model)
}

// ApproveApplication is the phase 1 atomic procedure. Within one transaction
// it claims the idempotency key, creates the partner with program access,
// and moves the application to approved_pending_user. The unique indexes on
// the key table and on partners.application_id make concurrent invocations
// collapse to a single winner; losers re-read and report Idempotent.
func (r *PartnerRepositoryImpl) ApproveApplication(ctx context.Context, params partner.ApproveApplicationParams) (*partner.ApproveApplicationResult, error) {
	var result *partner.ApproveApplicationResult

	err := r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.txm.GetTx(txCtx)

		// Replay check before attempting any write.
		var existing models.PartnerModel
		err := tx.Where("application_id = ?", params.ApplicationID).First(&existing).Error
		if err == nil {
			result = &partner.ApproveApplicationResult{
				PartnerID:  existing.ID,
				PartnerSID: existing.SID,
				Idempotent: true,
			}
			return nil
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("failed to check existing partner: %w", err)
		}

		// Claim the deterministic key. A duplicate here means another
		// transaction committed between our read and this insert.
		keyRow := &models.ApprovalKeyModel{
			Key:         params.IdempotencyKey,
			Scope:       keyScopeApproval,
			PartnerSID:  params.PartnerSID,
			AdminUserID: params.AdminUserID,
			RequestID:   params.RequestID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(keyRow).Error; err != nil {
			if errors.IsDuplicateError(err) {
				return r.replayFromKey(tx, params.IdempotencyKey, &result)
			}
			return fmt.Errorf("failed to claim approval key: %w", err)
		}

		var appRow models.PartnerApplicationModel
		if err := tx.Where("id = ?", params.ApplicationID).First(&appRow).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return partner.ErrApplicationNotFound
			}
			return fmt.Errorf("failed to load application: %w", err)
		}
		if partner.ApplicationStatus(appRow.Status) == partner.ApplicationStatusRejected {
			return errors.NewValidationError("application has been rejected")
		}

		programs, err := json.Marshal(params.Programs)
		if err != nil {
			return fmt.Errorf("failed to marshal program access: %w", err)
		}
		partnerRow := &models.PartnerModel{
			SID:           params.PartnerSID,
			TenantID:      appRow.TenantID,
			ApplicationID: params.ApplicationID,
			ProgramAccess: datatypes.JSON(programs),
			Status:        partner.StatusPendingUser.String(),
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
			Version:       1,
		}
		if err := tx.Create(partnerRow).Error; err != nil {
			if errors.IsDuplicateError(err) {
				return r.replayFromKey(tx, params.IdempotencyKey, &result)
			}
			return fmt.Errorf("failed to create partner: %w", err)
		}

		if err := tx.Model(&models.PartnerApplicationModel{}).
			Where("id = ?", params.ApplicationID).
			Updates(map[string]any{
				"status":     partner.ApplicationStatusApprovedPendingUser.String(),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}

		result = &partner.ApproveApplicationResult{
			PartnerID:  partnerRow.ID,
			PartnerSID: partnerRow.SID,
			Idempotent: false,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Idempotent {
		r.logger.Infow("approval replayed",
			"application_id", params.ApplicationSID,
			"partner_id", result.PartnerSID,
			"request_id", params.RequestID)
	} else {
		r.logger.Infow("partner provisioned",
			"application_id", params.ApplicationSID,
			"partner_id", result.PartnerSID,
			"admin_user_id", params.AdminUserID,
			"request_id", params.RequestID)
	}
	return result, nil
}

// replayFromKey resolves the winner's partner after losing a key race.
func (r *PartnerRepositoryImpl) replayFromKey(tx *gorm.DB, key string, out **partner.ApproveApplicationResult) error {
	var keyRow models.ApprovalKeyModel
	if err := tx.Where("`key` = ?", key).First(&keyRow).Error; err != nil {
		return fmt.Errorf("failed to resolve claimed approval key: %w", err)
	}
	var partnerRow models.PartnerModel
	if err := tx.Where("sid = ?", keyRow.PartnerSID).First(&partnerRow).Error; err != nil {
		return fmt.Errorf("failed to resolve partner for claimed key: %w", err)
	}
	*out = &partner.ApproveApplicationResult{
		PartnerID:  partnerRow.ID,
		PartnerSID: partnerRow.SID,
		Idempotent: true,
	}
	return nil
}

// LinkIdentity is the phase 2 idempotent procedure: attaches the external
// identity, activates the partner, and marks the application approved. Keyed
// by (partner, identity) so retries collapse; a different identity for an
// already-linked partner is a conflict.
func (r *PartnerRepositoryImpl) LinkIdentity(ctx context.Context, partnerSID, identityID string) error {
	return r.txm.RunInTransaction(ctx, func(txCtx context.Context) error {
		tx := r.txm.GetTx(txCtx)

		var row models.PartnerModel
		if err := tx.Where("sid = ?", partnerSID).First(&row).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return partner.ErrPartnerNotFound
			}
			return fmt.Errorf("failed to load partner: %w", err)
		}

		if row.IdentityID != nil {
			if *row.IdentityID == identityID {
				return nil
			}
			return partner.ErrIdentityConflict
		}

		keyRow := &models.ApprovalKeyModel{
			Key:        partner.DeriveLinkKey(partnerSID, identityID),
			Scope:      keyScopeLink,
			PartnerSID: partnerSID,
			CreatedAt:  time.Now(),
		}
		if err := tx.Create(keyRow).Error; err != nil && !errors.IsDuplicateError(err) {
			return fmt.Errorf("failed to claim link key: %w", err)
		}

		if err := tx.Model(&models.PartnerModel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"identity_id": identityID,
				"status":      partner.StatusActive.String(),
				"version":     gorm.Expr("version + 1"),
				"updated_at":  time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to link identity: %w", err)
		}

		if err := tx.Model(&models.PartnerApplicationModel{}).
			Where("id = ? AND status = ?", row.ApplicationID, partner.ApplicationStatusApprovedPendingUser.String()).
			Updates(map[string]any{
				"status":     partner.ApplicationStatusApproved.String(),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to finalize application: %w", err)
		}

		r.logger.Infow("partner identity linked",
			"partner_id", partnerSID,
			"identity_id", identityID)
		return nil
	})
}

func partnerToDomain(m *models.PartnerModel) (*partner.Partner, error) {
	var programs []string
	if len(m.ProgramAccess) > 0 {
		if err := json.Unmarshal(m.ProgramAccess, &programs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal program access: %w", err)
		}
	}
	return partner.ReconstructPartner(
		m.ID,
		m.SID,
		m.TenantID,
		m.ApplicationID,
		m.IdentityID,
		programs,
		partner.Status(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
