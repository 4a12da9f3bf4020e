// Package license implements the license gate: the per-request decision of
// whether a tenant's entitlement record currently grants access, optionally
// narrowed to a named feature.
package license

import (
	"context"
	"fmt"
	"time"

	"skillforge/internal/application/license/dto"
	"skillforge/internal/domain/license"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/correlation"
	"skillforge/internal/shared/goroutine"
	"skillforge/internal/shared/logger"
)

// Reader is the read path for license rows. The production wiring layers a
// redis cache over the gorm repository; tests plug a mock in directly.
type Reader interface {
	GetByTenant(ctx context.Context, tenantID string) (*license.License, error)
}

// Service is the license gate.
type Service struct {
	licenses   Reader
	profiles   profile.Repository
	violations license.ViolationRepository
	logger     logger.Interface
}

// NewService creates the license gate service.
func NewService(
	licenses Reader,
	profiles profile.Repository,
	violations license.ViolationRepository,
	log logger.Interface,
) *Service {
	return &Service{
		licenses:   licenses,
		profiles:   profiles,
		violations: violations,
		logger:     log,
	}
}

// Check loads the tenant's license, applies the billing authority resolver,
// and optionally verifies a named feature entitlement. Denials are recorded
// as violation rows best-effort: an audit write failure never fails the gate.
// A non-nil error means the gate itself could not run (infrastructure), not
// that access was denied.
func (s *Service) Check(ctx context.Context, tc tenant.Context, requiredFeature string) (*dto.CheckResult, error) {
	lic, err := s.licenses.GetByTenant(ctx, tc.TenantID)
	if err != nil {
		s.logger.Errorw("failed to load license", "tenant_id", tc.TenantID, "error", err)
		return nil, fmt.Errorf("failed to load license: %w", err)
	}

	if lic == nil {
		s.recordViolation(ctx, tc, license.ReasonNoLicense, requiredFeature)
		return &dto.CheckResult{Valid: false, Reason: license.ReasonNoLicense}, nil
	}

	decision := license.ResolveBillingAuthority(lic, time.Now())
	if !decision.HasAccess {
		s.logger.Warnw("license denies access",
			"tenant_id", tc.TenantID,
			"license_id", lic.SID(),
			"tier", lic.Tier(),
			"status", lic.Status(),
			"authority", decision.Authority,
			"reason", decision.Reason,
		)
		s.recordViolation(ctx, tc, decision.Reason, requiredFeature)
		return &dto.CheckResult{
			Valid:      false,
			Reason:     decision.Reason,
			LicenseSID: lic.SID(),
			Tier:       lic.Tier().String(),
			Status:     lic.Status().String(),
			Authority:  string(decision.Authority),
		}, nil
	}

	if requiredFeature != "" && !lic.HasFeature(requiredFeature) {
		s.logger.Warnw("license lacks required feature",
			"tenant_id", tc.TenantID,
			"license_id", lic.SID(),
			"required_feature", requiredFeature,
		)
		s.recordViolation(ctx, tc, license.ReasonFeatureNotGranted, requiredFeature)
		return &dto.CheckResult{
			Valid:      false,
			Reason:     license.ReasonFeatureNotGranted,
			LicenseSID: lic.SID(),
			Tier:       lic.Tier().String(),
			Status:     lic.Status().String(),
			Authority:  string(decision.Authority),
		}, nil
	}

	return &dto.CheckResult{
		Valid:          true,
		LicenseSID:     lic.SID(),
		Tier:           lic.Tier().String(),
		Status:         lic.Status().String(),
		Authority:      string(decision.Authority),
		ExpiresAt:      decision.ExpiresAt,
		Features:       lic.Features(),
		MaxUsers:       lic.MaxUsers(),
		MaxDeployments: lic.MaxDeployments(),
	}, nil
}

// HasFeature is a read-only convenience: true only when the tenant holds a
// currently-valid license whose feature set includes the feature.
func (s *Service) HasFeature(ctx context.Context, tenantID, feature string) (bool, error) {
	lic, err := s.licenses.GetByTenant(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("failed to load license: %w", err)
	}
	if lic == nil {
		return false, nil
	}
	if !license.ResolveBillingAuthority(lic, time.Now()).HasAccess {
		return false, nil
	}
	return lic.HasFeature(feature), nil
}

// CheckUserLimit compares the tenant's current profile count against the
// license's max_users ceiling so callers can refuse provisioning at the
// limit. Max of zero means unbounded seats.
func (s *Service) CheckUserLimit(ctx context.Context, tenantID string) (*dto.UserLimitResult, error) {
	lic, err := s.licenses.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load license: %w", err)
	}
	if lic == nil {
		return nil, license.ErrLicenseNotFound
	}

	current, err := s.profiles.CountByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tenant users: %w", err)
	}

	max := lic.MaxUsers()
	allowed := max == 0 || current < int64(max)
	return &dto.UserLimitResult{Allowed: allowed, Current: current, Max: max}, nil
}

// ListViolations returns recent audit rows for a tenant.
func (s *Service) ListViolations(ctx context.Context, tenantID string, limit int) ([]dto.ViolationResponse, error) {
	rows, err := s.violations.ListByTenant(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list violations: %w", err)
	}
	out := make([]dto.ViolationResponse, len(rows))
	for i, v := range rows {
		out[i] = dto.ViolationResponse{
			TenantID:   v.TenantID,
			UserID:     v.UserID,
			Reason:     v.Reason,
			Feature:    v.Feature,
			RequestID:  v.RequestID,
			OccurredAt: v.OccurredAt,
		}
	}
	return out, nil
}

// recordViolation writes an audit row without ever failing the gate. It
// detaches from the request context so cancellation cannot drop the row,
// and carries the correlation id into the audit trail.
func (s *Service) recordViolation(ctx context.Context, tc tenant.Context, reason, feature string) {
	v := license.Violation{
		TenantID:   tc.TenantID,
		UserID:     tc.UserID,
		Reason:     reason,
		Feature:    feature,
		RequestID:  correlation.RequestIDFromContext(ctx),
		OccurredAt: time.Now(),
	}
	goroutine.SafeGo(s.logger, "license-violation-audit", func() {
		if err := s.violations.Record(context.Background(), v); err != nil {
			s.logger.Warnw("failed to record license violation",
				"tenant_id", v.TenantID,
				"reason", v.Reason,
				"request_id", v.RequestID,
				"error", err,
			)
		}
	})
}
