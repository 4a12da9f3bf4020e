package usecases

import (
	"context"
	stderrors "errors"
	"fmt"

	"skillforge/internal/application/partner/dto"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

// GetApplicationUseCase loads one application for admin review, with the
// provisioned partner attached when phase 1 has run.
type GetApplicationUseCase struct {
	applications partner.ApplicationRepository
	partners     partner.Repository
	profiles     profile.Repository
	logger       logger.Interface
}

func NewGetApplicationUseCase(
	applications partner.ApplicationRepository,
	partners partner.Repository,
	profiles profile.Repository,
	log logger.Interface,
) *GetApplicationUseCase {
	return &GetApplicationUseCase{
		applications: applications,
		partners:     partners,
		profiles:     profiles,
		logger:       log,
	}
}

// GetApplicationResult pairs the application with its partner, if any.
type GetApplicationResult struct {
	Application *dto.ApplicationResponse `json:"application"`
	Partner     *dto.PartnerResponse     `json:"partner,omitempty"`
}

func (uc *GetApplicationUseCase) Execute(ctx context.Context, actor tenant.Context, applicationSID string) (*GetApplicationResult, error) {
	if err := authorizeAdmin(ctx, uc.profiles, actor); err != nil {
		return nil, err
	}

	app, err := uc.applications.GetBySID(ctx, applicationSID)
	if err != nil {
		if stderrors.Is(err, partner.ErrApplicationNotFound) {
			return nil, errors.NewNotFoundError("Application not found")
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app.TenantID() != actor.TenantID {
		// Cross-tenant reads are indistinguishable from absence.
		return nil, errors.NewNotFoundError("Application not found")
	}

	result := &GetApplicationResult{Application: toApplicationResponse(app)}

	p, err := uc.partners.GetByApplicationID(ctx, app.ID())
	if err != nil {
		uc.logger.Warnw("failed to load partner for application", "application_id", applicationSID, "error", err)
		return result, nil
	}
	if p != nil {
		result.Partner = &dto.PartnerResponse{
			ID:            p.SID(),
			ApplicationID: app.SID(),
			IdentityID:    p.IdentityID(),
			ProgramAccess: p.ProgramAccess(),
			Status:        p.Status().String(),
			CreatedAt:     p.CreatedAt(),
		}
	}
	return result, nil
}
