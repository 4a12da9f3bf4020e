package handlers

import (
	"context"

	licensedto "skillforge/internal/application/license/dto"
	"skillforge/internal/application/partner/dto"
	"skillforge/internal/application/partner/usecases"
	"skillforge/internal/domain/tenant"
)

// Use case interfaces for PartnerHandler

type approveApplicationUseCase interface {
	Execute(ctx context.Context, cmd usecases.ApproveApplicationCommand) (*dto.ApprovalResult, error)
}

type rejectApplicationUseCase interface {
	Execute(ctx context.Context, cmd usecases.RejectApplicationCommand) (*dto.ApplicationResponse, error)
}

type getApplicationUseCase interface {
	Execute(ctx context.Context, actor tenant.Context, applicationSID string) (*usecases.GetApplicationResult, error)
}

type listApplicationsUseCase interface {
	Execute(ctx context.Context, actor tenant.Context, page, pageSize int) ([]*dto.ApplicationResponse, int64, error)
}

// licenseGate is the surface of the license application service used by
// LicenseHandler.

type licenseGate interface {
	Check(ctx context.Context, tc tenant.Context, requiredFeature string) (*licensedto.CheckResult, error)
	CheckUserLimit(ctx context.Context, tenantID string) (*licensedto.UserLimitResult, error)
	ListViolations(ctx context.Context, tenantID string, limit int) ([]licensedto.ViolationResponse, error)
}
