package usecases

import (
	"context"
	"fmt"

	"skillforge/internal/application/partner/dto"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/constants"
	"skillforge/internal/shared/logger"
)

// ListApplicationsUseCase pages through a tenant's intake applications.
type ListApplicationsUseCase struct {
	applications partner.ApplicationRepository
	profiles     profile.Repository
	logger       logger.Interface
}

func NewListApplicationsUseCase(
	applications partner.ApplicationRepository,
	profiles profile.Repository,
	log logger.Interface,
) *ListApplicationsUseCase {
	return &ListApplicationsUseCase{
		applications: applications,
		profiles:     profiles,
		logger:       log,
	}
}

// Execute lists the tenant's applications, newest first.
func (uc *ListApplicationsUseCase) Execute(ctx context.Context, actor tenant.Context, page, pageSize int) ([]*dto.ApplicationResponse, int64, error) {
	if err := authorizeAdmin(ctx, uc.profiles, actor); err != nil {
		return nil, 0, err
	}

	if page < constants.DefaultPage {
		page = constants.DefaultPage
	}
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	apps, total, err := uc.applications.ListByTenant(ctx, actor.TenantID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}

	out := make([]*dto.ApplicationResponse, len(apps))
	for i, app := range apps {
		out[i] = toApplicationResponse(app)
	}
	return out, total, nil
}
