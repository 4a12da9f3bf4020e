package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"skillforge/internal/application/partner/dto"
	"skillforge/internal/domain/notification"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/correlation"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
)

// RejectApplicationCommand identifies the application and the acting admin.
type RejectApplicationCommand struct {
	ApplicationSID string
	Actor          tenant.Context
	Reason         string
}

// RejectApplicationUseCase terminates a submitted application with no
// partner side effects.
type RejectApplicationUseCase struct {
	applications partner.ApplicationRepository
	profiles     profile.Repository
	outbox       notification.Outbox
	logger       logger.Interface
}

// NewRejectApplicationUseCase creates the rejection use case.
func NewRejectApplicationUseCase(
	applications partner.ApplicationRepository,
	profiles profile.Repository,
	outbox notification.Outbox,
	log logger.Interface,
) *RejectApplicationUseCase {
	return &RejectApplicationUseCase{
		applications: applications,
		profiles:     profiles,
		outbox:       outbox,
		logger:       log,
	}
}

// Execute rejects a submitted application.
func (uc *RejectApplicationUseCase) Execute(ctx context.Context, cmd RejectApplicationCommand) (*dto.ApplicationResponse, error) {
	log := uc.logger.With(append(correlation.FromContext(ctx).Fields(),
		"application_id", cmd.ApplicationSID,
		"admin_user_id", cmd.Actor.UserID,
	)...)

	if err := authorizeAdmin(ctx, uc.profiles, cmd.Actor); err != nil {
		log.Warnw("rejection refused", "error", err)
		return nil, err
	}

	app, err := uc.applications.GetBySID(ctx, cmd.ApplicationSID)
	if err != nil {
		if stderrors.Is(err, partner.ErrApplicationNotFound) {
			return nil, errors.NewNotFoundError("Application not found")
		}
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app.TenantID() != cmd.Actor.TenantID {
		// Cross-tenant applications are indistinguishable from absence.
		return nil, errors.NewNotFoundError("Application not found")
	}

	if err := app.Reject(); err != nil {
		return nil, errors.NewValidationError("application cannot be rejected", err.Error())
	}
	if err := uc.applications.UpdateStatus(ctx, app); err != nil {
		log.Errorw("failed to persist rejection", "error", err)
		return nil, fmt.Errorf("failed to persist rejection: %w", err)
	}
	log.Infow("application rejected", "reason", cmd.Reason)

	params := notification.EnqueueParams{
		ToEmail:     app.ContactEmail(),
		TemplateKey: notification.TemplateApplicationRejected,
		TemplateData: map[string]any{
			"owner_name": app.OwnerName(),
			"reason":     cmd.Reason,
		},
		ScheduledFor: time.Now(),
	}
	if err := uc.outbox.Enqueue(context.WithoutCancel(ctx), params); err != nil {
		log.Warnw("failed to enqueue rejection notification", "error", err)
	}

	return toApplicationResponse(app), nil
}

// authorizeAdmin is the shared admin-role precondition for approval flow
// mutations.
func authorizeAdmin(ctx context.Context, profiles profile.Repository, actor tenant.Context) error {
	if err := actor.Validate(); err != nil {
		if stderrors.Is(err, tenant.ErrNoSession) {
			return errors.NewUnauthorizedError("Unauthorized")
		}
		return errors.NewForbiddenError("Forbidden", "no tenant context")
	}
	prof, err := profiles.GetByID(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		if stderrors.Is(err, profile.ErrProfileNotFound) {
			return errors.NewForbiddenError("Forbidden", "no profile for user")
		}
		return fmt.Errorf("failed to load actor profile: %w", err)
	}
	if !prof.Role.CanApprove() {
		return errors.NewForbiddenError("Forbidden", "admin role required")
	}
	return nil
}

func toApplicationResponse(app *partner.Application) *dto.ApplicationResponse {
	return &dto.ApplicationResponse{
		ID:                app.SID(),
		ContactEmail:      app.ContactEmail(),
		OwnerName:         app.OwnerName(),
		RequestedPrograms: app.RequestedPrograms(),
		Status:            app.Status().String(),
		CreatedAt:         app.CreatedAt(),
		UpdatedAt:         app.UpdatedAt(),
	}
}
