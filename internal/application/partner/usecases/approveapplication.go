package usecases

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"skillforge/internal/application/partner/dto"
	"skillforge/internal/domain/identity"
	"skillforge/internal/domain/notification"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/correlation"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/id"
	"skillforge/internal/shared/logger"
)

// ApproveApplicationCommand identifies the application and the acting admin.
// All other inputs are loaded server-side from the application record.
type ApproveApplicationCommand struct {
	ApplicationSID string
	Actor          tenant.Context
}

// ApproveApplicationUseCase runs the two-phase approval saga.
//
// Phase 1 is the only transactional unit: an idempotent database procedure
// that provisions the partner and moves the application to
// approved_pending_user. Phase 2 ensures an external identity exists and
// links it, each step replay-safe. Phase 3 is best-effort: access link and
// welcome notification. There is no compensation; a failure past phase 1
// leaves the saga in the stable pending_user state and the caller retries
// by re-invoking the whole use case.
type ApproveApplicationUseCase struct {
	applications partner.ApplicationRepository
	partners     partner.Repository
	profiles     profile.Repository
	identities   identity.Provider
	outbox       notification.Outbox
	loginURL     string
	logger       logger.Interface
}

// NewApproveApplicationUseCase creates the approval orchestrator.
// loginURL is the generic portal login used when access link generation fails.
func NewApproveApplicationUseCase(
	applications partner.ApplicationRepository,
	partners partner.Repository,
	profiles profile.Repository,
	identities identity.Provider,
	outbox notification.Outbox,
	loginURL string,
	log logger.Interface,
) *ApproveApplicationUseCase {
	return &ApproveApplicationUseCase{
		applications: applications,
		partners:     partners,
		profiles:     profiles,
		identities:   identities,
		outbox:       outbox,
		loginURL:     loginURL,
		logger:       log,
	}
}

// Execute runs the saga. A *dto.ApprovalResult with RetryableError set means
// partial success (phase 1 committed, phase 2 incomplete): the handler must
// answer 207 and the caller may re-invoke safely. A non-nil error means the
// request was refused (authorization, validation, not found) or failed
// before any side effect.
func (uc *ApproveApplicationUseCase) Execute(ctx context.Context, cmd ApproveApplicationCommand) (*dto.ApprovalResult, error) {
	log := uc.logger.With(append(correlation.FromContext(ctx).Fields(),
		"application_id", cmd.ApplicationSID,
		"admin_user_id", cmd.Actor.UserID,
	)...)

	if err := authorizeAdmin(ctx, uc.profiles, cmd.Actor); err != nil {
		log.Warnw("approval refused", "error", err)
		return nil, err
	}

	app, err := uc.applications.GetBySID(ctx, cmd.ApplicationSID)
	if err != nil {
		if stderrors.Is(err, partner.ErrApplicationNotFound) {
			return nil, errors.NewNotFoundError("Application not found")
		}
		log.Errorw("failed to load application", "error", err)
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app.TenantID() != cmd.Actor.TenantID {
		// Cross-tenant applications are indistinguishable from absence.
		return nil, errors.NewNotFoundError("Application not found")
	}

	if app.Status() == partner.ApplicationStatusRejected {
		return nil, errors.NewValidationError("application has been rejected", "rejected applications cannot be approved")
	}

	// Phase 1: atomic, idempotent. Either the partner exists when this
	// returns, or nothing was written.
	p1, err := uc.partners.ApproveApplication(ctx, partner.ApproveApplicationParams{
		ApplicationID:  app.ID(),
		ApplicationSID: app.SID(),
		AdminUserID:    cmd.Actor.UserID,
		PartnerEmail:   app.ContactEmail(),
		PartnerSID:     id.MustGenerateWithPrefix(id.PrefixPartner, 12),
		Programs:       app.RequestedPrograms(),
		IdempotencyKey: partner.DeriveApprovalKey(app.SID()),
		RequestID:      correlation.RequestIDFromContext(ctx),
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		log.Errorw("phase 1 approval procedure failed", "error", err)
		return nil, fmt.Errorf("approval procedure failed: %w", err)
	}
	log = log.With("partner_id", p1.PartnerSID)
	if p1.Idempotent {
		log.Infow("phase 1 already processed, continuing to identity link")
	} else {
		log.Infow("partner provisioned")
	}

	// Phase 2: ensure the external identity exists, then link. Both halves
	// are retryable; failure here is reported as partial success.
	ident, err := uc.ensureIdentity(ctx, app.ContactEmail())
	if err != nil {
		log.Errorw("phase 2 identity creation failed", "error", err)
		return &dto.ApprovalResult{
			Outcome:        dto.OutcomePendingUser,
			PartnerSID:     p1.PartnerSID,
			Idempotent:     p1.Idempotent,
			Message:        "Partner approved, but user account creation failed. Retry the approval to finish setup.",
			RetryableError: "identity provider error: user creation requires retry",
		}, nil
	}

	if err := uc.partners.LinkIdentity(ctx, p1.PartnerSID, ident.ID); err != nil {
		log.Errorw("phase 2 identity link failed", "identity_id", ident.ID, "error", err)
		return &dto.ApprovalResult{
			Outcome:        dto.OutcomePendingUser,
			PartnerSID:     p1.PartnerSID,
			Idempotent:     p1.Idempotent,
			Message:        "Partner approved and user created, but linking failed. Retry the approval to finish setup.",
			RetryableError: "identity link error: retry required",
		}, nil
	}
	log.Infow("identity linked", "identity_id", ident.ID)

	// Phase 3: best-effort. The entitlement is already complete; nothing
	// here may fail the request.
	accessLink := uc.accessLinkOrFallback(ctx, log, app.ContactEmail())
	uc.enqueueWelcome(ctx, log, app, accessLink)

	return &dto.ApprovalResult{
		Outcome:    dto.OutcomeApproved,
		PartnerSID: p1.PartnerSID,
		Idempotent: p1.Idempotent,
		AccessLink: accessLink,
		Message:    "Partner approved and user account ready.",
	}, nil
}

// ensureIdentity looks up the identity by email, creating it on a miss.
// A create that loses the race to a concurrent approval is resolved by
// re-reading: identity-already-exists is success at the link step.
func (uc *ApproveApplicationUseCase) ensureIdentity(ctx context.Context, email string) (*identity.Identity, error) {
	email = partner.NormalizeEmail(email)

	ident, err := uc.identities.FindByEmail(ctx, email)
	if err == nil {
		return ident, nil
	}
	if !stderrors.Is(err, identity.ErrNotFound) {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	created, err := uc.identities.Create(ctx, identity.CreateParams{
		Email:    email,
		Metadata: map[string]any{"source": "partner_approval"},
	})
	if err == nil {
		return created, nil
	}
	if errors.IsDuplicateError(err) || errors.IsConflictError(err) {
		if existing, lookupErr := uc.identities.FindByEmail(ctx, email); lookupErr == nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("identity creation failed: %w", err)
}

// accessLinkOrFallback generates a one-time login link, defaulting to the
// generic portal login when the provider refuses.
func (uc *ApproveApplicationUseCase) accessLinkOrFallback(ctx context.Context, log logger.Interface, email string) string {
	link, err := uc.identities.GenerateAccessLink(ctx, identity.AccessLinkParams{
		Email:      email,
		RedirectTo: uc.loginURL,
	})
	if err != nil {
		log.Warnw("access link generation failed, using portal login", "error", err)
		return uc.loginURL
	}
	return link
}

// enqueueWelcome inserts the welcome notification. The insert runs against
// a detached context so request cancellation cannot drop it, and its error
// is swallowed: delivery is observability, not entitlement.
func (uc *ApproveApplicationUseCase) enqueueWelcome(ctx context.Context, log logger.Interface, app *partner.Application, accessLink string) {
	params := notification.EnqueueParams{
		ToEmail:     app.ContactEmail(),
		TemplateKey: notification.TemplatePartnerWelcome,
		TemplateData: map[string]any{
			"owner_name":  app.OwnerName(),
			"access_link": accessLink,
			"programs":    app.RequestedPrograms(),
			"request_id":  correlation.RequestIDFromContext(ctx),
		},
		ScheduledFor: time.Now(),
	}
	if err := uc.outbox.Enqueue(context.WithoutCancel(ctx), params); err != nil {
		log.Warnw("failed to enqueue welcome notification", "error", err)
	}
}
