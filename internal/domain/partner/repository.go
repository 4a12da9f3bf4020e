package partner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// approvalKeySalt fixes the phase 1 idempotency key to the application
// alone: the same application always derives the same key no matter which
// admin triggers approval. The acting admin is recorded on the audit trail
// but does not participate in the key.
const approvalKeySalt = "partner-approval-v1"

// DeriveApprovalKey computes the deterministic phase 1 idempotency key for
// an application.
func DeriveApprovalKey(applicationSID string) string {
	sum := sha256.Sum256([]byte(approvalKeySalt + ":" + applicationSID))
	return hex.EncodeToString(sum[:])
}

// DeriveLinkKey computes the deterministic phase 2 idempotency key for a
// partner/identity pair. Being derived rather than time-based, it is safe
// to regenerate on every retry.
func DeriveLinkKey(partnerSID, identityID string) string {
	sum := sha256.Sum256([]byte(partnerSID + ":" + identityID))
	return hex.EncodeToString(sum[:])
}

// ApproveApplicationParams is the typed request for the phase 1 procedure.
type ApproveApplicationParams struct {
	ApplicationID  uint
	ApplicationSID string
	AdminUserID    string
	PartnerEmail   string
	PartnerSID     string
	Programs       []string
	IdempotencyKey string
	RequestID      string
}

// ApproveApplicationResult is the typed response for the phase 1 procedure.
// Idempotent is true when the application had already been approved and no
// side effects ran on this invocation.
type ApproveApplicationResult struct {
	PartnerID  uint
	PartnerSID string
	Idempotent bool
}

// ApplicationRepository persists intake applications.
type ApplicationRepository interface {
	// Create creates a new application.
	Create(ctx context.Context, a *Application) error

	// GetBySID retrieves an application by its short ID.
	GetBySID(ctx context.Context, sid string) (*Application, error)

	// ListByTenant returns a tenant's applications, newest first.
	ListByTenant(ctx context.Context, tenantID string, page, pageSize int) ([]*Application, int64, error)

	// UpdateStatus persists a status transition with optimistic locking.
	UpdateStatus(ctx context.Context, a *Application) error
}

// Repository persists partners and hosts the two idempotent procedures the
// approval saga relies on.
type Repository interface {
	// GetBySID retrieves a partner by its short ID.
	GetBySID(ctx context.Context, sid string) (*Partner, error)

	// GetByApplicationID retrieves the partner provisioned for an
	// application, or nil when phase 1 has not run.
	GetByApplicationID(ctx context.Context, applicationID uint) (*Partner, error)

	// ApproveApplication is the phase 1 atomic procedure: within one
	// transaction it claims the idempotency key, creates the partner,
	// grants program access, and moves the application to
	// approved_pending_user. Replays (same key, or an application already
	// approved) return the existing partner with Idempotent set instead of
	// re-executing side effects.
	ApproveApplication(ctx context.Context, params ApproveApplicationParams) (*ApproveApplicationResult, error)

	// LinkIdentity is the phase 2 idempotent procedure: attaches the
	// external identity to the partner and activates it, and marks the
	// application approved. Keyed by (partner, identity); re-invocation
	// with the same pair succeeds without side effects. A different
	// identity for an already-linked partner is ErrIdentityConflict.
	LinkIdentity(ctx context.Context, partnerSID, identityID string) error
}
