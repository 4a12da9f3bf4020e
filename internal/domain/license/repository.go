package license

import (
	"context"
	"time"
)

// Repository defines the interface for license persistence operations.
// The gate treats license rows as read-only; writes happen via billing
// webhooks and admin tooling.
type Repository interface {
	// Create creates a new license.
	Create(ctx context.Context, l *License) error

	// Update updates an existing license.
	Update(ctx context.Context, l *License) error

	// GetByTenant retrieves the tenant's license, or nil when absent.
	GetByTenant(ctx context.Context, tenantID string) (*License, error)

	// GetBySID retrieves a license by its Stripe-style short ID.
	GetBySID(ctx context.Context, sid string) (*License, error)
}

// Violation is an audit record of a denied access attempt. It feeds
// compliance reporting and monitoring and never blocks anything.
type Violation struct {
	TenantID   string
	UserID     string
	Reason     string
	Feature    string
	RequestID  string
	OccurredAt time.Time
}

// ViolationRepository persists violation audit rows. Implementations are
// best-effort sinks: callers swallow their errors.
type ViolationRepository interface {
	// Record writes one violation row.
	Record(ctx context.Context, v Violation) error

	// ListByTenant returns recent violations for a tenant, newest first.
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]Violation, error)
}
