// Package profile exposes the read-model over the tenant user store that
// the approval flow and seat-limit checks consult. Profile rows are written
// by the identity sync pipeline, not by this service.
package profile

import (
	"context"
	"errors"
	"time"

	"skillforge/internal/domain/tenant"
)

// ErrProfileNotFound is returned when no profile exists for the user.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is one user's membership in a tenant.
type Profile struct {
	ID        string
	TenantID  string
	Email     string
	FullName  string
	Role      tenant.Role
	CreatedAt time.Time
}

// Repository reads tenant membership.
type Repository interface {
	// GetByID retrieves a profile by user ID within a tenant.
	GetByID(ctx context.Context, tenantID, userID string) (*Profile, error)

	// CountByTenant returns the number of profiles in a tenant; the seat
	// limit check compares it against the license's max_users ceiling.
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}
