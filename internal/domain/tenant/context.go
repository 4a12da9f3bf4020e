// Package tenant defines the request-scoped tenant context. Every license
// and profile row is partitioned by tenant ID; a request without tenant
// context must never reach tenant-scoped business logic.
package tenant

import "errors"

// Role is the caller's role within a tenant.
type Role string

const (
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsValid reports whether the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanApprove reports whether the role may run partner approval.
func (r Role) CanApprove() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

func (r Role) String() string {
	return string(r)
}

// Resolution failures. Callers must map ErrNoSession to 401 and
// ErrNoTenantContext to 403 and stop processing the request.
var (
	ErrNoSession       = errors.New("no authenticated session")
	ErrNoTenantContext = errors.New("session has no tenant context")
)

// Context is the resolved tenant/user/role triple for one request.
// It is reconstructed per request from session claims and never persisted.
type Context struct {
	TenantID string
	UserID   string
	Role     Role
}

// Validate checks that the triple is complete.
func (c Context) Validate() error {
	if c.UserID == "" {
		return ErrNoSession
	}
	if c.TenantID == "" {
		return ErrNoTenantContext
	}
	return nil
}
