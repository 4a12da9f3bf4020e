// Package partner provides domain models for partner intake applications and
// provisioned partner organizations. The approval flow owns every mutation
// in this package; page-serving code only ever reads.
package partner

import (
	"fmt"
	"strings"
	"time"
)

// ApplicationStatus is the lifecycle state of an intake application.
type ApplicationStatus string

const (
	ApplicationStatusSubmitted           ApplicationStatus = "submitted"
	ApplicationStatusApprovedPendingUser ApplicationStatus = "approved_pending_user"
	ApplicationStatusApproved            ApplicationStatus = "approved"
	ApplicationStatusRejected            ApplicationStatus = "rejected"
)

// IsValid checks if the status is a known lifecycle state.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusApprovedPendingUser,
		ApplicationStatusApproved, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// IsApproved reports whether phase 1 side effects have already run.
// Once true, the approval procedure must never re-execute them.
func (s ApplicationStatus) IsApproved() bool {
	return s == ApplicationStatusApprovedPendingUser || s == ApplicationStatusApproved
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// Application represents a prospective partner's submitted intake.
type Application struct {
	id                uint
	sid               string
	tenantID          string
	contactEmail      string
	ownerName         string
	requestedPrograms []string
	status            ApplicationStatus
	version           int
	createdAt         time.Time
	updatedAt         time.Time
}

// NewApplication creates a freshly submitted application.
func NewApplication(sid, tenantID, contactEmail, ownerName string, requestedPrograms []string) (*Application, error) {
	if sid == "" {
		return nil, fmt.Errorf("application SID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	contactEmail = NormalizeEmail(contactEmail)
	if contactEmail == "" {
		return nil, fmt.Errorf("contact email is required")
	}
	if ownerName == "" {
		return nil, fmt.Errorf("owner name is required")
	}
	if requestedPrograms == nil {
		requestedPrograms = []string{}
	}

	now := time.Now()
	return &Application{
		sid:               sid,
		tenantID:          tenantID,
		contactEmail:      contactEmail,
		ownerName:         ownerName,
		requestedPrograms: requestedPrograms,
		status:            ApplicationStatusSubmitted,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

// ReconstructApplication reconstructs an application from persistence.
func ReconstructApplication(
	id uint,
	sid, tenantID, contactEmail, ownerName string,
	requestedPrograms []string,
	status ApplicationStatus,
	version int,
	createdAt, updatedAt time.Time,
) (*Application, error) {
	if id == 0 {
		return nil, fmt.Errorf("application ID cannot be zero")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid application status: %s", status)
	}
	if requestedPrograms == nil {
		requestedPrograms = []string{}
	}

	return &Application{
		id:                id,
		sid:               sid,
		tenantID:          tenantID,
		contactEmail:      NormalizeEmail(contactEmail),
		ownerName:         ownerName,
		requestedPrograms: requestedPrograms,
		status:            status,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}, nil
}

func (a *Application) ID() uint                 { return a.id }
func (a *Application) SID() string              { return a.sid }
func (a *Application) TenantID() string         { return a.tenantID }
func (a *Application) ContactEmail() string     { return a.contactEmail }
func (a *Application) OwnerName() string        { return a.ownerName }
func (a *Application) Status() ApplicationStatus { return a.status }
func (a *Application) Version() int             { return a.version }
func (a *Application) CreatedAt() time.Time     { return a.createdAt }
func (a *Application) UpdatedAt() time.Time     { return a.updatedAt }

// RequestedPrograms returns the program identifiers the applicant asked for.
func (a *Application) RequestedPrograms() []string {
	out := make([]string, len(a.requestedPrograms))
	copy(out, a.requestedPrograms)
	return out
}

// SetID sets the application ID (persistence layer only).
func (a *Application) SetID(id uint) error {
	if a.id != 0 {
		return fmt.Errorf("application ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("application ID cannot be zero")
	}
	a.id = id
	return nil
}

// Approve moves a submitted application into the stable intermediate
// approved_pending_user state. Calling it on an already-approved
// application is a no-op so the approval procedure stays replay-safe.
func (a *Application) Approve() error {
	if a.status.IsApproved() {
		return nil
	}
	if a.status == ApplicationStatusRejected {
		return fmt.Errorf("cannot approve rejected application %s", a.sid)
	}
	a.status = ApplicationStatusApprovedPendingUser
	a.touch()
	return nil
}

// MarkApproved records terminal success once the partner has a linked
// identity.
func (a *Application) MarkApproved() error {
	if a.status == ApplicationStatusApproved {
		return nil
	}
	if a.status != ApplicationStatusApprovedPendingUser {
		return fmt.Errorf("cannot mark application %s approved from status %s", a.sid, a.status)
	}
	a.status = ApplicationStatusApproved
	a.touch()
	return nil
}

// Reject terminates a submitted application with no partner side effects.
func (a *Application) Reject() error {
	if a.status == ApplicationStatusRejected {
		return nil
	}
	if a.status != ApplicationStatusSubmitted {
		return fmt.Errorf("cannot reject application %s from status %s", a.sid, a.status)
	}
	a.status = ApplicationStatusRejected
	a.touch()
	return nil
}

func (a *Application) touch() {
	a.updatedAt = time.Now()
	a.version++
}

// NormalizeEmail lowercases and trims an address. Email is the natural key
// for identity lookup, so every comparison goes through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
