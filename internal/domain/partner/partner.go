package partner

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a provisioned partner organization.
type Status string

const (
	// StatusPendingUser means phase 1 succeeded but no identity is linked yet.
	StatusPendingUser Status = "pending_user"
	// StatusActive is the terminal success state.
	StatusActive Status = "active"
)

// IsValid checks if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	return s == StatusPendingUser || s == StatusActive
}

func (s Status) String() string {
	return string(s)
}

// Partner represents an approved partner organization. Created atomically
// in phase 1 of the approval flow; identity-linked in phase 2.
type Partner struct {
	id            uint
	sid           string
	tenantID      string
	applicationID uint
	identityID    *string
	programAccess []string
	status        Status
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPartner creates a partner in the pending_user state.
func NewPartner(sid, tenantID string, applicationID uint, programAccess []string) (*Partner, error) {
	if sid == "" {
		return nil, fmt.Errorf("partner SID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if applicationID == 0 {
		return nil, fmt.Errorf("application ID is required")
	}
	if programAccess == nil {
		programAccess = []string{}
	}

	now := time.Now()
	return &Partner{
		sid:           sid,
		tenantID:      tenantID,
		applicationID: applicationID,
		programAccess: programAccess,
		status:        StatusPendingUser,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructPartner reconstructs a partner from persistence.
func ReconstructPartner(
	id uint,
	sid, tenantID string,
	applicationID uint,
	identityID *string,
	programAccess []string,
	status Status,
	version int,
	createdAt, updatedAt time.Time,
) (*Partner, error) {
	if id == 0 {
		return nil, fmt.Errorf("partner ID cannot be zero")
	}
	if applicationID == 0 {
		return nil, fmt.Errorf("application ID is required")
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid partner status: %s", status)
	}
	if programAccess == nil {
		programAccess = []string{}
	}

	return &Partner{
		id:            id,
		sid:           sid,
		tenantID:      tenantID,
		applicationID: applicationID,
		identityID:    identityID,
		programAccess: programAccess,
		status:        status,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

func (p *Partner) ID() uint            { return p.id }
func (p *Partner) SID() string         { return p.sid }
func (p *Partner) TenantID() string    { return p.tenantID }
func (p *Partner) ApplicationID() uint { return p.applicationID }
func (p *Partner) Status() Status      { return p.status }
func (p *Partner) Version() int        { return p.version }
func (p *Partner) CreatedAt() time.Time { return p.createdAt }
func (p *Partner) UpdatedAt() time.Time { return p.updatedAt }

// IdentityID returns the linked external identity, nil until phase 2 succeeds.
func (p *Partner) IdentityID() *string { return p.identityID }

// ProgramAccess returns the granted program identifiers.
func (p *Partner) ProgramAccess() []string {
	out := make([]string, len(p.programAccess))
	copy(out, p.programAccess)
	return out
}

// SetID sets the partner ID (persistence layer only).
func (p *Partner) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("partner ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("partner ID cannot be zero")
	}
	p.id = id
	return nil
}

// LinkIdentity attaches the external identity and activates the partner.
// Linking the same identity twice is a no-op; linking a different identity
// than the one already attached is a conflict.
func (p *Partner) LinkIdentity(identityID string) error {
	if identityID == "" {
		return fmt.Errorf("identity ID is required")
	}
	if p.identityID != nil {
		if *p.identityID == identityID {
			return nil
		}
		return ErrIdentityConflict
	}
	p.identityID = &identityID
	p.status = StatusActive
	p.updatedAt = time.Now()
	p.version++
	return nil
}
