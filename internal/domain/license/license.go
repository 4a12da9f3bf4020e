package license

import (
	"fmt"
	"time"
)

// License represents the per-tenant entitlement aggregate root.
// Mutations originate from billing webhooks and admin tooling; the gate
// only ever reads it.
type License struct {
	id                   uint
	sid                  string
	tenantID             string
	tier                 Tier
	status               Status
	expiresAt            *time.Time
	currentPeriodEnd     *time.Time
	stripeSubscriptionID *string
	features             []string
	maxUsers             uint
	maxDeployments       uint
	version              int
	createdAt            time.Time
	updatedAt            time.Time
}

// NewLicense creates a new license for a tenant.
func NewLicense(sid, tenantID string, tier Tier, status Status) (*License, error) {
	if sid == "" {
		return nil, fmt.Errorf("license SID is required")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid license tier: %s", tier)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid license status: %s", status)
	}

	now := time.Now()
	return &License{
		sid:       sid,
		tenantID:  tenantID,
		tier:      tier,
		status:    status,
		features:  []string{},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructLicense reconstructs a license from persistence.
func ReconstructLicense(
	id uint,
	sid, tenantID string,
	tier Tier,
	status Status,
	expiresAt, currentPeriodEnd *time.Time,
	stripeSubscriptionID *string,
	features []string,
	maxUsers, maxDeployments uint,
	version int,
	createdAt, updatedAt time.Time,
) (*License, error) {
	if id == 0 {
		return nil, fmt.Errorf("license ID cannot be zero")
	}
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid license tier: %s", tier)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid license status: %s", status)
	}
	if features == nil {
		features = []string{}
	}

	return &License{
		id:                   id,
		sid:                  sid,
		tenantID:             tenantID,
		tier:                 tier,
		status:               status,
		expiresAt:            expiresAt,
		currentPeriodEnd:     currentPeriodEnd,
		stripeSubscriptionID: stripeSubscriptionID,
		features:             features,
		maxUsers:             maxUsers,
		maxDeployments:       maxDeployments,
		version:              version,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}, nil
}

func (l *License) ID() uint          { return l.id }
func (l *License) SID() string       { return l.sid }
func (l *License) TenantID() string  { return l.tenantID }
func (l *License) Tier() Tier        { return l.tier }
func (l *License) Status() Status    { return l.status }
func (l *License) MaxUsers() uint    { return l.maxUsers }
func (l *License) MaxDeployments() uint { return l.maxDeployments }
func (l *License) Version() int      { return l.version }
func (l *License) CreatedAt() time.Time { return l.createdAt }
func (l *License) UpdatedAt() time.Time { return l.updatedAt }

// ExpiresAt returns the DB-authoritative expiry (nil means unbounded).
func (l *License) ExpiresAt() *time.Time { return l.expiresAt }

// CurrentPeriodEnd returns the Stripe-authoritative period end.
func (l *License) CurrentPeriodEnd() *time.Time { return l.currentPeriodEnd }

// StripeSubscriptionID returns the linked Stripe subscription, if any.
func (l *License) StripeSubscriptionID() *string { return l.stripeSubscriptionID }

// Features returns the named capability strings granted by this license.
func (l *License) Features() []string {
	out := make([]string, len(l.features))
	copy(out, l.features)
	return out
}

// HasFeature checks membership in the license's feature set.
func (l *License) HasFeature(feature string) bool {
	for _, f := range l.features {
		if f == feature {
			return true
		}
	}
	return false
}

// SetID sets the license ID (persistence layer only).
func (l *License) SetID(id uint) error {
	if l.id != 0 {
		return fmt.Errorf("license ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("license ID cannot be zero")
	}
	l.id = id
	return nil
}

// SetEntitlements replaces the feature set and usage ceilings. Used by the
// billing webhook handler and admin tooling, never by the gate.
func (l *License) SetEntitlements(features []string, maxUsers, maxDeployments uint) {
	if features == nil {
		features = []string{}
	}
	l.features = features
	l.maxUsers = maxUsers
	l.maxDeployments = maxDeployments
	l.touch()
}

// SetBillingWindow records the expiry fields written by billing updates.
func (l *License) SetBillingWindow(expiresAt, currentPeriodEnd *time.Time, stripeSubscriptionID *string) {
	l.expiresAt = expiresAt
	l.currentPeriodEnd = currentPeriodEnd
	l.stripeSubscriptionID = stripeSubscriptionID
	l.touch()
}

// SetStatus transitions the lifecycle state.
func (l *License) SetStatus(status Status) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid license status: %s", status)
	}
	l.status = status
	l.touch()
	return nil
}

func (l *License) touch() {
	l.updatedAt = time.Now()
	l.version++
}
