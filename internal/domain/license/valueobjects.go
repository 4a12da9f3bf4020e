// Package license provides domain models and decision rules for per-tenant
// entitlement records. The billing authority resolver decides, per tier,
// which expiry field governs access.
package license

import "strings"

// Tier is an enumerated plan identifier. The naming convention carries
// billing semantics: tiers suffixed _monthly or _annual are recurring
// Stripe-billed subscriptions; everything else (trial, lifetime grants)
// is billed nowhere and the database record is the source of truth.
type Tier string

const (
	TierTrial             Tier = "trial"
	TierLifetime          Tier = "lifetime"
	TierStarterMonthly    Tier = "starter_monthly"
	TierStarterAnnual     Tier = "starter_annual"
	TierProMonthly        Tier = "pro_monthly"
	TierProAnnual         Tier = "pro_annual"
	TierEnterpriseMonthly Tier = "enterprise_monthly"
	TierEnterpriseAnnual  Tier = "enterprise_annual"
)

// IsValid checks if the tier is one of the known plan identifiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierTrial, TierLifetime,
		TierStarterMonthly, TierStarterAnnual,
		TierProMonthly, TierProAnnual,
		TierEnterpriseMonthly, TierEnterpriseAnnual:
		return true
	default:
		return false
	}
}

// IsStripeAuthoritative reports whether Stripe's subscription period, not
// the local expires_at column, governs access for this tier.
func (t Tier) IsStripeAuthoritative() bool {
	s := string(t)
	return strings.HasSuffix(s, "_monthly") || strings.HasSuffix(s, "_annual")
}

// String returns the string representation of the tier
func (t Tier) String() string {
	return string(t)
}

// Well-known feature names checked by gated routes. Licenses may carry any
// feature string; these are the ones the server itself gates on.
const (
	FeaturePartnerApproval   = "partner_approval"
	FeatureAdvancedReporting = "advanced_reporting"
)

// Status is the lifecycle state of a license record.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrial     Status = "trial"
	StatusPastDue   Status = "past_due"
	StatusSuspended Status = "suspended"
	StatusCanceled  Status = "canceled"
)

// IsValid checks if the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusTrial, StatusPastDue, StatusSuspended, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status denies access under either billing
// authority, regardless of expiry fields.
func (s Status) IsTerminal() bool {
	return s == StatusSuspended || s == StatusCanceled
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
