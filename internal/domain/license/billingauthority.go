package license

import "time"

// Authority identifies which expiry field governs access for a license.
type Authority string

const (
	// AuthorityDB means expires_at governs (trials, lifetime grants).
	AuthorityDB Authority = "db"
	// AuthorityStripe means current_period_end governs (recurring tiers).
	// Stripe's window wins because billing webhooks may lag local writes.
	AuthorityStripe Authority = "stripe"
)

// Access denial reasons produced by the resolver and the gate.
const (
	ReasonTerminalStatus    = "terminal_status"
	ReasonInactiveBilling   = "billing_status_not_active"
	ReasonPeriodEnded       = "current_period_ended"
	ReasonExpired           = "expired"
	ReasonStatusInvalid     = "status_not_valid_for_tier"
	ReasonMisconfigured     = "stripe_tier_missing_subscription"
	ReasonNoLicense         = "no_license"
	ReasonFeatureNotGranted = "feature_not_entitled"
)

// Decision is the resolver's verdict for one license at one instant.
type Decision struct {
	HasAccess bool
	Authority Authority
	ExpiresAt *time.Time
	Reason    string
}

// ResolveBillingAuthority decides whether a license currently grants access
// and which expiry field was authoritative for that decision.
//
// Terminal statuses deny under either authority. Stripe-authoritative tiers
// grant iff status is active and current_period_end is absent or in the
// future; expires_at is ignored. DB-authoritative tiers grant iff status is
// non-terminal and expires_at is nil (unbounded) or in the future;
// current_period_end is ignored. A Stripe-authoritative tier with no linked
// subscription is misconfigured and denied with a diagnostic reason.
func ResolveBillingAuthority(l *License, now time.Time) Decision {
	if l.Tier().IsStripeAuthoritative() {
		return resolveStripe(l, now)
	}
	return resolveDB(l, now)
}

func resolveStripe(l *License, now time.Time) Decision {
	d := Decision{Authority: AuthorityStripe, ExpiresAt: l.CurrentPeriodEnd()}

	if l.Status().IsTerminal() {
		d.Reason = ReasonTerminalStatus
		return d
	}
	if l.StripeSubscriptionID() == nil || *l.StripeSubscriptionID() == "" {
		d.Reason = ReasonMisconfigured
		return d
	}
	if l.Status() != StatusActive {
		d.Reason = ReasonInactiveBilling
		return d
	}
	if end := l.CurrentPeriodEnd(); end != nil && !end.After(now) {
		d.Reason = ReasonPeriodEnded
		return d
	}

	d.HasAccess = true
	return d
}

func resolveDB(l *License, now time.Time) Decision {
	d := Decision{Authority: AuthorityDB, ExpiresAt: l.ExpiresAt()}

	if l.Status().IsTerminal() {
		d.Reason = ReasonTerminalStatus
		return d
	}
	if exp := l.ExpiresAt(); exp != nil && !exp.After(now) {
		d.Reason = ReasonExpired
		return d
	}

	d.HasAccess = true
	return d
}
