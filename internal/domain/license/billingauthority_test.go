package license

import (
	"testing"
	"time"
)

func buildLicense(t *testing.T, tier Tier, status Status, expiresAt, periodEnd *time.Time, subID *string) *License {
	t.Helper()
	l, err := ReconstructLicense(
		1, "lic_test0001", "tnt-001", tier, status,
		expiresAt, periodEnd, subID, nil, 0, 0, 1,
		time.Now(), time.Now(),
	)
	if err != nil {
		t.Fatalf("ReconstructLicense() error = %v", err)
	}
	return l
}

func TestResolveBillingAuthority(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)
	sub := "sub_abc123"

	tests := []struct {
		name          string
		tier          Tier
		status        Status
		expiresAt     *time.Time
		periodEnd     *time.Time
		subID         *string
		wantAccess    bool
		wantAuthority Authority
		wantReason    string
	}{
		{
			name: "stripe tier active with future period", tier: TierProMonthly, status: StatusActive,
			periodEnd: &future, subID: &sub,
			wantAccess: true, wantAuthority: AuthorityStripe,
		},
		{
			name: "stripe tier active with no period end", tier: TierProMonthly, status: StatusActive,
			subID:      &sub,
			wantAccess: true, wantAuthority: AuthorityStripe,
		},
		{
			name: "stripe tier period ended", tier: TierProAnnual, status: StatusActive,
			periodEnd: &past, subID: &sub,
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonPeriodEnded,
		},
		{
			name: "stripe tier ignores stale expires_at", tier: TierEnterpriseMonthly, status: StatusActive,
			expiresAt: &past, periodEnd: &future, subID: &sub,
			wantAccess: true, wantAuthority: AuthorityStripe,
		},
		{
			name: "stripe tier past_due denied even with future period", tier: TierProMonthly, status: StatusPastDue,
			periodEnd: &future, subID: &sub,
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonInactiveBilling,
		},
		{
			name: "stripe tier trial status denied", tier: TierStarterMonthly, status: StatusTrial,
			periodEnd: &future, subID: &sub,
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonInactiveBilling,
		},
		{
			name: "stripe tier missing subscription", tier: TierProMonthly, status: StatusActive,
			periodEnd:  &future,
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonMisconfigured,
		},
		{
			name: "stripe tier empty subscription id", tier: TierProMonthly, status: StatusActive,
			periodEnd: &future, subID: ptr(""),
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonMisconfigured,
		},
		{
			name: "stripe tier canceled wins over everything", tier: TierProMonthly, status: StatusCanceled,
			periodEnd: &future, subID: &sub,
			wantAccess: false, wantAuthority: AuthorityStripe, wantReason: ReasonTerminalStatus,
		},
		{
			name: "trial with future expiry", tier: TierTrial, status: StatusTrial,
			expiresAt:  &future,
			wantAccess: true, wantAuthority: AuthorityDB,
		},
		{
			name: "trial expired", tier: TierTrial, status: StatusTrial,
			expiresAt:  &past,
			wantAccess: false, wantAuthority: AuthorityDB, wantReason: ReasonExpired,
		},
		{
			name: "lifetime unbounded", tier: TierLifetime, status: StatusActive,
			wantAccess: true, wantAuthority: AuthorityDB,
		},
		{
			name: "db tier ignores stale period end", tier: TierLifetime, status: StatusActive,
			periodEnd:  &past,
			wantAccess: true, wantAuthority: AuthorityDB,
		},
		{
			name: "db tier past_due still grants", tier: TierTrial, status: StatusPastDue,
			expiresAt:  &future,
			wantAccess: true, wantAuthority: AuthorityDB,
		},
		{
			name: "db tier suspended denied", tier: TierLifetime, status: StatusSuspended,
			wantAccess: false, wantAuthority: AuthorityDB, wantReason: ReasonTerminalStatus,
		},
		{
			name: "db tier canceled denied", tier: TierTrial, status: StatusCanceled,
			expiresAt:  &future,
			wantAccess: false, wantAuthority: AuthorityDB, wantReason: ReasonTerminalStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := buildLicense(t, tt.tier, tt.status, tt.expiresAt, tt.periodEnd, tt.subID)
			d := ResolveBillingAuthority(l, now)
			if d.HasAccess != tt.wantAccess {
				t.Errorf("HasAccess = %v, want %v (reason %q)", d.HasAccess, tt.wantAccess, d.Reason)
			}
			if d.Authority != tt.wantAuthority {
				t.Errorf("Authority = %v, want %v", d.Authority, tt.wantAuthority)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

// TestResolveBillingAuthority_PeriodBoundary pins the boundary: a period
// ending exactly now is ended.
func TestResolveBillingAuthority_PeriodBoundary(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	sub := "sub_abc123"
	l := buildLicense(t, TierProMonthly, StatusActive, nil, &now, &sub)

	d := ResolveBillingAuthority(l, now)
	if d.HasAccess {
		t.Error("a period ending exactly now must deny")
	}
	if d.Reason != ReasonPeriodEnded {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonPeriodEnded)
	}
}

func TestTierIsStripeAuthoritative(t *testing.T) {
	tests := []struct {
		tier Tier
		want bool
	}{
		{TierTrial, false},
		{TierLifetime, false},
		{TierStarterMonthly, true},
		{TierStarterAnnual, true},
		{TierProMonthly, true},
		{TierProAnnual, true},
		{TierEnterpriseMonthly, true},
		{TierEnterpriseAnnual, true},
	}
	for _, tt := range tests {
		if got := tt.tier.IsStripeAuthoritative(); got != tt.want {
			t.Errorf("%s.IsStripeAuthoritative() = %v, want %v", tt.tier, got, tt.want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusTrial, StatusPastDue} {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
	for _, s := range []Status{StatusSuspended, StatusCanceled} {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
}

func ptr(s string) *string { return &s }
