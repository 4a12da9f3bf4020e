package partner

import (
	"strings"
	"testing"
)

func submittedApplication(t *testing.T) *Application {
	t.Helper()
	app, err := NewApplication("app_test0001", "tnt-001", "Owner@Example.COM ", "Jordan Rivers", []string{"prog-cna"})
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	return app
}

func TestNewApplication_NormalizesEmail(t *testing.T) {
	app := submittedApplication(t)
	if app.ContactEmail() != "owner@example.com" {
		t.Errorf("ContactEmail() = %q, want lowercased trimmed", app.ContactEmail())
	}
	if app.Status() != ApplicationStatusSubmitted {
		t.Errorf("Status() = %v, want submitted", app.Status())
	}
}

func TestNewApplication_Validation(t *testing.T) {
	tests := []struct {
		name                       string
		sid, tenantID, email, owner string
	}{
		{"missing sid", "", "tnt-001", "a@b.c", "Owner"},
		{"missing tenant", "app_x", "", "a@b.c", "Owner"},
		{"missing email", "app_x", "tnt-001", "   ", "Owner"},
		{"missing owner", "app_x", "tnt-001", "a@b.c", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewApplication(tt.sid, tt.tenantID, tt.email, tt.owner, nil); err == nil {
				t.Error("NewApplication() expected error")
			}
		})
	}
}

func TestApplicationApprove(t *testing.T) {
	app := submittedApplication(t)

	if err := app.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if app.Status() != ApplicationStatusApprovedPendingUser {
		t.Errorf("Status() = %v, want approved_pending_user", app.Status())
	}

	v := app.Version()
	if err := app.Approve(); err != nil {
		t.Fatalf("repeat Approve() error = %v", err)
	}
	if app.Version() != v {
		t.Error("repeat Approve() must be a no-op")
	}
}

func TestApplicationApprove_AfterRejection(t *testing.T) {
	app := submittedApplication(t)
	if err := app.Reject(); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if err := app.Approve(); err == nil {
		t.Error("Approve() after rejection expected error")
	}
	if app.Status() != ApplicationStatusRejected {
		t.Errorf("Status() = %v, want rejected", app.Status())
	}
}

func TestApplicationMarkApproved(t *testing.T) {
	app := submittedApplication(t)

	if err := app.MarkApproved(); err == nil {
		t.Error("MarkApproved() from submitted expected error")
	}

	if err := app.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := app.MarkApproved(); err != nil {
		t.Fatalf("MarkApproved() error = %v", err)
	}
	if app.Status() != ApplicationStatusApproved {
		t.Errorf("Status() = %v, want approved", app.Status())
	}
	if err := app.MarkApproved(); err != nil {
		t.Errorf("repeat MarkApproved() error = %v, want no-op", err)
	}

	// terminal approval also survives a late Approve replay
	if err := app.Approve(); err != nil {
		t.Errorf("Approve() on terminal approved = %v, want no-op", err)
	}
	if app.Status() != ApplicationStatusApproved {
		t.Errorf("Status() = %v, replay must not regress terminal state", app.Status())
	}
}

func TestApplicationReject(t *testing.T) {
	app := submittedApplication(t)
	if err := app.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if err := app.Reject(); err == nil {
		t.Error("Reject() after approval expected error")
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Owner@Example.COM", "owner@example.com"},
		{"  a@b.c  ", "a@b.c"},
		{"already@lower.case", "already@lower.case"},
	}
	for _, tt := range tests {
		if got := NormalizeEmail(tt.in); got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveApprovalKey_Deterministic(t *testing.T) {
	k1 := DeriveApprovalKey("app_test0001")
	k2 := DeriveApprovalKey("app_test0001")
	if k1 != k2 {
		t.Error("same application must derive the same key")
	}
	if k1 == DeriveApprovalKey("app_test0002") {
		t.Error("different applications must derive different keys")
	}
	if len(k1) != 64 || strings.ToLower(k1) != k1 {
		t.Errorf("key %q is not lowercase hex sha-256", k1)
	}
}

func TestPartnerLinkIdentity(t *testing.T) {
	p, err := NewPartner("ptr_test0001", "tnt-001", 1, []string{"prog-cna"})
	if err != nil {
		t.Fatalf("NewPartner() error = %v", err)
	}
	if p.Status() != StatusPendingUser {
		t.Errorf("Status() = %v, want pending_user", p.Status())
	}

	if err := p.LinkIdentity("idp-1"); err != nil {
		t.Fatalf("LinkIdentity() error = %v", err)
	}
	if p.Status() != StatusActive {
		t.Errorf("Status() = %v, want active", p.Status())
	}
	if p.IdentityID() == nil || *p.IdentityID() != "idp-1" {
		t.Errorf("IdentityID() = %v, want idp-1", p.IdentityID())
	}

	if err := p.LinkIdentity("idp-1"); err != nil {
		t.Errorf("re-link same identity = %v, want no-op", err)
	}
	if err := p.LinkIdentity("idp-2"); err != ErrIdentityConflict {
		t.Errorf("re-link different identity = %v, want ErrIdentityConflict", err)
	}
	if *p.IdentityID() != "idp-1" {
		t.Error("conflicting link must not overwrite the identity")
	}
}
