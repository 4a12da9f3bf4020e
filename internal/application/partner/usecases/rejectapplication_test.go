package usecases

import (
	"context"
	"testing"

	"skillforge/internal/application/partner/testutil"
	"skillforge/internal/domain/notification"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	apperrors "skillforge/internal/shared/errors"
	"skillforge/internal/shared/id"
)

type rejectionFixture struct {
	apps     *testutil.MockApplicationRepository
	profiles *testutil.MockProfileRepository
	outbox   *testutil.MockOutbox
	uc       *RejectApplicationUseCase
}

func newRejectionFixture(t *testing.T) *rejectionFixture {
	t.Helper()
	apps := testutil.NewMockApplicationRepository()
	profiles := testutil.NewMockProfileRepository()
	outbox := testutil.NewMockOutbox()

	profiles.AddProfile(&profile.Profile{
		ID:       testAdminID,
		TenantID: testTenantID,
		Email:    "admin@tenant.test",
		Role:     tenant.RoleAdmin,
	})

	return &rejectionFixture{
		apps:     apps,
		profiles: profiles,
		outbox:   outbox,
		uc:       NewRejectApplicationUseCase(apps, profiles, outbox, testutil.NewMockLogger()),
	}
}

func (f *rejectionFixture) addApplication(t *testing.T, tenantID string) *partner.Application {
	t.Helper()
	app, err := partner.NewApplication(
		id.MustGenerateWithPrefix(id.PrefixApplication, 12),
		tenantID,
		"owner@partnerco.test",
		"Jordan Rivers",
		[]string{"prog-cna"},
	)
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	f.apps.AddApplication(app)
	return app
}

func TestRejectApplication_Success(t *testing.T) {
	f := newRejectionFixture(t)
	app := f.addApplication(t, testTenantID)

	resp, err := f.uc.Execute(context.Background(), RejectApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
		Reason:         "incomplete program documentation",
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if resp.Status != partner.ApplicationStatusRejected.String() {
		t.Errorf("response status = %v, want %v", resp.Status, partner.ApplicationStatusRejected)
	}
	if app.Status() != partner.ApplicationStatusRejected {
		t.Errorf("application status = %v, want %v", app.Status(), partner.ApplicationStatusRejected)
	}

	records := f.outbox.Records()
	if len(records) != 1 {
		t.Fatalf("outbox records = %d, want 1", len(records))
	}
	if records[0].TemplateKey != notification.TemplateApplicationRejected {
		t.Errorf("outbox template = %v, want %v", records[0].TemplateKey, notification.TemplateApplicationRejected)
	}
	if records[0].TemplateData["reason"] != "incomplete program documentation" {
		t.Errorf("outbox reason = %v", records[0].TemplateData["reason"])
	}
}

// TestRejectApplication_CrossTenant_NotFound verifies an admin cannot reject
// another tenant's application: the response is indistinguishable from
// absence and the application stays submitted.
func TestRejectApplication_CrossTenant_NotFound(t *testing.T) {
	f := newRejectionFixture(t)
	app := f.addApplication(t, "tnt-other")

	_, err := f.uc.Execute(context.Background(), RejectApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
		Reason:         "does not matter",
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeNotFound {
		t.Errorf("error = %v, want not found AppError", err)
	}
	if app.Status() != partner.ApplicationStatusSubmitted {
		t.Errorf("application status = %v, want untouched submitted", app.Status())
	}
	if len(f.outbox.Records()) != 0 {
		t.Error("outbox must stay empty on refused request")
	}
}

func TestRejectApplication_NonAdmin_Forbidden(t *testing.T) {
	f := newRejectionFixture(t)
	app := f.addApplication(t, testTenantID)
	f.profiles.AddProfile(&profile.Profile{
		ID:       "usr-member",
		TenantID: testTenantID,
		Role:     tenant.RoleMember,
	})

	_, err := f.uc.Execute(context.Background(), RejectApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          tenant.Context{TenantID: testTenantID, UserID: "usr-member", Role: tenant.RoleMember},
		Reason:         "does not matter",
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeForbidden {
		t.Errorf("error = %v, want forbidden AppError", err)
	}
	if app.Status() != partner.ApplicationStatusSubmitted {
		t.Errorf("application status = %v, want untouched submitted", app.Status())
	}
}

func TestRejectApplication_AlreadyApproved_ValidationError(t *testing.T) {
	f := newRejectionFixture(t)
	app := f.addApplication(t, testTenantID)
	if err := app.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	_, err := f.uc.Execute(context.Background(), RejectApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
		Reason:         "too late",
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("error = %v, want validation AppError", err)
	}
}
