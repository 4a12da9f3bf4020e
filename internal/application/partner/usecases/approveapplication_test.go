package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"skillforge/internal/application/partner/dto"
	"skillforge/internal/application/partner/testutil"
	"skillforge/internal/domain/notification"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/domain/tenant"
	apperrors "skillforge/internal/shared/errors"
	"skillforge/internal/shared/id"
)

const (
	testTenantID = "tnt-001"
	testAdminID  = "usr-admin"
	testLoginURL = "https://portal.test/login"
)

type approvalFixture struct {
	apps       *testutil.MockApplicationRepository
	partners   *testutil.MockPartnerRepository
	profiles   *testutil.MockProfileRepository
	identities *testutil.MockIdentityProvider
	outbox     *testutil.MockOutbox
	uc         *ApproveApplicationUseCase
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	apps := testutil.NewMockApplicationRepository()
	partners := testutil.NewMockPartnerRepository(apps)
	profiles := testutil.NewMockProfileRepository()
	identities := testutil.NewMockIdentityProvider()
	outbox := testutil.NewMockOutbox()

	profiles.AddProfile(&profile.Profile{
		ID:       testAdminID,
		TenantID: testTenantID,
		Email:    "admin@tenant.test",
		Role:     tenant.RoleAdmin,
	})

	uc := NewApproveApplicationUseCase(
		apps, partners, profiles, identities, outbox, testLoginURL, testutil.NewMockLogger(),
	)
	return &approvalFixture{
		apps:       apps,
		partners:   partners,
		profiles:   profiles,
		identities: identities,
		outbox:     outbox,
		uc:         uc,
	}
}

func (f *approvalFixture) addSubmittedApplication(t *testing.T, email string) *partner.Application {
	t.Helper()
	app, err := partner.NewApplication(
		id.MustGenerateWithPrefix(id.PrefixApplication, 12),
		testTenantID,
		email,
		"Jordan Rivers",
		[]string{"prog-cna", "prog-hha"},
	)
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	f.apps.AddApplication(app)
	return app
}

func adminActor() tenant.Context {
	return tenant.Context{TenantID: testTenantID, UserID: testAdminID, Role: tenant.RoleAdmin}
}

// TestApproveApplication_Success verifies the full saga: partner created,
// identity created and linked, application terminal, welcome queued.
func TestApproveApplication_Success(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() unexpected error = %v", err)
	}
	if result.Outcome != dto.OutcomeApproved {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomeApproved)
	}
	if result.PartnerSID == "" {
		t.Error("result.PartnerSID is empty")
	}
	if result.RetryableError != "" {
		t.Errorf("result.RetryableError = %q, want empty", result.RetryableError)
	}
	if result.AccessLink == "" || result.AccessLink == testLoginURL {
		t.Errorf("result.AccessLink = %q, want provider magic link", result.AccessLink)
	}

	if got := f.partners.PartnerCount(); got != 1 {
		t.Errorf("partner count = %d, want 1", got)
	}
	if app.Status() != partner.ApplicationStatusApproved {
		t.Errorf("application status = %v, want %v", app.Status(), partner.ApplicationStatusApproved)
	}

	p, err := f.partners.GetBySID(context.Background(), result.PartnerSID)
	if err != nil {
		t.Fatalf("GetBySID() error = %v", err)
	}
	if p.Status() != partner.StatusActive {
		t.Errorf("partner status = %v, want %v", p.Status(), partner.StatusActive)
	}
	if p.IdentityID() == nil {
		t.Error("partner has no linked identity")
	}

	records := f.outbox.Records()
	if len(records) != 1 {
		t.Fatalf("outbox records = %d, want 1", len(records))
	}
	if records[0].TemplateKey != notification.TemplatePartnerWelcome {
		t.Errorf("outbox template = %v, want %v", records[0].TemplateKey, notification.TemplatePartnerWelcome)
	}
	if records[0].ToEmail != "owner@partnerco.test" {
		t.Errorf("outbox recipient = %v", records[0].ToEmail)
	}
}

// TestApproveApplication_SecondCall_Idempotent verifies re-invocation after
// full success creates nothing new.
func TestApproveApplication_SecondCall_Idempotent(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	cmd := ApproveApplicationCommand{ApplicationSID: app.SID(), Actor: adminActor()}

	first, err := f.uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	second, err := f.uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}

	if second.Outcome != dto.OutcomeApproved {
		t.Errorf("second outcome = %v, want %v", second.Outcome, dto.OutcomeApproved)
	}
	if !second.Idempotent {
		t.Error("second call should report idempotent phase 1")
	}
	if second.PartnerSID != first.PartnerSID {
		t.Errorf("partner IDs differ across calls: %v vs %v", first.PartnerSID, second.PartnerSID)
	}
	if got := f.partners.PartnerCount(); got != 1 {
		t.Errorf("partner count = %d, want 1", got)
	}
	if f.partners.SideEffectCount != 1 {
		t.Errorf("phase 1 side effects ran %d times, want 1", f.partners.SideEffectCount)
	}
}

// TestApproveApplication_Concurrent_AtMostOnePartner runs ten concurrent
// approvals of the same application and asserts a single partner row.
func TestApproveApplication_Concurrent_AtMostOnePartner(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	cmd := ApproveApplicationCommand{ApplicationSID: app.SID(), Actor: adminActor()}

	const n = 10
	var wg sync.WaitGroup
	results := make([]*dto.ApprovalResult, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.uc.Execute(context.Background(), cmd)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("Execute()[%d] error = %v", i, errs[i])
		}
	}
	if got := f.partners.PartnerCount(); got != 1 {
		t.Errorf("partner count = %d, want exactly 1", got)
	}
	if f.partners.SideEffectCount != 1 {
		t.Errorf("phase 1 side effects ran %d times, want 1", f.partners.SideEffectCount)
	}

	sid := results[0].PartnerSID
	for i := 1; i < n; i++ {
		if results[i].PartnerSID != sid {
			t.Errorf("result[%d].PartnerSID = %v, want %v", i, results[i].PartnerSID, sid)
		}
	}
}

// TestApproveApplication_IdentityCreateFails_PendingUser verifies the 207
// contract: phase 1 committed, retryable error reported, partner kept.
func TestApproveApplication_IdentityCreateFails_PendingUser(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.identities.SetCreateError(errors.New("provider unavailable"))

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, partial failure must not be a hard error", err)
	}
	if result.Outcome != dto.OutcomePendingUser {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomePendingUser)
	}
	if result.PartnerSID == "" {
		t.Error("result.PartnerSID must be present for retry")
	}
	if result.RetryableError == "" {
		t.Error("result.RetryableError must explain the retry")
	}
	if app.Status() != partner.ApplicationStatusApprovedPendingUser {
		t.Errorf("application status = %v, want %v", app.Status(), partner.ApplicationStatusApprovedPendingUser)
	}
	if got := f.partners.PartnerCount(); got != 1 {
		t.Errorf("partner count = %d, want 1", got)
	}
}

// TestApproveApplication_RetryAfterIdentityFailure completes the saga on a
// second invocation without re-running phase 1.
func TestApproveApplication_RetryAfterIdentityFailure(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	cmd := ApproveApplicationCommand{ApplicationSID: app.SID(), Actor: adminActor()}

	f.identities.SetCreateError(errors.New("provider unavailable"))
	first, err := f.uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.Outcome != dto.OutcomePendingUser {
		t.Fatalf("first outcome = %v, want %v", first.Outcome, dto.OutcomePendingUser)
	}

	f.identities.SetCreateError(nil)
	second, err := f.uc.Execute(context.Background(), cmd)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if second.Outcome != dto.OutcomeApproved {
		t.Errorf("second outcome = %v, want %v", second.Outcome, dto.OutcomeApproved)
	}
	if !second.Idempotent {
		t.Error("retry must observe idempotent phase 1")
	}
	if second.PartnerSID != first.PartnerSID {
		t.Errorf("retry provisioned a different partner: %v vs %v", second.PartnerSID, first.PartnerSID)
	}
	if got := f.partners.PartnerCount(); got != 1 {
		t.Errorf("partner count = %d, want 1", got)
	}
	if f.partners.SideEffectCount != 1 {
		t.Errorf("phase 1 side effects ran %d times, want 1", f.partners.SideEffectCount)
	}
	if app.Status() != partner.ApplicationStatusApproved {
		t.Errorf("application status = %v, want %v", app.Status(), partner.ApplicationStatusApproved)
	}
}

// TestApproveApplication_LinkFails_PendingUser covers the second partial
// failure mode: identity exists but linking fails.
func TestApproveApplication_LinkFails_PendingUser(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.partners.SetLinkError(errors.New("deadlock detected"))

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Outcome != dto.OutcomePendingUser {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomePendingUser)
	}
	if result.PartnerSID == "" {
		t.Error("result.PartnerSID must be present for retry")
	}

	f.partners.SetLinkError(nil)
	retry, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("retry Execute() error = %v", err)
	}
	if retry.Outcome != dto.OutcomeApproved {
		t.Errorf("retry outcome = %v, want %v", retry.Outcome, dto.OutcomeApproved)
	}
	if f.identities.CreateCalls != 1 {
		t.Errorf("identity created %d times, want 1 (retry must reuse)", f.identities.CreateCalls)
	}
}

// TestApproveApplication_NonAdmin_Forbidden asserts the authorization gate
// fires before any mutation.
func TestApproveApplication_NonAdmin_Forbidden(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.profiles.AddProfile(&profile.Profile{
		ID:       "usr-member",
		TenantID: testTenantID,
		Role:     tenant.RoleMember,
	})

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          tenant.Context{TenantID: testTenantID, UserID: "usr-member", Role: tenant.RoleMember},
	})
	if err == nil {
		t.Fatal("Execute() expected forbidden error")
	}
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeForbidden {
		t.Errorf("error = %v, want forbidden AppError", err)
	}
	if got := f.partners.PartnerCount(); got != 0 {
		t.Errorf("partner count = %d, want 0 (no writes before authz)", got)
	}
	if app.Status() != partner.ApplicationStatusSubmitted {
		t.Errorf("application status = %v, want untouched submitted", app.Status())
	}
	if len(f.outbox.Records()) != 0 {
		t.Error("outbox must stay empty on refused request")
	}
}

// TestApproveApplication_MissingSession_Unauthorized maps an empty user ID
// to 401.
func TestApproveApplication_MissingSession_Unauthorized(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          tenant.Context{},
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeUnauthorized {
		t.Errorf("error = %v, want unauthorized AppError", err)
	}
}

// TestApproveApplication_MissingTenant_Forbidden maps a session without a
// tenant claim to 403.
func TestApproveApplication_MissingTenant_Forbidden(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          tenant.Context{UserID: testAdminID},
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeForbidden {
		t.Errorf("error = %v, want forbidden AppError", err)
	}
}

// TestApproveApplication_NotFound verifies the 404 path.
func TestApproveApplication_NotFound(t *testing.T) {
	f := newApprovalFixture(t)

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: "app_missing00000",
		Actor:          adminActor(),
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeNotFound {
		t.Errorf("error = %v, want not found AppError", err)
	}
}

// TestApproveApplication_CrossTenant_NotFound verifies an admin cannot
// approve another tenant's application: the response is indistinguishable
// from absence and nothing is written.
func TestApproveApplication_CrossTenant_NotFound(t *testing.T) {
	f := newApprovalFixture(t)
	app, err := partner.NewApplication(
		id.MustGenerateWithPrefix(id.PrefixApplication, 12),
		"tnt-other",
		"owner@otherco.test",
		"Casey Blake",
		[]string{"prog-cna"},
	)
	if err != nil {
		t.Fatalf("NewApplication() error = %v", err)
	}
	f.apps.AddApplication(app)

	_, err = f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeNotFound {
		t.Errorf("error = %v, want not found AppError", err)
	}
	if got := f.partners.PartnerCount(); got != 0 {
		t.Errorf("partner count = %d, want 0 (no cross-tenant writes)", got)
	}
	if app.Status() != partner.ApplicationStatusSubmitted {
		t.Errorf("application status = %v, want untouched submitted", app.Status())
	}
}

// TestApproveApplication_Rejected_ValidationError refuses to approve a
// terminal rejection.
func TestApproveApplication_Rejected_ValidationError(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	if err := app.Reject(); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	appErr := apperrors.GetAppError(err)
	if appErr == nil || appErr.Type != apperrors.ErrorTypeValidation {
		t.Errorf("error = %v, want validation AppError", err)
	}
	if got := f.partners.PartnerCount(); got != 0 {
		t.Errorf("partner count = %d, want 0", got)
	}
}

// TestApproveApplication_ExistingIdentity_Reused links an already-known
// identity without creating a duplicate.
func TestApproveApplication_ExistingIdentity_Reused(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "Owner@PartnerCo.Test")
	f.identities.AddIdentity("owner@partnerco.test", "idp-existing-1")

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Outcome != dto.OutcomeApproved {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomeApproved)
	}
	if f.identities.CreateCalls != 0 {
		t.Errorf("identity Create called %d times, want 0", f.identities.CreateCalls)
	}

	p, err := f.partners.GetBySID(context.Background(), result.PartnerSID)
	if err != nil {
		t.Fatalf("GetBySID() error = %v", err)
	}
	if p.IdentityID() == nil || *p.IdentityID() != "idp-existing-1" {
		t.Errorf("linked identity = %v, want idp-existing-1", p.IdentityID())
	}
}

// TestApproveApplication_CreateRace_ResolvedByReRead covers the narrow
// lookup/create race: create loses to a concurrent insert and the retry
// read wins.
func TestApproveApplication_CreateRace_ResolvedByReRead(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.identities.AddIdentity("owner@partnerco.test", "idp-raced-1")
	f.identities.MissFirstFind()

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Outcome != dto.OutcomeApproved {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomeApproved)
	}
	if f.identities.CreateCalls != 1 {
		t.Errorf("identity Create called %d times, want 1", f.identities.CreateCalls)
	}
}

// TestApproveApplication_AccessLinkFails_FallbackLogin keeps the success
// response, defaulting the access link.
func TestApproveApplication_AccessLinkFails_FallbackLogin(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.identities.SetAccessLinkError(errors.New("rate limited"))

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Outcome != dto.OutcomeApproved {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomeApproved)
	}
	if result.AccessLink != testLoginURL {
		t.Errorf("result.AccessLink = %v, want fallback %v", result.AccessLink, testLoginURL)
	}
}

// TestApproveApplication_OutboxFails_StillApproved keeps the success
// response when the notification insert fails.
func TestApproveApplication_OutboxFails_StillApproved(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.outbox.SetEnqueueError(errors.New("table locked"))

	result, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Outcome != dto.OutcomeApproved {
		t.Errorf("result.Outcome = %v, want %v", result.Outcome, dto.OutcomeApproved)
	}
}

// TestApproveApplication_Phase1Failure_NoPartner ensures a hard phase 1
// failure aborts with nothing created.
func TestApproveApplication_Phase1Failure_NoPartner(t *testing.T) {
	f := newApprovalFixture(t)
	app := f.addSubmittedApplication(t, "owner@partnerco.test")
	f.partners.SetApproveError(errors.New("connection refused"))

	_, err := f.uc.Execute(context.Background(), ApproveApplicationCommand{
		ApplicationSID: app.SID(),
		Actor:          adminActor(),
	})
	if err == nil {
		t.Fatal("Execute() expected error")
	}
	if apperrors.IsAppError(err) {
		t.Errorf("infrastructure failure must not surface as AppError, got %v", err)
	}
	if got := f.partners.PartnerCount(); got != 0 {
		t.Errorf("partner count = %d, want 0", got)
	}
	if app.Status() != partner.ApplicationStatusSubmitted {
		t.Errorf("application status = %v, want submitted", app.Status())
	}
}
