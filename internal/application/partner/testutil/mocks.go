// Package testutil provides mock implementations for testing the partner
// application layer.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"skillforge/internal/domain/identity"
	"skillforge/internal/domain/notification"
	"skillforge/internal/domain/partner"
	"skillforge/internal/domain/profile"
	"skillforge/internal/shared/id"
	"skillforge/internal/shared/logger"
)

// MockApplicationRepository is an in-memory partner.ApplicationRepository.
type MockApplicationRepository struct {
	mu     sync.RWMutex
	apps   map[string]*partner.Application
	nextID uint

	getError    error
	updateError error
}

// NewMockApplicationRepository creates a new mock application repository.
func NewMockApplicationRepository() *MockApplicationRepository {
	return &MockApplicationRepository{apps: make(map[string]*partner.Application)}
}

// AddApplication registers an application, assigning an ID if unset.
func (m *MockApplicationRepository) AddApplication(app *partner.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app.ID() == 0 {
		m.nextID++
		_ = app.SetID(m.nextID)
	}
	m.apps[app.SID()] = app
}

// SetGetError injects an error for GetBySID.
func (m *MockApplicationRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

func (m *MockApplicationRepository) Create(ctx context.Context, a *partner.Application) error {
	m.AddApplication(a)
	return nil
}

func (m *MockApplicationRepository) GetBySID(ctx context.Context, sid string) (*partner.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}
	app, ok := m.apps[sid]
	if !ok {
		return nil, partner.ErrApplicationNotFound
	}
	return app, nil
}

func (m *MockApplicationRepository) ListByTenant(ctx context.Context, tenantID string, page, pageSize int) ([]*partner.Application, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*partner.Application
	for _, app := range m.apps {
		if app.TenantID() == tenantID {
			out = append(out, app)
		}
	}
	return out, int64(len(out)), nil
}

// markApproved mirrors the link procedure's terminal status write.
func (m *MockApplicationRepository) markApproved(applicationID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.ID() == applicationID {
			_ = app.MarkApproved()
		}
	}
}

func (m *MockApplicationRepository) UpdateStatus(ctx context.Context, a *partner.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateError != nil {
		return m.updateError
	}
	m.apps[a.SID()] = a
	return nil
}

// MockPartnerRepository is an in-memory partner.Repository implementing the
// same idempotency semantics as the SQL procedures: at most one partner per
// application, replays reported via Idempotent.
type MockPartnerRepository struct {
	mu            sync.Mutex
	apps          *MockApplicationRepository
	partners      map[string]*partner.Partner
	byApplication map[uint]*partner.Partner
	claimedKeys   map[string]string
	nextID        uint

	// SideEffectCount counts real phase 1 executions (not replays).
	SideEffectCount int

	approveError error
	linkError    error
}

// NewMockPartnerRepository creates a mock partner repository. The
// application repository is needed to mirror the procedure's status writes.
func NewMockPartnerRepository(apps *MockApplicationRepository) *MockPartnerRepository {
	return &MockPartnerRepository{
		apps:          apps,
		partners:      make(map[string]*partner.Partner),
		byApplication: make(map[uint]*partner.Partner),
		claimedKeys:   make(map[string]string),
	}
}

// SetApproveError injects a phase 1 failure.
func (m *MockPartnerRepository) SetApproveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approveError = err
}

// SetLinkError injects a phase 2 link failure.
func (m *MockPartnerRepository) SetLinkError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkError = err
}

// PartnerCount returns the number of partner rows ever created.
func (m *MockPartnerRepository) PartnerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.partners)
}

func (m *MockPartnerRepository) GetBySID(ctx context.Context, sid string) (*partner.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.partners[sid]
	if !ok {
		return nil, partner.ErrPartnerNotFound
	}
	return p, nil
}

func (m *MockPartnerRepository) GetByApplicationID(ctx context.Context, applicationID uint) (*partner.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byApplication[applicationID], nil
}

func (m *MockPartnerRepository) ApproveApplication(ctx context.Context, params partner.ApproveApplicationParams) (*partner.ApproveApplicationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.approveError != nil {
		return nil, m.approveError
	}

	if existing, ok := m.byApplication[params.ApplicationID]; ok {
		return &partner.ApproveApplicationResult{
			PartnerID:  existing.ID(),
			PartnerSID: existing.SID(),
			Idempotent: true,
		}, nil
	}
	if sid, ok := m.claimedKeys[params.IdempotencyKey]; ok {
		existing := m.partners[sid]
		return &partner.ApproveApplicationResult{
			PartnerID:  existing.ID(),
			PartnerSID: existing.SID(),
			Idempotent: true,
		}, nil
	}

	app, err := m.apps.GetBySID(ctx, params.ApplicationSID)
	if err != nil {
		return nil, err
	}

	p, err := partner.NewPartner(params.PartnerSID, app.TenantID(), params.ApplicationID, params.Programs)
	if err != nil {
		return nil, err
	}
	m.nextID++
	if err := p.SetID(m.nextID); err != nil {
		return nil, err
	}
	if err := app.Approve(); err != nil {
		return nil, err
	}

	m.partners[p.SID()] = p
	m.byApplication[params.ApplicationID] = p
	m.claimedKeys[params.IdempotencyKey] = p.SID()
	m.SideEffectCount++

	return &partner.ApproveApplicationResult{
		PartnerID:  p.ID(),
		PartnerSID: p.SID(),
		Idempotent: false,
	}, nil
}

func (m *MockPartnerRepository) LinkIdentity(ctx context.Context, partnerSID, identityID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.linkError != nil {
		return m.linkError
	}

	p, ok := m.partners[partnerSID]
	if !ok {
		return partner.ErrPartnerNotFound
	}
	if err := p.LinkIdentity(identityID); err != nil {
		return err
	}

	m.apps.markApproved(p.ApplicationID())
	return nil
}

// MockIdentityProvider is an in-memory identity.Provider.
type MockIdentityProvider struct {
	mu      sync.Mutex
	byEmail map[string]*identity.Identity

	// CreateCalls counts Create invocations, races included.
	CreateCalls int

	findError     error
	createError   error
	linkGenErr    error
	missFirstFind bool
}

// NewMockIdentityProvider creates a new mock identity provider.
func NewMockIdentityProvider() *MockIdentityProvider {
	return &MockIdentityProvider{byEmail: make(map[string]*identity.Identity)}
}

// AddIdentity seeds an existing identity.
func (m *MockIdentityProvider) AddIdentity(email, identityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[partner.NormalizeEmail(email)] = &identity.Identity{ID: identityID, Email: partner.NormalizeEmail(email)}
}

// SetFindError injects a lookup failure.
func (m *MockIdentityProvider) SetFindError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findError = err
}

// SetCreateError injects a creation failure.
func (m *MockIdentityProvider) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createError = err
}

// SetAccessLinkError injects an access link generation failure.
func (m *MockIdentityProvider) SetAccessLinkError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkGenErr = err
}

// MissFirstFind makes the next FindByEmail miss even when the identity
// exists, simulating the lookup/create race window.
func (m *MockIdentityProvider) MissFirstFind() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missFirstFind = true
}

func (m *MockIdentityProvider) FindByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findError != nil {
		return nil, m.findError
	}
	if m.missFirstFind {
		m.missFirstFind = false
		return nil, identity.ErrNotFound
	}
	ident, ok := m.byEmail[partner.NormalizeEmail(email)]
	if !ok {
		return nil, identity.ErrNotFound
	}
	return ident, nil
}

func (m *MockIdentityProvider) Create(ctx context.Context, params identity.CreateParams) (*identity.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.createError != nil {
		return nil, m.createError
	}
	email := partner.NormalizeEmail(params.Email)
	if _, ok := m.byEmail[email]; ok {
		return nil, fmt.Errorf("identity exists: duplicate key value")
	}
	ident := &identity.Identity{ID: id.MustGenerate(24), Email: email}
	m.byEmail[email] = ident
	return ident, nil
}

func (m *MockIdentityProvider) GenerateAccessLink(ctx context.Context, params identity.AccessLinkParams) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkGenErr != nil {
		return "", m.linkGenErr
	}
	return "https://identity.test/magiclink?email=" + partner.NormalizeEmail(params.Email), nil
}

// MockOutbox records enqueued notifications.
type MockOutbox struct {
	mu      sync.Mutex
	records []notification.EnqueueParams

	enqueueError error
}

// NewMockOutbox creates a new mock outbox.
func NewMockOutbox() *MockOutbox {
	return &MockOutbox{}
}

// SetEnqueueError injects an insert failure.
func (m *MockOutbox) SetEnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueueError = err
}

func (m *MockOutbox) Enqueue(ctx context.Context, params notification.EnqueueParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.enqueueError != nil {
		return m.enqueueError
	}
	m.records = append(m.records, params)
	return nil
}

// Records returns a copy of everything enqueued so far.
func (m *MockOutbox) Records() []notification.EnqueueParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notification.EnqueueParams, len(m.records))
	copy(out, m.records)
	return out
}

// MockProfileRepository is an in-memory profile.Repository.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*profile.Profile

	getError error
}

// NewMockProfileRepository creates a new mock profile repository.
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{profiles: make(map[string]*profile.Profile)}
}

// AddProfile registers a profile.
func (m *MockProfileRepository) AddProfile(p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.TenantID+"/"+p.ID] = p
}

// SetGetError injects a lookup failure.
func (m *MockProfileRepository) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

func (m *MockProfileRepository) GetByID(ctx context.Context, tenantID, userID string) (*profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}
	p, ok := m.profiles[tenantID+"/"+userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (m *MockProfileRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, p := range m.profiles {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

// NewMockLogger returns a logger that discards everything.
func NewMockLogger() logger.Interface {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any)              {}
func (noopLogger) Info(msg string, args ...any)               {}
func (noopLogger) Warn(msg string, args ...any)               {}
func (noopLogger) Error(msg string, args ...any)              {}
func (noopLogger) With(args ...any) logger.Interface          { return noopLogger{} }
func (noopLogger) Named(name string) logger.Interface         { return noopLogger{} }
func (noopLogger) Debugw(msg string, keysAndValues ...any)    {}
func (noopLogger) Infow(msg string, keysAndValues ...any)     {}
func (noopLogger) Warnw(msg string, keysAndValues ...any)     {}
func (noopLogger) Errorw(msg string, keysAndValues ...any)    {}
