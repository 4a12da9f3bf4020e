// Package testutil provides mock implementations for testing the license
// gate.
package testutil

import (
	"context"
	"sync"
	"time"

	"skillforge/internal/domain/license"
	"skillforge/internal/domain/profile"
	"skillforge/internal/shared/logger"
)

// MockLicenseReader is an in-memory read path for license rows.
type MockLicenseReader struct {
	mu       sync.RWMutex
	licenses map[string]*license.License

	getError error
}

// NewMockLicenseReader creates a new mock license reader.
func NewMockLicenseReader() *MockLicenseReader {
	return &MockLicenseReader{licenses: make(map[string]*license.License)}
}

// AddLicense registers a license under its tenant.
func (m *MockLicenseReader) AddLicense(l *license.License) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.licenses[l.TenantID()] = l
}

// SetGetError injects a load failure.
func (m *MockLicenseReader) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

func (m *MockLicenseReader) GetByTenant(ctx context.Context, tenantID string) (*license.License, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}
	return m.licenses[tenantID], nil
}

// MockViolationRepository records audit rows in memory. Because production
// writes happen on a detached goroutine, tests synchronize through
// WaitForRecords instead of reading immediately.
type MockViolationRepository struct {
	mu      sync.Mutex
	records []license.Violation

	recordError error
	listError   error
}

// NewMockViolationRepository creates a new mock violation repository.
func NewMockViolationRepository() *MockViolationRepository {
	return &MockViolationRepository{}
}

// SetRecordError injects an audit write failure.
func (m *MockViolationRepository) SetRecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordError = err
}

// SetListError injects a listing failure.
func (m *MockViolationRepository) SetListError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listError = err
}

func (m *MockViolationRepository) Record(ctx context.Context, v license.Violation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordError != nil {
		return m.recordError
	}
	m.records = append(m.records, v)
	return nil
}

func (m *MockViolationRepository) ListByTenant(ctx context.Context, tenantID string, limit int) ([]license.Violation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	var out []license.Violation
	for _, v := range m.records {
		if v.TenantID == tenantID {
			out = append(out, v)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Records returns a copy of everything recorded so far.
func (m *MockViolationRepository) Records() []license.Violation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]license.Violation, len(m.records))
	copy(out, m.records)
	return out
}

// WaitForRecords blocks until at least n rows exist or the timeout elapses,
// returning the rows seen at that point.
func (m *MockViolationRepository) WaitForRecords(n int, timeout time.Duration) []license.Violation {
	deadline := time.Now().Add(timeout)
	for {
		rows := m.Records()
		if len(rows) >= n || time.Now().After(deadline) {
			return rows
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// MockProfileRepository is an in-memory profile.Repository keyed on seat
// counts per tenant.
type MockProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*profile.Profile
	counts   map[string]int64

	countError error
}

// NewMockProfileRepository creates a new mock profile repository.
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{
		profiles: make(map[string]*profile.Profile),
		counts:   make(map[string]int64),
	}
}

// SetCount fixes the seat count reported for a tenant.
func (m *MockProfileRepository) SetCount(tenantID string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[tenantID] = n
}

// SetCountError injects a counting failure.
func (m *MockProfileRepository) SetCountError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countError = err
}

// AddProfile registers a profile.
func (m *MockProfileRepository) AddProfile(p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.TenantID+"/"+p.ID] = p
}

func (m *MockProfileRepository) GetByID(ctx context.Context, tenantID, userID string) (*profile.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[tenantID+"/"+userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	return p, nil
}

func (m *MockProfileRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.countError != nil {
		return 0, m.countError
	}
	return m.counts[tenantID], nil
}

// NewMockLogger returns a logger that discards everything.
func NewMockLogger() logger.Interface {
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any)           {}
func (noopLogger) Info(msg string, args ...any)            {}
func (noopLogger) Warn(msg string, args ...any)            {}
func (noopLogger) Error(msg string, args ...any)           {}
func (noopLogger) With(args ...any) logger.Interface       { return noopLogger{} }
func (noopLogger) Named(name string) logger.Interface      { return noopLogger{} }
func (noopLogger) Debugw(msg string, keysAndValues ...any) {}
func (noopLogger) Infow(msg string, keysAndValues ...any)  {}
func (noopLogger) Warnw(msg string, keysAndValues ...any)  {}
func (noopLogger) Errorw(msg string, keysAndValues ...any) {}
