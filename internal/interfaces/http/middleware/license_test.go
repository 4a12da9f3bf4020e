package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licenseapp "skillforge/internal/application/license"
	"skillforge/internal/application/license/testutil"
	"skillforge/internal/domain/license"
	"skillforge/internal/domain/tenant"
	"skillforge/internal/shared/constants"
)

const gateTenantID = "tnt-gate"

type licenseFixture struct {
	licenses   *testutil.MockLicenseReader
	violations *testutil.MockViolationRepository
	middleware *LicenseMiddleware
}

func newLicenseFixture() *licenseFixture {
	licenses := testutil.NewMockLicenseReader()
	profiles := testutil.NewMockProfileRepository()
	violations := testutil.NewMockViolationRepository()
	gate := licenseapp.NewService(licenses, profiles, violations, testutil.NewMockLogger())
	return &licenseFixture{
		licenses:   licenses,
		violations: violations,
		middleware: NewLicenseMiddleware(gate, noopLogger{}),
	}
}

func (f *licenseFixture) addActiveLicense(t *testing.T, features []string) {
	t.Helper()
	future := time.Now().Add(30 * 24 * time.Hour)
	l, err := license.ReconstructLicense(
		1, "lic_test0001", gateTenantID, license.TierLifetime, license.StatusActive,
		&future, nil, nil, features, 10, 5, 1,
		time.Now(), time.Now(),
	)
	require.NoError(t, err)
	f.licenses.AddLicense(l)
}

// newGatedEngine installs the gate behind a stub that injects the tenant
// context, standing in for RequireAuth and RequireTenant.
func newGatedEngine(f *licenseFixture, withTenant bool, feature ...string) *gin.Engine {
	engine := gin.New()
	engine.GET("/gated",
		func(c *gin.Context) {
			if withTenant {
				c.Set(constants.ContextKeyTenant, tenant.Context{
					TenantID: gateTenantID,
					UserID:   "usr-1",
					Role:     tenant.RoleMember,
				})
			}
			c.Next()
		},
		f.middleware.RequireLicense(feature...),
		func(c *gin.Context) {
			result, ok := GetLicenseResult(c)
			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "no gate result"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"tier": result.Tier})
		},
	)
	return engine
}

func serveGated(engine *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	engine.ServeHTTP(w, req)
	return w
}

func TestRequireLicense_ValidLicense(t *testing.T) {
	f := newLicenseFixture()
	f.addActiveLicense(t, []string{license.FeaturePartnerApproval})

	w := serveGated(newGatedEngine(f, true))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), license.TierLifetime.String())
}

func TestRequireLicense_FeatureGranted(t *testing.T) {
	f := newLicenseFixture()
	f.addActiveLicense(t, []string{license.FeaturePartnerApproval})

	w := serveGated(newGatedEngine(f, true, license.FeaturePartnerApproval))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireLicense_FeatureMissing(t *testing.T) {
	f := newLicenseFixture()
	f.addActiveLicense(t, []string{license.FeatureAdvancedReporting})

	w := serveGated(newGatedEngine(f, true, license.FeaturePartnerApproval))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), license.ReasonFeatureNotGranted)

	rows := f.violations.WaitForRecords(1, time.Second)
	require.Len(t, rows, 1)
	assert.Equal(t, license.FeaturePartnerApproval, rows[0].Feature)
}

func TestRequireLicense_NoLicense(t *testing.T) {
	f := newLicenseFixture()

	w := serveGated(newGatedEngine(f, true))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), license.ReasonNoLicense)
}

func TestRequireLicense_GateFailure(t *testing.T) {
	f := newLicenseFixture()
	f.licenses.SetGetError(assert.AnError)

	w := serveGated(newGatedEngine(f, true))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to verify license")
}

func TestRequireLicense_MissingTenantContext(t *testing.T) {
	f := newLicenseFixture()
	f.addActiveLicense(t, nil)

	w := serveGated(newGatedEngine(f, false))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "tenant context unavailable")
}
