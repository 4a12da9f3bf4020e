package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	licenseapp "skillforge/internal/application/license"
	"skillforge/internal/application/license/dto"
	"skillforge/internal/shared/constants"
	"skillforge/internal/shared/logger"
	"skillforge/internal/shared/utils"
)

type LicenseMiddleware struct {
	gate   *licenseapp.Service
	logger logger.Interface
}

func NewLicenseMiddleware(gate *licenseapp.Service, logger logger.Interface) *LicenseMiddleware {
	return &LicenseMiddleware{
		gate:   gate,
		logger: logger,
	}
}

// RequireLicense denies the request unless the tenant's license currently
// grants access, optionally narrowed to a named feature. Runs after
// RequireTenant. The gate result is stored for handlers that want to show
// entitlement details.
func (m *LicenseMiddleware) RequireLicense(requiredFeature ...string) gin.HandlerFunc {
	feature := ""
	if len(requiredFeature) > 0 {
		feature = requiredFeature[0]
	}

	return func(c *gin.Context) {
		tc, ok := GetTenantContext(c)
		if !ok {
			m.logger.Errorw("tenant context not found, is RequireTenant installed?")
			utils.ErrorResponse(c, http.StatusInternalServerError, "tenant context unavailable")
			c.Abort()
			return
		}

		result, err := m.gate.Check(c.Request.Context(), tc, feature)
		if err != nil {
			m.logger.Errorw("license check failed",
				"tenant_id", tc.TenantID,
				"error", err)
			utils.ErrorResponse(c, http.StatusInternalServerError, "failed to verify license")
			c.Abort()
			return
		}

		if !result.Valid {
			utils.ErrorResponse(c, http.StatusForbidden, "license does not permit this operation: "+result.Reason)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyLicense, result)
		c.Next()
	}
}

// GetLicenseResult reads the gate result stored by RequireLicense.
func GetLicenseResult(c *gin.Context) (*dto.CheckResult, bool) {
	v, ok := c.Get(constants.ContextKeyLicense)
	if !ok {
		return nil, false
	}
	result, ok := v.(*dto.CheckResult)
	return result, ok
}
