package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillforge/internal/domain/license"
	"skillforge/internal/interfaces/http/middleware"
	"skillforge/internal/shared/errors"
	"skillforge/internal/shared/logger"
	"skillforge/internal/shared/utils"
)

const defaultViolationLimit = 50

// LicenseHandler exposes the tenant's own license state and its gate
// violation audit trail.
type LicenseHandler struct {
	gate   licenseGate
	logger logger.Interface
}

func NewLicenseHandler(gate licenseGate, log logger.Interface) *LicenseHandler {
	return &LicenseHandler{
		gate:   gate,
		logger: log,
	}
}

// GetLicense reports the gate verdict for the caller's tenant. An invalid
// license is still a 200: the body carries valid=false and the denial reason
// so dashboards can render the state without special-casing errors.
func (h *LicenseHandler) GetLicense(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.gate.Check(c.Request.Context(), tc, "")
	if err != nil {
		h.logger.Errorw("license check failed", "tenant_id", tc.TenantID, "error", err)
		utils.ErrorResponse(c, http.StatusInternalServerError, "failed to verify license")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetUserLimit reports seat availability against the license ceiling.
func (h *LicenseHandler) GetUserLimit(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.gate.CheckUserLimit(c.Request.Context(), tc.TenantID)
	if err != nil {
		if stderrors.Is(err, license.ErrLicenseNotFound) {
			utils.ErrorResponseWithError(c, errors.NewNotFoundError("No license for tenant"))
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// ListViolations returns recent gate denials for the caller's tenant.
func (h *LicenseHandler) ListViolations(c *gin.Context) {
	tc, ok := middleware.GetTenantContext(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
		return
	}

	limit := defaultViolationLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("Invalid limit parameter"))
			return
		}
		if l > 200 {
			l = 200
		}
		limit = l
	}

	rows, err := h.gate.ListViolations(c.Request.Context(), tc.TenantID, limit)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"violations": rows, "count": len(rows)})
}
