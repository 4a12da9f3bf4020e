package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillforge/internal/domain/tenant"
	"skillforge/internal/infrastructure/auth"
	"skillforge/internal/shared/constants"
	"skillforge/internal/shared/logger"
	"skillforge/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireAuth verifies the bearer token and stores the session identity on
// the request. A missing or bad token is 401; tenant completeness is the
// tenant middleware's concern, not this one's.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		if claims.TokenType != auth.TokenTypeAccess {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid token type")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyTenantID, claims.TenantID)
		c.Set(constants.ContextKeyUserRole, string(claims.Role))

		c.Next()
	}
}

// RequireTenant builds the tenant context from the verified claims. It runs
// after RequireAuth: no session is 401, a session without a tenant claim is
// 403. Handlers downstream read one complete tenant.Context instead of
// three loose keys.
func (m *AuthMiddleware) RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := tenant.Context{
			UserID:   c.GetString(constants.ContextKeyUserID),
			TenantID: c.GetString(constants.ContextKeyTenantID),
			Role:     tenant.Role(c.GetString(constants.ContextKeyUserRole)),
		}

		if err := tc.Validate(); err != nil {
			switch err {
			case tenant.ErrNoSession:
				utils.ErrorResponse(c, http.StatusUnauthorized, "authentication required")
			case tenant.ErrNoTenantContext:
				utils.ErrorResponse(c, http.StatusForbidden, "no tenant associated with this session")
			default:
				utils.ErrorResponse(c, http.StatusForbidden, "invalid tenant context")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTenant, tc)
		c.Next()
	}
}

// GetTenantContext reads the tenant context stored by RequireTenant.
func GetTenantContext(c *gin.Context) (tenant.Context, bool) {
	v, ok := c.Get(constants.ContextKeyTenant)
	if !ok {
		return tenant.Context{}, false
	}
	tc, ok := v.(tenant.Context)
	return tc, ok
}
