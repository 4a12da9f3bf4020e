package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	HeaderXForwardedFor = "X-Forwarded-For"

	// Context keys
	ContextKeyUserID      = "user_id"
	ContextKeyTenantID    = "tenant_id"
	ContextKeyUserRole    = "user_role"
	ContextKeyRequestID   = "request_id"
	ContextKeyTenant      = "tenant_context"
	ContextKeyCorrelation = "correlation_context"
	ContextKeyLicense     = "license_context"

	// Database table names
	TableProfiles            = "profiles"
	TablePartnerApplications = "partner_applications"
	TablePartners            = "partners"
	TableApprovalKeys        = "partner_approval_keys"
	TableLicenses            = "licenses"
	TableLicenseViolations   = "license_violations"
	TableNotifications       = "notification_outbox"
)
