package dto

import "time"

// CheckResult is the license gate's enriched verdict for one request.
type CheckResult struct {
	Valid          bool       `json:"valid"`
	Reason         string     `json:"reason,omitempty"`
	LicenseSID     string     `json:"license_id,omitempty"`
	Tier           string     `json:"tier,omitempty"`
	Status         string     `json:"status,omitempty"`
	Authority      string     `json:"authority,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	Features       []string   `json:"features,omitempty"`
	MaxUsers       uint       `json:"max_users,omitempty"`
	MaxDeployments uint       `json:"max_deployments,omitempty"`
}

// UserLimitResult reports seat availability against the license ceiling.
type UserLimitResult struct {
	Allowed bool  `json:"allowed"`
	Current int64 `json:"current"`
	Max     uint  `json:"max"`
}

// ViolationResponse is one audit row in admin listings.
type ViolationResponse struct {
	TenantID   string    `json:"tenant_id"`
	UserID     string    `json:"user_id,omitempty"`
	Reason     string    `json:"reason"`
	Feature    string    `json:"feature,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
