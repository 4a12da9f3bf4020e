package dto

import "time"

// Approval outcomes. PendingUser is the stable, retryable intermediate
// state: phase 1 committed but the external identity is not linked yet.
const (
	OutcomeApproved    = "approved"
	OutcomePendingUser = "approved_pending_user"
)

// ApprovalResult is the orchestrator's report to the handler. When
// RetryableError is set the approval stopped after phase 1 and the caller
// may safely re-invoke the endpoint; the handler maps that to 207.
type ApprovalResult struct {
	Outcome        string `json:"status"`
	PartnerSID     string `json:"partner_id"`
	Message        string `json:"message"`
	AccessLink     string `json:"access_link,omitempty"`
	Idempotent     bool   `json:"-"`
	RetryableError string `json:"error,omitempty"`
}

// ApplicationResponse is the admin-facing view of an intake application.
type ApplicationResponse struct {
	ID                string    `json:"id"`
	ContactEmail      string    `json:"contact_email"`
	OwnerName         string    `json:"owner_name"`
	RequestedPrograms []string  `json:"requested_programs"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PartnerResponse is the admin-facing view of a provisioned partner.
type PartnerResponse struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	IdentityID    *string   `json:"identity_id,omitempty"`
	ProgramAccess []string  `json:"program_access"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
