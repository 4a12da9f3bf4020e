// Package notification defines the fire-and-forget outbox used for
// asynchronous delivery. Enqueue is an insert, nothing more; the worker
// binary drains the table.
package notification

import "time"

// Template keys known to the dispatcher.
const (
	TemplatePartnerWelcome      = "partner_welcome"
	TemplateApplicationRejected = "application_rejected"
)

// Status of an outbox record.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Record is one queued notification.
type Record struct {
	ID           uint
	SID          string
	ToEmail      string
	TemplateKey  string
	TemplateData map[string]any
	ScheduledFor time.Time
	Status       string
	Attempts     int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EnqueueParams is the typed insert request.
type EnqueueParams struct {
	ToEmail      string
	TemplateKey  string
	TemplateData map[string]any
	ScheduledFor time.Time
}
