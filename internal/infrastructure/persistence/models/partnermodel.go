package models

import (
	"time"

	"gorm.io/datatypes"

	"skillforge/internal/shared/constants"
)

// PartnerModel represents the database persistence model for provisioned
// partner organizations. The unique index on ApplicationID enforces the
// at-most-one-partner-per-application invariant at the storage layer.
type PartnerModel struct {
	ID            uint    `gorm:"primarykey"`
	SID           string  `gorm:"not null;size:32;uniqueIndex:idx_partner_sid"`
	TenantID      string  `gorm:"not null;size:64;index:idx_partner_tenant"`
	ApplicationID uint    `gorm:"not null;uniqueIndex:idx_partner_application"`
	IdentityID    *string `gorm:"size:64;index:idx_partner_identity"`
	ProgramAccess datatypes.JSON
	Status        string `gorm:"not null;size:20;default:pending_user;index:idx_partner_status"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (PartnerModel) TableName() string {
	return constants.TablePartners
}

// ApprovalKeyModel claims the deterministic idempotency keys used by the
// approval saga. Each procedure inserts its key inside the transaction; a
// duplicate key means the procedure already ran.
type ApprovalKeyModel struct {
	ID          uint   `gorm:"primarykey"`
	Key         string `gorm:"not null;size:64;uniqueIndex:idx_approval_key"`
	Scope       string `gorm:"not null;size:20"`
	PartnerSID  string `gorm:"not null;size:32;index:idx_approval_key_partner"`
	AdminUserID string `gorm:"size:64"`
	RequestID   string `gorm:"size:64"`
	CreatedAt   time.Time
}

// TableName specifies the table name for GORM
func (ApprovalKeyModel) TableName() string {
	return constants.TableApprovalKeys
}
