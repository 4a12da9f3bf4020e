package models

import (
	"time"

	"gorm.io/datatypes"

	"skillforge/internal/shared/constants"
)

// LicenseModel represents the database persistence model for per-tenant
// entitlement records. One row per tenant.
type LicenseModel struct {
	ID                   uint   `gorm:"primarykey"`
	SID                  string `gorm:"not null;size:32;uniqueIndex:idx_license_sid"`
	TenantID             string `gorm:"not null;size:64;uniqueIndex:idx_license_tenant"`
	Tier                 string `gorm:"not null;size:30"`
	Status               string `gorm:"not null;size:20;default:trial;index:idx_license_status"`
	ExpiresAt            *time.Time
	CurrentPeriodEnd     *time.Time
	StripeSubscriptionID *string `gorm:"size:64"`
	Features             datatypes.JSON
	MaxUsers             uint `gorm:"not null;default:0"`
	MaxDeployments       uint `gorm:"not null;default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (LicenseModel) TableName() string {
	return constants.TableLicenses
}

// LicenseViolationModel is the append-only audit trail of denied access
// checks. Never updated, never deleted by application code.
type LicenseViolationModel struct {
	ID         uint      `gorm:"primarykey"`
	TenantID   string    `gorm:"not null;size:64;index:idx_violation_tenant_time,priority:1"`
	UserID     string    `gorm:"size:64"`
	Reason     string    `gorm:"not null;size:50"`
	Feature    string    `gorm:"size:100"`
	RequestID  string    `gorm:"size:64"`
	OccurredAt time.Time `gorm:"not null;index:idx_violation_tenant_time,priority:2"`
}

// TableName specifies the table name for GORM
func (LicenseViolationModel) TableName() string {
	return constants.TableLicenseViolations
}
