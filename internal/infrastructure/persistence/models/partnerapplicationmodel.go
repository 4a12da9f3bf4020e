package models

import (
	"time"

	"gorm.io/datatypes"

	"skillforge/internal/shared/constants"
)

// PartnerApplicationModel represents the database persistence model for
// partner intake applications
// This is the anti-corruption layer between domain and database
type PartnerApplicationModel struct {
	ID                uint   `gorm:"primarykey"`
	SID               string `gorm:"not null;size:32;uniqueIndex:idx_application_sid"`
	TenantID          string `gorm:"not null;size:64;index:idx_application_tenant"`
	ContactEmail      string `gorm:"not null;size:255;index:idx_application_email"`
	OwnerName         string `gorm:"not null;size:255"`
	RequestedPrograms datatypes.JSON
	Status            string `gorm:"not null;size:30;default:submitted;index:idx_application_status"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int `gorm:"not null;default:1"`
}

// TableName specifies the table name for GORM
func (PartnerApplicationModel) TableName() string {
	return constants.TablePartnerApplications
}
