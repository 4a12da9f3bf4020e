package models

import (
	"time"

	"skillforge/internal/shared/constants"
)

// ProfileModel mirrors the identity provider's user rows for the data this
// service needs locally: tenant membership and role. The identity provider
// owns authentication; this table is read-mostly.
type ProfileModel struct {
	ID        string `gorm:"primarykey;size:64"`
	TenantID  string `gorm:"not null;size:64;index:idx_profile_tenant"`
	Email     string `gorm:"not null;size:255;index:idx_profile_email"`
	FullName  string `gorm:"size:255"`
	Role      string `gorm:"not null;size:20;default:member"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (ProfileModel) TableName() string {
	return constants.TableProfiles
}
