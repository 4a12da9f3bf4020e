package models

import (
	"time"

	"gorm.io/datatypes"

	"skillforge/internal/shared/constants"
)

// NotificationModel represents one queued outbox notification.
type NotificationModel struct {
	ID           uint   `gorm:"primarykey"`
	SID          string `gorm:"not null;size:32;uniqueIndex:idx_notification_sid"`
	ToEmail      string `gorm:"not null;size:255"`
	TemplateKey  string `gorm:"not null;size:50"`
	TemplateData datatypes.JSON
	ScheduledFor time.Time `gorm:"not null;index:idx_notification_due,priority:2"`
	Status       string    `gorm:"not null;size:20;default:pending;index:idx_notification_due,priority:1"`
	Attempts     int       `gorm:"not null;default:0"`
	LastError    string    `gorm:"size:500"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName specifies the table name for GORM
func (NotificationModel) TableName() string {
	return constants.TableNotifications
}
