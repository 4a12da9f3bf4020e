package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"skillforge/internal/domain/notification"
	"skillforge/internal/infrastructure/persistence/models"
	"skillforge/internal/shared/id"
	"skillforge/internal/shared/logger"
)

// NotificationRepositoryImpl implements the notification.Repository interface
type NotificationRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(gdb *gorm.DB, logger logger.Interface) notification.Repository {
	return &NotificationRepositoryImpl{
		db:     gdb,
		logger: logger,
	}
}

// Enqueue inserts one pending outbox record
func (r *NotificationRepositoryImpl) Enqueue(ctx context.Context, params notification.EnqueueParams) error {
	data, err := json.Marshal(params.TemplateData)
	if err != nil {
		return fmt.Errorf("failed to marshal template data: %w", err)
	}

	scheduledFor := params.ScheduledFor
	if scheduledFor.IsZero() {
		scheduledFor = time.Now()
	}

	model := &models.NotificationModel{
		SID:          id.MustGenerateWithPrefix(id.PrefixNotification, 12),
		ToEmail:      params.ToEmail,
		TemplateKey:  params.TemplateKey,
		TemplateData: datatypes.JSON(data),
		ScheduledFor: scheduledFor,
		Status:       notification.StatusPending,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}

	r.logger.Debugw("notification enqueued",
		"sid", model.SID,
		"template", model.TemplateKey,
		"to", model.ToEmail)
	return nil
}

// DuePending returns pending records whose scheduled time has passed
func (r *NotificationRepositoryImpl) DuePending(ctx context.Context, limit int) ([]*notification.Record, error) {
	var rows []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", notification.StatusPending, time.Now()).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load due notifications: %w", err)
	}

	records := make([]*notification.Record, 0, len(rows))
	for i := range rows {
		rec, err := notificationToDomain(&rows[i])
		if err != nil {
			r.logger.Warnw("skipping unreadable notification row", "id", rows[i].ID, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// MarkSent records successful delivery
func (r *NotificationRepositoryImpl) MarkSent(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     notification.StatusSent,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed increments the attempt counter, failing the record once the
// attempt budget is exhausted
func (r *NotificationRepositoryImpl) MarkFailed(ctx context.Context, id uint, deliveryErr string, maxAttempts int) error {
	if len(deliveryErr) > 500 {
		deliveryErr = deliveryErr[:500]
	}

	err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": deliveryErr,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to record delivery failure: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND attempts >= ?", id, maxAttempts).
		Update("status", notification.StatusFailed).Error
	if err != nil {
		return fmt.Errorf("failed to finalize notification failure: %w", err)
	}
	return nil
}

func notificationToDomain(m *models.NotificationModel) (*notification.Record, error) {
	var data map[string]any
	if len(m.TemplateData) > 0 {
		if err := json.Unmarshal(m.TemplateData, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template data: %w", err)
		}
	}
	return &notification.Record{
		ID:           m.ID,
		SID:          m.SID,
		ToEmail:      m.ToEmail,
		TemplateKey:  m.TemplateKey,
		TemplateData: data,
		ScheduledFor: m.ScheduledFor,
		Status:       m.Status,
		Attempts:     m.Attempts,
		LastError:    m.LastError,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
