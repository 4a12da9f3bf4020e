// Package notification drains the outbox: due pending records are rendered
// and delivered, with per-record attempt accounting.
package notification

import (
	"context"
	"time"

	"skillforge/internal/domain/notification"
	"skillforge/internal/shared/logger"
)

// Sender delivers one rendered notification. The SMTP service implements
// this in production.
type Sender interface {
	Send(rec *notification.Record) error
}

// Dispatcher polls the outbox and delivers due records. Delivery failures
// are per-record: one bad address never blocks the rest of the batch.
type Dispatcher struct {
	repo        notification.Repository
	sender      Sender
	batchSize   int
	maxAttempts int
	logger      logger.Interface
}

func NewDispatcher(repo notification.Repository, sender Sender, batchSize, maxAttempts int, log logger.Interface) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 20
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Dispatcher{
		repo:        repo,
		sender:      sender,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// DispatchDue processes one batch of due pending records. It returns how
// many records were delivered and how many failed this pass.
func (d *Dispatcher) DispatchDue(ctx context.Context) (sent, failed int, err error) {
	records, err := d.repo.DuePending(ctx, d.batchSize)
	if err != nil {
		return 0, 0, err
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return sent, failed, ctx.Err()
		}

		if sendErr := d.sender.Send(rec); sendErr != nil {
			failed++
			d.logger.Warnw("notification delivery failed",
				"notification_id", rec.SID,
				"template", rec.TemplateKey,
				"attempt", rec.Attempts+1,
				"error", sendErr)
			if markErr := d.repo.MarkFailed(ctx, rec.ID, sendErr.Error(), d.maxAttempts); markErr != nil {
				d.logger.Errorw("failed to record delivery failure",
					"notification_id", rec.SID, "error", markErr)
			}
			continue
		}

		sent++
		if markErr := d.repo.MarkSent(ctx, rec.ID); markErr != nil {
			// Delivered but not marked: the next pass will redeliver.
			d.logger.Errorw("failed to mark notification sent",
				"notification_id", rec.SID, "error", markErr)
		}
	}
	return sent, failed, nil
}

// Run polls until the context is canceled. One immediate pass runs before
// the first tick.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.dispatchAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatchAndLog(ctx)
		}
	}
}

func (d *Dispatcher) dispatchAndLog(ctx context.Context) {
	sent, failed, err := d.DispatchDue(ctx)
	if err != nil {
		if ctx.Err() == nil {
			d.logger.Errorw("outbox dispatch pass failed", "error", err)
		}
		return
	}
	if sent > 0 || failed > 0 {
		d.logger.Infow("outbox dispatch pass completed", "sent", sent, "failed", failed)
	}
}
