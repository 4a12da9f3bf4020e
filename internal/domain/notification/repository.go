package notification

import "context"

// Outbox is the enqueue-only surface business code sees. Implementations
// must be safe to call best-effort: a failed insert is the caller's to
// swallow, never to propagate.
type Outbox interface {
	Enqueue(ctx context.Context, params EnqueueParams) error
}

// Repository is the full persistence surface used by the dispatcher worker.
type Repository interface {
	Outbox

	// DuePending returns pending records whose scheduled time has passed.
	DuePending(ctx context.Context, limit int) ([]*Record, error)

	// MarkSent records successful delivery.
	MarkSent(ctx context.Context, id uint) error

	// MarkFailed increments the attempt counter; once attempts reach
	// maxAttempts the record moves to the failed status.
	MarkFailed(ctx context.Context, id uint, deliveryErr string, maxAttempts int) error
}
