package outbox

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository persists queued SMS notifications. Enqueue is expected to run in
// the same transaction as the message insert; the remaining methods are used
// by the dispatcher.
type Repository interface {
	Enqueue(ctx context.Context, entry *models.OutboxEntry) error
	// ClaimPending marks up to limit pending entries as attempted and
	// returns them. Concurrent dispatchers never claim the same entry.
	ClaimPending(ctx context.Context, limit int) ([]models.OutboxEntry, error)
	MarkSent(ctx context.Context, id string, deliveryID string) error
	// MarkFailed records the delivery error; final moves the entry to the
	// failed state, otherwise it stays pending for another claim.
	MarkFailed(ctx context.Context, id string, lastError string, final bool) error
}
