package notify

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/outbox"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/sethvargo/go-retry"
)

const claimBatchSize = 10

// retriesPerClaim is the number of immediate backoff retries inside one
// claim; further attempts happen on later polls until the attempt budget
// runs out.
const retriesPerClaim = 2

// Dispatcher drains the notification outbox: it claims pending entries,
// pushes them through the Notifier with a bounded timeout, and records the
// outcome. Delivery failures are logged and retried; they never touch the
// message rows themselves.
type Dispatcher struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	notifier     Notifier
	logger       logging.Logger
	pollInterval time.Duration
	sendTimeout  time.Duration
	maxAttempts  int
}

func NewDispatcher(db *sql.DB, m repomanager.RepositoryManager, n Notifier, l logging.Logger,
	pollInterval, sendTimeout time.Duration, maxAttempts int) *Dispatcher {
	return &Dispatcher{
		db:           db,
		repomanager:  m,
		notifier:     n,
		logger:       l.With("module", "notify_dispatcher"),
		pollInterval: pollInterval,
		sendTimeout:  sendTimeout,
		maxAttempts:  maxAttempts,
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info(ctx, "Starting notification dispatcher", "poll_interval", d.pollInterval.String())

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "Stopping notification dispatcher...")
			return
		case <-ticker.C:
			d.processBatch(ctx)
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) {
	repo := d.repomanager.Outbox(d.db)

	entries, err := repo.ClaimPending(ctx, claimBatchSize)
	if err != nil {
		d.logger.Error(ctx, "error claiming outbox entries", "error", err.Error())
		return
	}

	for _, entry := range entries {
		d.deliver(ctx, repo, entry)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, repo outbox.Repository, entry models.OutboxEntry) {

	var deliveryID string

	backoff := retry.WithMaxRetries(retriesPerClaim, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()

		id, err := d.notifier.Send(sendCtx, entry.ToPhone, entry.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		deliveryID = id
		return nil
	})

	if err != nil {
		final := entry.Attempts >= d.maxAttempts
		d.logger.Error(ctx, "sms delivery failed",
			"outbox_id", entry.ID,
			"message_id", entry.MessageID,
			"attempt", entry.Attempts,
			"final", final,
			"error", err.Error())
		if mErr := repo.MarkFailed(ctx, entry.ID, err.Error(), final); mErr != nil {
			d.logger.Error(ctx, "error recording delivery failure", "outbox_id", entry.ID, "error", mErr.Error())
		}
		return
	}

	d.logger.Info(ctx, "sms delivered",
		"outbox_id", entry.ID,
		"message_id", entry.MessageID,
		"delivery_id", deliveryID)
	if mErr := repo.MarkSent(ctx, entry.ID, deliveryID); mErr != nil {
		d.logger.Error(ctx, "error recording delivery", "outbox_id", entry.ID, "error", mErr.Error())
	}
}
