package outbox

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, entry *models.OutboxEntry) error {

	query :=
		`INSERT INTO notification_outbox (id, message_id, to_phone, body)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.MessageID, entry.ToPhone, entry.Body)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// ClaimPending bumps the attempt counter while claiming, so a crash between
// claim and delivery still counts against the attempt budget.
func (r *PostgresRepository) ClaimPending(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	query :=
		`UPDATE notification_outbox SET attempts = attempts + 1
		 WHERE id IN (
		     SELECT id FROM notification_outbox
		     WHERE status = 'pending'
		     ORDER BY created_at
		     LIMIT $1
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, message_id, to_phone, body, attempts
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.OutboxEntry{}
	for rows.Next() {
		e := models.OutboxEntry{Status: models.OutboxPending}
		if err := rows.Scan(&e.ID, &e.MessageID, &e.ToPhone, &e.Body, &e.Attempts); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) MarkSent(ctx context.Context, id string, deliveryID string) error {
	query :=
		`UPDATE notification_outbox
		 SET status = 'sent', sent_at = now(), delivery_id = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, deliveryID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id string, lastError string, final bool) error {
	query :=
		`UPDATE notification_outbox
		 SET last_error = $2,
		     status = CASE WHEN $3 THEN 'failed' ELSE 'pending' END
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, lastError, final); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
