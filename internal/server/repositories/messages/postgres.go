package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (id, from_username, to_username, body, sent_at)
		 VALUES ($1, $2, $3, $4, now())
		 RETURNING sent_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.FromUsername, msg.ToUsername, msg.Body).Scan(&msg.SentAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.MessageDetail, error) {
	query :=
		`SELECT m.id,
		        m.from_username, f.first_name, f.last_name, f.phone,
		        m.to_username, t.first_name, t.last_name, t.phone,
		        m.body, m.sent_at, m.read_at
		 FROM messages AS m
		 JOIN users AS f ON m.from_username = f.username
		 JOIN users AS t ON m.to_username = t.username
		 WHERE m.id = $1
		 `

	d := &models.MessageDetail{}
	var readAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.From.Username, &d.From.FirstName, &d.From.LastName, &d.From.Phone,
		&d.To.Username, &d.To.FirstName, &d.To.LastName, &d.To.Phone,
		&d.Body, &d.SentAt, &readAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if readAt.Valid {
		d.ReadAt = &readAt.Time
	}

	return d, nil
}

// MarkRead stamps read_at once; a second call leaves the original stamp in
// place and returns it.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) (*models.ReadReceipt, error) {
	query :=
		`UPDATE messages SET read_at = COALESCE(read_at, now())
		 WHERE id = $1
		 RETURNING id, read_at
		 `

	receipt := &models.ReadReceipt{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&receipt.ID, &receipt.ReadAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return receipt, nil
}

func (r *PostgresRepository) ListFrom(ctx context.Context, username string) ([]models.ConversationMessage, error) {
	query :=
		`SELECT m.id, m.to_username, u.first_name, u.last_name, u.phone,
		        m.body, m.sent_at, m.read_at
		 FROM messages AS m
		 JOIN users AS u ON m.to_username = u.username
		 WHERE m.from_username = $1
		 ORDER BY m.sent_at, m.id
		 `

	return r.list(ctx, query, username)
}

func (r *PostgresRepository) ListTo(ctx context.Context, username string) ([]models.ConversationMessage, error) {
	query :=
		`SELECT m.id, m.from_username, u.first_name, u.last_name, u.phone,
		        m.body, m.sent_at, m.read_at
		 FROM messages AS m
		 JOIN users AS u ON m.from_username = u.username
		 WHERE m.to_username = $1
		 ORDER BY m.sent_at, m.id
		 `

	return r.list(ctx, query, username)
}

func (r *PostgresRepository) list(ctx context.Context, query string, username string) ([]models.ConversationMessage, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ConversationMessage{}
	for rows.Next() {
		var m models.ConversationMessage
		var readAt sql.NullTime
		err := rows.Scan(&m.ID,
			&m.Counterpart.Username, &m.Counterpart.FirstName, &m.Counterpart.LastName, &m.Counterpart.Phone,
			&m.Body, &m.SentAt, &readAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if readAt.Valid {
			m.ReadAt = &readAt.Time
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
