package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService owns the message lifecycle: creation (with the SMS
// notification enqueued in the same transaction), detail retrieval, and the
// read-receipt transition.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

// NewMessageService constructs a MessageService using repositories.
func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, repomanager: m}
}

// Create validates that both parties exist, then persists the message and a
// queued SMS notification for the recipient in one transaction. The
// notification is delivered later by the dispatcher; its fate never affects
// the stored message. A missing party yields common.ErrorNotFound.
func (s *MessageService) Create(ctx context.Context, from, to, body string) (*models.Message, error) {
	if from == "" || to == "" || body == "" {
		return nil, common.ErrorBadRequest
	}

	usersRepo := s.repomanager.Users(s.db)
	if _, err := usersRepo.Get(ctx, from); err != nil {
		return nil, err
	}
	recipient, err := usersRepo.Get(ctx, to)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:           uuid.NewString(),
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Messages(tx).Create(ctx, msg); err != nil {
			return err
		}
		entry := &models.OutboxEntry{
			ID:        uuid.NewString(),
			MessageID: msg.ID,
			ToPhone:   recipient.Phone,
			Body:      notificationText(from, body),
		}
		return s.repomanager.Outbox(tx).Enqueue(ctx, entry)
	}); err != nil {
		return nil, fmt.Errorf("error creating message: %v", err)
	}

	return msg, nil
}

// Get returns the message joined with both parties' identities.
func (s *MessageService) Get(ctx context.Context, id string) (*models.MessageDetail, error) {
	repo := s.repomanager.Messages(s.db)
	detail, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading message: %v", err)
	}
	return detail, nil
}

// MarkRead stamps read_at on first call and returns the existing stamp on
// repeat calls.
func (s *MessageService) MarkRead(ctx context.Context, id string) (*models.ReadReceipt, error) {
	repo := s.repomanager.Messages(s.db)
	receipt, err := repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error marking message read: %v", err)
	}
	return receipt, nil
}

func notificationText(from, body string) string {
	return fmt.Sprintf("You received the following message from %s: \"%s\"", from, body)
}
