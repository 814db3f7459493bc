package messages

import (
	"context"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository persists message records and the read-receipt transition.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	Get(ctx context.Context, id string) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id string) (*models.ReadReceipt, error)
	ListFrom(ctx context.Context, username string) ([]models.ConversationMessage, error)
	ListTo(ctx context.Context, username string) ([]models.ConversationMessage, error)
}
