package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/messagely/internal/server/models"
)

// Repository persists user records. The stored password hash is only
// reachable through PasswordHash; no other method returns it.
type Repository interface {
	Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error)
	Get(ctx context.Context, username string) (*models.User, error)
	All(ctx context.Context) ([]models.UserSummary, error)
	PasswordHash(ctx context.Context, username string) (string, error)
	UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error)
}
