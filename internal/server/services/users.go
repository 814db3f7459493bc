// Package services contains server-side business logic. This file implements
// UserService: registration and credential verification (the credential
// store), login-token minting, and the user directory lookups.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/server/config"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest carries the fields needed to create a user. The password is
// hashed immediately and never stored or returned in plaintext.
type RegisterRequest struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UserService provides registration, authentication, and directory lookups.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
	bcryptCost  int

	// timingPad is a throwaway hash compared against when the username does
	// not exist, so unknown users cost as much as wrong passwords.
	timingPad []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	pad, _ := bcrypt.GenerateFromPassword([]byte("messagely-timing-pad"), cfg.BcryptCost)
	return &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
		bcryptCost:  cfg.BcryptCost,
		timingPad:   pad,
	}
}

// Register hashes the password with the configured work factor and creates
// the user. Both join_at and last_login_at are stamped by the insert.
// A taken username yields common.ErrorDuplicateUser.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" || req.Phone == "" {
		return nil, common.ErrorBadRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	user := &models.User{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user, string(hash))
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Authenticate reports whether username/password is a valid pair. An unknown
// user and a wrong password are indistinguishable: both return false, nil.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	repo := s.repomanager.Users(s.db)

	hash, err := repo.PasswordHash(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.timingPad, []byte(password))
			return false, nil
		}
		return false, common.ErrorInternal
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// Login verifies the credentials, stamps last_login_at, and mints a session
// token. Bad credentials yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.ErrorUnauthorized
	}

	if _, err := s.UpdateLoginTimestamp(ctx, username); err != nil {
		return "", err
	}

	return s.TokenFor(username)
}

// TokenFor mints a session token for an already-authenticated username.
func (s *UserService) TokenFor(username string) (string, error) {
	token, err := auth.GenerateToken(username, s.jwtSecret)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// UpdateLoginTimestamp sets last_login_at to now.
func (s *UserService) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	repo := s.repomanager.Users(s.db)
	ts, err := repo.UpdateLoginTimestamp(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return time.Time{}, err
		}
		return time.Time{}, fmt.Errorf("error updating login timestamp: %v", err)
	}
	return ts, nil
}

// Get returns the full profile for username.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error loading user: %v", err)
	}
	return user, nil
}

// All returns the directory listing, ordered by username.
func (s *UserService) All(ctx context.Context) ([]models.UserSummary, error) {
	repo := s.repomanager.Users(s.db)
	list, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %v", err)
	}
	return list, nil
}

// MessagesFrom returns the messages sent by username, each enriched with the
// recipient's identity. An unknown username yields common.ErrorNotFound.
func (s *UserService) MessagesFrom(ctx context.Context, username string) ([]models.ConversationMessage, error) {
	if _, err := s.Get(ctx, username); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Messages(s.db).ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing sent messages: %v", err)
	}
	return list, nil
}

// MessagesTo returns the messages received by username, each enriched with
// the sender's identity. An unknown username yields common.ErrorNotFound.
func (s *UserService) MessagesTo(ctx context.Context, username string) ([]models.ConversationMessage, error) {
	if _, err := s.Get(ctx, username); err != nil {
		return nil, err
	}
	list, err := s.repomanager.Messages(s.db).ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error listing received messages: %v", err)
	}
	return list, nil
}
