package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {

	query :=
		`INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 RETURNING join_at, last_login_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Username, passwordHash, user.FirstName, user.LastName, user.Phone).
		Scan(&user.JoinAt, &user.LastLoginAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorDuplicateUser
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) Get(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT username, first_name, last_name, phone, join_at, last_login_at FROM users
		 WHERE username = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, username).
		Scan(&user.Username, &user.FirstName, &user.LastName, &user.Phone, &user.JoinAt, &user.LastLoginAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]models.UserSummary, error) {
	query :=
		`SELECT username, first_name, last_name FROM users
		 ORDER BY username
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) PasswordHash(ctx context.Context, username string) (string, error) {
	query :=
		`SELECT password_hash FROM users
		 WHERE username = $1
		 `

	var hash string
	err := r.db.QueryRowContext(ctx, query, username).Scan(&hash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return hash, nil
}

func (r *PostgresRepository) UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error) {
	query :=
		`UPDATE users SET last_login_at = now()
		 WHERE username = $1
		 RETURNING last_login_at
		 `

	var lastLogin time.Time
	err := r.db.QueryRowContext(ctx, query, username).Scan(&lastLogin)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}

	return lastLogin, nil
}
