package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*first_name,\s*last_name,\s*phone,\s*join_at,\s*last_login_at\)`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"join_at", "last_login_at"}).AddRow(now, now)
	mock.ExpectQuery(q).
		WithArgs("alice", "hash", "Alice", "Smith", "5551234567").
		WillReturnRows(rows)

	u := &models.User{Username: "alice", FirstName: "Alice", LastName: "Smith", Phone: "5551234567"}
	got, err := repo.Create(context.Background(), u, "hash")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.Username != "alice" || !got.JoinAt.Equal(now) || !got.LastLoginAt.Equal(now) {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "hash", "Alice", "Smith", "5551234567").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	u := &models.User{Username: "alice", FirstName: "Alice", LastName: "Smith", Phone: "5551234567"}
	_, err := repo.Create(context.Background(), u, "hash")
	if !errors.Is(err, common.ErrorDuplicateUser) {
		t.Fatalf("want common.ErrorDuplicateUser, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs("alice", "hash", "Alice", "Smith", "5551234567").
		WillReturnError(errors.New("db down"))

	u := &models.User{Username: "alice", FirstName: "Alice", LastName: "Smith", Phone: "5551234567"}
	_, err := repo.Create(context.Background(), u, "hash")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+username,\s*first_name,\s*last_name,\s*phone,\s*join_at,\s*last_login_at\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s*$`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name", "phone", "join_at", "last_login_at"}).
		AddRow("alice", "Alice", "Smith", "5551234567", now, now)
	mock.ExpectQuery(q).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Username != "alice" || got.Phone != "5551234567" {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+username`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestAll_OrderedListing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+username,\s*first_name,\s*last_name\s+FROM\s+users\s+ORDER\s+BY\s+username\s*$`

	rows := sqlmock.NewRows([]string{"username", "first_name", "last_name"}).
		AddRow("alice", "Alice", "Smith").
		AddRow("bob", "Bob", "Jones")
	mock.ExpectQuery(q).WillReturnRows(rows)

	got, err := repo.All(context.Background())
	if err != nil {
		t.Fatalf("All error: %v", err)
	}
	if len(got) != 2 || got[0].Username != "alice" || got[1].Username != "bob" {
		t.Fatalf("unexpected listing: %+v", got)
	}
}

func TestPasswordHash_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+password_hash`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.PasswordHash(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestUpdateLoginTimestamp_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+last_login_at\s*=\s*now\(\)\s+WHERE\s+username\s*=\s*\$1\s+RETURNING\s+last_login_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"last_login_at"}).AddRow(now))

	got, err := repo.UpdateLoginTimestamp(context.Background(), "alice")
	if err != nil {
		t.Fatalf("UpdateLoginTimestamp error: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("unexpected timestamp: %v", got)
	}
}

func TestUpdateLoginTimestamp_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE\s+users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateLoginTimestamp(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}
