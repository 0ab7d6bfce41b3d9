package accounts_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
	"github.com/stretchr/testify/require"
)

func newPostgresRepo(t *testing.T) (*accounts.PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS accounts").WillReturnResult(sqlmock.NewResult(0, 0))

	repo, err := accounts.NewPostgresRepo(db)
	require.NoError(t, err)
	return repo, mock
}

func TestPostgresRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "accounts_email_key"})

	err := repo.Create(&accounts.Account{
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "hash",
	})
	require.ErrorIs(t, err, errors.ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoGetByEmailNotFound(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	mock.ExpectQuery("SELECT id, email, name, password_hash, role, reset_token_hash, reset_token_expires, created_at FROM accounts WHERE email = \\$1").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail("missing@example.com")
	require.ErrorIs(t, err, errors.ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoGetByEmail(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "reset_token_hash", "reset_token_expires", "created_at"}).
		AddRow("id-1", "alice@example.com", "Alice", "hash", "ADMIN", nil, nil, created)

	mock.ExpectQuery("SELECT id, email, name, password_hash, role, reset_token_hash, reset_token_expires, created_at FROM accounts WHERE email = \\$1").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	account, err := repo.GetByEmail("alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "id-1", account.ID)
	require.Equal(t, accounts.RoleAdmin, account.Role)
	require.Nil(t, account.ResetTokenHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoUpdatePasswordMissingAccount(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	mock.ExpectExec("UPDATE accounts SET password_hash = \\$2 WHERE id = \\$1").
		WithArgs("missing", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePassword("missing", "newhash")
	require.ErrorIs(t, err, errors.ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoConsumeResetTokenClearsFields(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	mock.ExpectExec("UPDATE accounts\\s+SET password_hash = \\$2, reset_token_hash = NULL, reset_token_expires = NULL\\s+WHERE id = \\$1").
		WithArgs("id-1", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ConsumeResetToken("id-1", "newhash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepoList(t *testing.T) {
	repo, mock := newPostgresRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM accounts WHERE \\(email ILIKE \\$1 OR name ILIKE \\$1\\)").
		WithArgs("%ali%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "role", "reset_token_hash", "reset_token_expires", "created_at"}).
		AddRow("id-1", "alice@example.com", "Alice", "hash", "USER", nil, nil, time.Now())
	mock.ExpectQuery("SELECT id, email, name, password_hash, role, reset_token_hash, reset_token_expires, created_at FROM accounts WHERE \\(email ILIKE \\$1 OR name ILIKE \\$1\\) ORDER BY id ASC LIMIT \\$2 OFFSET \\$3").
		WithArgs("%ali%", 10, 0).
		WillReturnRows(rows)

	list, total, err := repo.List(accounts.ListParams{Limit: 10, Search: "ali"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, list, 1)
	require.Equal(t, "alice@example.com", list[0].Email)
	require.NoError(t, mock.ExpectationsWereMet())
}
