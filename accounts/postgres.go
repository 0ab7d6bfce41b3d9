package accounts

import (
	"database/sql"
	std "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/ovenworks/go-backoffice-auth/internal/errors"
)

var _ Repo = (*PostgresRepo)(nil)

// PostgresRepo stores accounts in PostgreSQL. Uniqueness violations on the
// email column are mapped to errors.ErrEmailTaken here so the race between an
// existence check and the insert still surfaces as a conflict.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) (*PostgresRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	r := &PostgresRepo{db: db}
	if err := r.ensureSchema(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresRepo) ensureSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'USER',
	reset_token_hash TEXT,
	reset_token_expires TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := r.db.Exec(q); err != nil {
		return fmt.Errorf("ensure accounts schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Create(account *Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.Role == "" {
		account.Role = RoleUser
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO accounts (id, email, name, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.Exec(q, account.ID, account.Email, account.Name, account.PasswordHash, string(account.Role), account.CreatedAt); err != nil {
		var pqErr *pq.Error
		if std.As(err, &pqErr) && pqErr.Code == "23505" {
			return errors.ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetByEmail(email string) (*Account, error) {
	const q = selectColumns + ` WHERE email = $1`
	return r.scanOne(r.db.QueryRow(q, email))
}

func (r *PostgresRepo) GetByID(id string) (*Account, error) {
	const q = selectColumns + ` WHERE id = $1`
	return r.scanOne(r.db.QueryRow(q, id))
}

func (r *PostgresRepo) UpdatePassword(id string, passwordHash string) error {
	const q = `UPDATE accounts SET password_hash = $2 WHERE id = $1`
	return r.mustAffect(q, id, passwordHash)
}

func (r *PostgresRepo) SetResetToken(email string, tokenHash *string, expires *time.Time) error {
	const q = `UPDATE accounts SET reset_token_hash = $2, reset_token_expires = $3 WHERE email = $1`
	res, err := r.db.Exec(q, email, tokenHash, expires)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	return noRowsToNotFound(res)
}

func (r *PostgresRepo) GetByResetTokenHash(tokenHash string, now time.Time) (*Account, error) {
	const q = selectColumns + ` WHERE reset_token_hash = $1 AND reset_token_expires > $2`
	return r.scanOne(r.db.QueryRow(q, tokenHash, now))
}

func (r *PostgresRepo) ConsumeResetToken(id string, passwordHash string) error {
	const q = `
UPDATE accounts
SET password_hash = $2, reset_token_hash = NULL, reset_token_expires = NULL
WHERE id = $1`
	return r.mustAffect(q, id, passwordHash)
}

func (r *PostgresRepo) List(params ListParams) ([]*Account, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 4)

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM accounts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, params.Offset)
	q := fmt.Sprintf("%s%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		selectColumns, clause, sortColumn(params.SortBy), sortOrder(params.Order), len(args)-1, len(args))

	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	list := make([]*Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	return list, total, nil
}

func (r *PostgresRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return noRowsToNotFound(res)
}

const selectColumns = `SELECT id, email, name, password_hash, role, reset_token_hash, reset_token_expires, created_at FROM accounts`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresRepo) scanOne(row rowScanner) (*Account, error) {
	account, err := scanAccount(row)
	if err != nil {
		if std.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func scanAccount(row rowScanner) (*Account, error) {
	var a Account
	var role string
	var resetHash sql.NullString
	var resetExpires sql.NullTime
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &resetHash, &resetExpires, &a.CreatedAt); err != nil {
		if std.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	a.Role = Role(role)
	if resetHash.Valid {
		a.ResetTokenHash = &resetHash.String
	}
	if resetExpires.Valid {
		a.ResetTokenExpires = &resetExpires.Time
	}
	return &a, nil
}

func (r *PostgresRepo) mustAffect(q string, args ...interface{}) error {
	res, err := r.db.Exec(q, args...)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return noRowsToNotFound(res)
}

func noRowsToNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return errors.ErrAccountNotFound
	}
	return nil
}

// sortColumn whitelists the sortable columns, matching the admin listing
// filters the frontend sends.
func sortColumn(sortBy string) string {
	switch sortBy {
	case "email", "name", "role", "created_at":
		return sortBy
	default:
		return "id"
	}
}

func sortOrder(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}
