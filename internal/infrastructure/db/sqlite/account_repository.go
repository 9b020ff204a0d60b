package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/portalbi/dashboard-portal/internal/core/domain"
)

type AccountRepository struct {
	db *sqlx.DB
}

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// accountRow maps 1:1 to the accounts table.
type accountRow struct {
	Seq          int64     `db:"seq"`
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Name         string    `db:"name"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func accountRowFromDomain(a *domain.Account) accountRow {
	return accountRow{
		ID:           a.ID,
		Username:     a.Username,
		Name:         a.Name,
		Role:         string(a.Role),
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:           r.ID,
		Username:     r.Username,
		Name:         r.Name,
		Role:         domain.Role(r.Role),
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM accounts ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]domain.Account, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "SELECT * FROM accounts WHERE id = ?", id)
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "SELECT * FROM accounts WHERE username = ?", username)
}

func (r *AccountRepository) findOne(ctx context.Context, q string, arg string) (*domain.Account, error) {
	var row accountRow
	if err := r.db.GetContext(ctx, &row, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	acc := row.toDomain()
	return &acc, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	const q = `INSERT INTO accounts
		(id, username, name, role, password_hash, created_at, updated_at)
		VALUES
		(:id, :username, :name, :role, :password_hash, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, q, accountRowFromDomain(account)); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	created := *account
	return &created, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	const q = `UPDATE accounts SET
		username = :username, name = :name, role = :role,
		password_hash = :password_hash, updated_at = :updated_at
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, q, accountRowFromDomain(account))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update account rows affected: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return r.FindByID(ctx, account.ID)
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) CountByRole(ctx context.Context, role domain.Role) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM accounts WHERE role = ?", string(role)); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
