package repository

import (
	"context"
	"errors"
	"fmt"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/HarryOMalley/eagle-bank/internal/account/domain"
)

var ErrAccountNotFound = errors.New("account not found")

type Repository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Account, error)
	Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Account, error)
	Delete(ctx context.Context, id domain.ID) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const accountColumns = `id, user_id, name, type, balance::text, created_at, updated_at`

func (r *PgRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO accounts (id, user_id, name, type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+accountColumns,
		string(account.ID),
		account.UserID,
		account.Name,
		string(account.Type),
		account.CreatedAt,
		account.UpdatedAt,
	)
	return scanAccount(row)
}

// ListByOwner scopes the query by user_id in SQL; rows belonging to other
// owners are never fetched, let alone filtered out afterwards.
func (r *PgRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	rows, err := r.pool.Query(
		ctx,
		`SELECT `+accountColumns+`
		 FROM accounts
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration error: %w", rows.Err())
	}

	return accounts, nil
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	row := r.pool.QueryRow(
		ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		string(id),
	)
	return scanAccount(row)
}

func (r *PgRepository) Update(ctx context.Context, id domain.ID, patch domain.Patch) (domain.Account, error) {
	if patch.Name == nil {
		return r.FindByID(ctx, id)
	}

	row := r.pool.QueryRow(
		ctx,
		`UPDATE accounts SET name = $1, updated_at = now()
		 WHERE id = $2
		 RETURNING `+accountColumns,
		*patch.Name,
		string(id),
	)
	return scanAccount(row)
}

func (r *PgRepository) Delete(ctx context.Context, id domain.ID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (r *PgRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.pool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = $1`,
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("failed to scan account: %w", err)
	}
	return a, nil
}
