package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/josh-kwaku/account-ledger/internal/domain"
)

const accountColumns = `id, user_id, account_number, status, balance,
	registered_at, unregistered_at, created_at, updated_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNumber: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByNumber: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsByNumber: %w", err)
	}
	return exists, nil
}

// CountByUserID counts every account the user ever registered, closed ones
// included.
func (r *AccountRepository) CountByUserID(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountByUserID: %w", err)
	}
	return n, nil
}

func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = $1 ORDER BY registered_at, id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByUserID: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByUserID: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByUserID: rows: %w", err)
	}
	return accounts, nil
}

// Create inserts the account and fills in its generated ID.
func (r *AccountRepository) Create(ctx context.Context, q Querier, a *domain.Account) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO accounts (
			user_id, account_number, status, balance,
			registered_at, unregistered_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		a.UserID, a.Number, a.Status, a.Balance,
		a.RegisteredAt, a.UnregisteredAt, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// Save writes the mutable fields back unconditionally. Callers serialize
// writers per account with the distributed lock.
func (r *AccountRepository) Save(ctx context.Context, q Querier, a *domain.Account) error {
	res, err := q.ExecContext(ctx,
		`UPDATE accounts
		SET status = $1, balance = $2, unregistered_at = $3, updated_at = $4
		WHERE id = $5`,
		a.Status, a.Balance, a.UnregisteredAt, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Save: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Save: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	var unregistered sql.NullTime
	err := s.Scan(
		&a.ID, &a.UserID, &a.Number, &a.Status, &a.Balance,
		&a.RegisteredAt, &unregistered, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if unregistered.Valid {
		a.UnregisteredAt = &unregistered.Time
	}
	return &a, nil
}
