package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/josh-kwaku/account-ledger/internal/domain"
)

const transactionColumns = `id, account_id, kind, outcome, amount, account_number, created_at`

// TransactionRepository is append-only: entries are inserted once and never
// updated, so concurrent appends need no locking.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, q Querier, t *domain.Transaction) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.AccountID, t.Kind, t.Outcome, t.Amount, t.AccountNumber, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// ListByAccountNumber returns one page of entries newest first together with
// the total number of entries for the account number.
func (r *TransactionRepository) ListByAccountNumber(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1`, number,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByAccountNumber: count: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		WHERE account_number = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
		number, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListByAccountNumber: %w", err)
	}
	defer rows.Close()

	var entries []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("ListByAccountNumber: scan: %w", err)
		}
		entries = append(entries, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListByAccountNumber: rows: %w", err)
	}
	return entries, total, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Outcome, &t.Amount, &t.AccountNumber, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
