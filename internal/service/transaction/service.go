package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
	"github.com/josh-kwaku/account-ledger/internal/repository"
)

type accountRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Save(ctx context.Context, q repository.Querier, a *domain.Account) error
}

type transactionRepo interface {
	Create(ctx context.Context, q repository.Querier, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByAccountNumber(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error)
}

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// Service mutates balances and appends ledger entries. Use and Cancel assume
// the caller holds the lock on the request's account number; see Gateway.
type Service struct {
	accounts     accountRepo
	transactions transactionRepo
	users        userRepo
	db           *sql.DB
	now          func() time.Time
}

func NewService(accounts accountRepo, transactions transactionRepo, users userRepo, db *sql.DB) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		users:        users,
		db:           db,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Select(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Select: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("Select: %w", err)
	}
	return t, nil
}

// History pages through the entries recorded under an account number, newest
// first.
func (s *Service) History(ctx context.Context, number string, limit, offset int) ([]domain.Transaction, int, error) {
	if _, err := s.accountByNumber(ctx, number); err != nil {
		return nil, 0, fmt.Errorf("History: %w", err)
	}

	entries, total, err := s.transactions.ListByAccountNumber(ctx, number, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("History: %w", err)
	}
	return entries, total, nil
}

// RecordFailure appends a FAILED entry for an attempt that was rejected with a
// business error. The account is re-resolved from the requested number and
// nothing is validated again; the requested amount is recorded as is.
func (s *Service) RecordFailure(ctx context.Context, kind domain.TransactionKind, number string, amount int64) (*domain.Transaction, error) {
	acct, err := s.accountByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("RecordFailure: %w", err)
	}

	entry := domain.NewTransaction(acct, kind, domain.TransactionOutcomeFailed, number, amount, s.now())
	if err := s.transactions.Create(ctx, s.db, entry); err != nil {
		return nil, fmt.Errorf("RecordFailure: %w", err)
	}

	logging.FromContext(ctx).Warn("failed transaction recorded",
		"transaction_id", entry.ID,
		"kind", kind,
		"account_number", number,
		"amount", amount,
	)
	return entry, nil
}

func (s *Service) accountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	acct, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

// commit persists the mutated account and its SUCCEEDED entry atomically.
func (s *Service) commit(ctx context.Context, acct *domain.Account, entry *domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("commit: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.Save(ctx, tx, acct); err != nil {
		return fmt.Errorf("commit: save account: %w", err)
	}
	if err := s.transactions.Create(ctx, tx, entry); err != nil {
		return fmt.Errorf("commit: append entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
