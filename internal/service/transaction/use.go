package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type UseRequest struct {
	UserID        int64
	AccountNumber string
	Amount        int64
}

func (r UseRequest) LockKey() string { return r.AccountNumber }

// Use debits the account. Checks run in a fixed order and the first failure
// wins: user, account, owner, status, then amount range and balance.
func (s *Service) Use(ctx context.Context, req UseRequest) (*domain.Transaction, error) {
	if _, err := s.users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Use: %w", domain.ErrUserNotFound)
		}
		return nil, fmt.Errorf("Use: %w", err)
	}

	acct, err := s.accountByNumber(ctx, req.AccountNumber)
	if err != nil {
		return nil, fmt.Errorf("Use: %w", err)
	}
	if acct.UserID != req.UserID {
		return nil, fmt.Errorf("Use: %w", domain.ErrUserMismatch)
	}
	if !acct.IsActive() {
		return nil, fmt.Errorf("Use: %w", domain.ErrAccountCancelled)
	}

	if err := acct.Use(req.Amount); err != nil {
		return nil, fmt.Errorf("Use: %w", err)
	}

	now := s.now()
	acct.UpdatedAt = now
	entry := domain.NewTransaction(acct, domain.TransactionKindUse, domain.TransactionOutcomeSucceeded, req.AccountNumber, req.Amount, now)

	if err := s.commit(ctx, acct, entry); err != nil {
		return nil, fmt.Errorf("Use: %w", err)
	}

	logging.FromContext(ctx).Info("balance used",
		"transaction_id", entry.ID,
		"account_number", req.AccountNumber,
		"amount", req.Amount,
		"balance_after", acct.Balance,
	)
	return entry, nil
}
