package transaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/logging"
)

type CancelRequest struct {
	TransactionID uuid.UUID
	AccountNumber string
	Amount        int64
}

func (r CancelRequest) LockKey() string { return r.AccountNumber }

// Cancel credits back the amount of an earlier entry. The account number and
// amount must match the original exactly. Account status is not checked, so
// a closed account can still be credited.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (*domain.Transaction, error) {
	orig, err := s.transactions.GetByID(ctx, req.TransactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Cancel: %w", domain.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("Cancel: %w", err)
	}
	if orig.AccountNumber != req.AccountNumber {
		return nil, fmt.Errorf("Cancel: %w", domain.ErrTransactionAccountMismatch)
	}
	if orig.Amount != req.Amount {
		return nil, fmt.Errorf("Cancel: %w", domain.ErrTransactionAmountMismatch)
	}

	acct, err := s.accounts.GetByID(ctx, orig.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Cancel: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("Cancel: %w", err)
	}

	acct.Credit(req.Amount)

	now := s.now()
	acct.UpdatedAt = now
	entry := domain.NewTransaction(acct, domain.TransactionKindCancel, domain.TransactionOutcomeSucceeded, req.AccountNumber, req.Amount, now)

	if err := s.commit(ctx, acct, entry); err != nil {
		return nil, fmt.Errorf("Cancel: %w", err)
	}

	logging.FromContext(ctx).Info("transaction cancelled",
		"transaction_id", entry.ID,
		"original_transaction_id", orig.ID,
		"account_number", req.AccountNumber,
		"amount", req.Amount,
		"balance_after", acct.Balance,
	)
	return entry, nil
}
