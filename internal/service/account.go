package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/lock"
	"github.com/josh-kwaku/account-ledger/internal/logging"
	"github.com/josh-kwaku/account-ledger/internal/repository"
)

const (
	accountNumberMin      int64 = 1_000_000_000
	accountNumberMax      int64 = 9_999_999_999
	accountNumberAttempts       = 10
)

var errAccountNumberExhausted = errors.New("no free account number")

type accountRepo interface {
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	CountByUserID(ctx context.Context, userID int64) (int, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.Account, error)
	Create(ctx context.Context, q repository.Querier, a *domain.Account) error
	Save(ctx context.Context, q repository.Querier, a *domain.Account) error
}

type userChecker interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type CloseAccountRequest struct {
	UserID        int64
	AccountNumber string
}

func (r CloseAccountRequest) LockKey() string { return r.AccountNumber }

type AccountService struct {
	accounts    accountRepo
	users       userChecker
	db          *sql.DB
	maxAccounts int
	close       lock.Op[CloseAccountRequest, *domain.Account]
	newNumber   func() (string, error)
	now         func() time.Time
}

// NewAccountService builds the service. Closing an account takes the same
// lock as balance mutations so a close cannot race a use on the same number.
func NewAccountService(accounts accountRepo, users userChecker, db *sql.DB, locks lock.Provider, opts lock.Options, maxAccounts int) *AccountService {
	s := &AccountService{
		accounts:    accounts,
		users:       users,
		db:          db,
		maxAccounts: maxAccounts,
		newNumber:   generateAccountNumber,
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.close = lock.Guard(locks, opts, CloseAccountRequest.LockKey, s.closeAccount)
	return s
}

func (s *AccountService) CreateAccount(ctx context.Context, userID int64, initialBalance int64) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	n, err := s.accounts.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: count: %w", err)
	}
	if n >= s.maxAccounts {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrTooManyAccounts)
	}

	number, err := s.freeAccountNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	now := s.now()
	account := &domain.Account{
		UserID:       userID,
		Number:       number,
		Status:       domain.AccountStatusActive,
		Balance:      initialBalance,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, s.db, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"account_number", account.Number,
		"user_id", userID,
		"initial_balance", initialBalance,
	)

	return account, nil
}

func (s *AccountService) CloseAccount(ctx context.Context, userID int64, number string) (*domain.Account, error) {
	a, err := s.close(ctx, CloseAccountRequest{UserID: userID, AccountNumber: number})
	if err != nil {
		return nil, fmt.Errorf("CloseAccount: %w", err)
	}
	return a, nil
}

func (s *AccountService) closeAccount(ctx context.Context, req CloseAccountRequest) (*domain.Account, error) {
	if err := s.checkUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByNumber(ctx, req.AccountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if account.UserID != req.UserID {
		return nil, domain.ErrUserMismatch
	}

	now := s.now()
	if err := account.Close(now); err != nil {
		return nil, err
	}
	account.UpdatedAt = now

	if err := s.accounts.Save(ctx, s.db, account); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("account closed",
		"account_id", account.ID,
		"account_number", account.Number,
		"user_id", req.UserID,
	)
	return account, nil
}

func (s *AccountService) GetUserAccounts(ctx context.Context, userID int64) ([]domain.Account, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}

	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) checkUser(ctx context.Context, userID int64) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return nil
}

// freeAccountNumber draws random numbers until one is unused. The number of
// draws is capped so a saturated number space fails instead of spinning.
func (s *AccountService) freeAccountNumber(ctx context.Context) (string, error) {
	for range accountNumberAttempts {
		number, err := s.newNumber()
		if err != nil {
			return "", fmt.Errorf("freeAccountNumber: %w", err)
		}
		exists, err := s.accounts.ExistsByNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("freeAccountNumber: %w", err)
		}
		if !exists {
			return number, nil
		}
		logging.FromContext(ctx).Debug("account number collision", "account_number", number)
	}
	return "", fmt.Errorf("freeAccountNumber: %w", errAccountNumberExhausted)
}

func generateAccountNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(accountNumberMax-accountNumberMin+1))
	if err != nil {
		return "", fmt.Errorf("generateAccountNumber: %w", err)
	}
	return strconv.FormatInt(n.Int64()+accountNumberMin, 10), nil
}
