package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusClosed AccountStatus = "CLOSED"
)

// Use amounts are bounded to [MinUseAmount, MaxUseAmount), in minor units.
const (
	MinUseAmount int64 = 100
	MaxUseAmount int64 = 100_000_000
)

// Account is only mutated while the caller holds the distributed lock on its
// number; nothing below the lock detects a concurrent read-modify-write.
type Account struct {
	ID             int64
	UserID         int64
	Number         string
	Status         AccountStatus
	Balance        int64
	RegisteredAt   time.Time
	UnregisteredAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Use debits amount after checking the use range and the balance. The account
// is left untouched when a check fails.
func (a *Account) Use(amount int64) error {
	if amount < MinUseAmount {
		return ErrAmountBelowMinimum
	}
	if amount >= MaxUseAmount {
		return ErrAmountAboveMaximum
	}
	if amount > a.Balance {
		return ErrInsufficientBalance
	}
	a.Balance -= amount
	return nil
}

// Credit adds amount back to the balance. Status is not consulted: a closed
// account can still receive a cancellation.
func (a *Account) Credit(amount int64) {
	a.Balance += amount
}

func (a *Account) Close(now time.Time) error {
	if !a.IsActive() {
		return ErrAccountCancelled
	}
	if a.Balance != 0 {
		return ErrAccountHasBalance
	}
	a.Status = AccountStatusClosed
	a.UnregisteredAt = &now
	return nil
}
