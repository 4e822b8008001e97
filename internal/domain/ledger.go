package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	TransactionKindUse    TransactionKind = "USE"
	TransactionKindCancel TransactionKind = "CANCEL"
)

type TransactionOutcome string

const (
	TransactionOutcomeSucceeded TransactionOutcome = "SUCCEEDED"
	TransactionOutcomeFailed    TransactionOutcome = "FAILED"
)

// Transaction is one ledger entry: a single use or cancel attempt. Entries are
// appended once and never updated. AccountNumber is a snapshot taken at write
// time and may outlive the account row.
type Transaction struct {
	ID            uuid.UUID
	AccountID     int64
	Kind          TransactionKind
	Outcome       TransactionOutcome
	Amount        int64
	AccountNumber string
	CreatedAt     time.Time
}

func NewTransaction(account *Account, kind TransactionKind, outcome TransactionOutcome, accountNumber string, amount int64, now time.Time) *Transaction {
	return &Transaction{
		ID:            uuid.New(),
		AccountID:     account.ID,
		Kind:          kind,
		Outcome:       outcome,
		Amount:        amount,
		AccountNumber: accountNumber,
		CreatedAt:     now,
	}
}
