package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
)

func SeedUser(t *testing.T, db *sql.DB, name string) *domain.User {
	t.Helper()

	u := &domain.User{Name: name, CreatedAt: time.Now().UTC()}
	err := db.QueryRow(
		`INSERT INTO users (name, created_at) VALUES ($1, $2) RETURNING id`,
		u.Name, u.CreatedAt,
	).Scan(&u.ID)
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func SeedAccount(t *testing.T, db *sql.DB, userID int64, number string, balance int64) *domain.Account {
	t.Helper()

	now := time.Now().UTC()
	a := &domain.Account{
		UserID:       userID,
		Number:       number,
		Status:       domain.AccountStatusActive,
		Balance:      balance,
		RegisteredAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := db.QueryRow(
		`INSERT INTO accounts (user_id, account_number, status, balance, registered_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		a.UserID, a.Number, a.Status, a.Balance, a.RegisteredAt, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		t.Fatalf("seed account %s: %v", number, err)
	}
	return a
}

func GetAccountBalance(t *testing.T, db *sql.DB, number string) int64 {
	t.Helper()

	var balance int64
	err := db.QueryRow(`SELECT balance FROM accounts WHERE account_number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", number, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, number string, kind domain.TransactionKind, outcome domain.TransactionOutcome) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE account_number = $1 AND kind = $2 AND outcome = $3`,
		number, kind, outcome,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions for %s: %v", number, err)
	}
	return count
}
