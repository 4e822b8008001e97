package transaction_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/lock"
	"github.com/josh-kwaku/account-ledger/internal/repository"
	"github.com/josh-kwaku/account-ledger/internal/service/transaction"
	"github.com/josh-kwaku/account-ledger/internal/testutil"
)

func setupGateway(t *testing.T, db *sql.DB) (*transaction.Service, *transaction.Gateway) {
	t.Helper()
	client, _ := testutil.SetupTestRedis(t)

	svc := transaction.NewService(
		repository.NewAccountRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewUserRepository(db),
		db,
	)
	provider := lock.NewRedisProvider(client, "account-lock:", 10*time.Millisecond)
	return svc, transaction.NewGateway(svc, provider, lock.Options{Wait: 10 * time.Second, Lease: 15 * time.Second}, 0)
}

func TestUseAndCancel_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc, g := setupGateway(t, db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "Ada")
	testutil.SeedAccount(t, db, user.ID, "1000000001", 10_000)

	used, err := g.Use(ctx, transaction.UseRequest{UserID: user.ID, AccountNumber: "1000000001", Amount: 1_000})
	require.NoError(t, err)
	assert.Equal(t, int64(9_000), testutil.GetAccountBalance(t, db, "1000000001"))

	got, err := svc.Select(ctx, used.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionKindUse, got.Kind)
	assert.Equal(t, domain.TransactionOutcomeSucceeded, got.Outcome)

	_, err = g.Cancel(ctx, transaction.CancelRequest{TransactionID: used.ID, AccountNumber: "1000000001", Amount: 999})
	require.ErrorIs(t, err, domain.ErrTransactionAmountMismatch)
	assert.Equal(t, int64(9_000), testutil.GetAccountBalance(t, db, "1000000001"))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, "1000000001", domain.TransactionKindCancel, domain.TransactionOutcomeFailed))

	_, err = g.Cancel(ctx, transaction.CancelRequest{TransactionID: used.ID, AccountNumber: "1000000001", Amount: 1_000})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), testutil.GetAccountBalance(t, db, "1000000001"))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, "1000000001", domain.TransactionKindCancel, domain.TransactionOutcomeSucceeded))
}

func TestUse_FailureIsAudited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, g := setupGateway(t, db)

	user := testutil.SeedUser(t, db, "Ada")
	testutil.SeedAccount(t, db, user.ID, "1000000002", 500)

	_, err := g.Use(context.Background(), transaction.UseRequest{UserID: user.ID, AccountNumber: "1000000002", Amount: 1_000})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.Equal(t, int64(500), testutil.GetAccountBalance(t, db, "1000000002"))
	assert.Equal(t, 1, testutil.CountTransactions(t, db, "1000000002", domain.TransactionKindUse, domain.TransactionOutcomeFailed))
	assert.Equal(t, 0, testutil.CountTransactions(t, db, "1000000002", domain.TransactionKindUse, domain.TransactionOutcomeSucceeded))
}

func TestUse_ConcurrentDrain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, g := setupGateway(t, db)

	const (
		n      = 10
		amount = int64(300)
	)
	user := testutil.SeedUser(t, db, "Ada")
	testutil.SeedAccount(t, db, user.ID, "1000000003", n*amount)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Use(context.Background(), transaction.UseRequest{UserID: user.ID, AccountNumber: "1000000003", Amount: amount})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(0), testutil.GetAccountBalance(t, db, "1000000003"))
	assert.Equal(t, n, testutil.CountTransactions(t, db, "1000000003", domain.TransactionKindUse, domain.TransactionOutcomeSucceeded))
}
