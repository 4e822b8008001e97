package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/lock"
	"github.com/josh-kwaku/account-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	mu       sync.Mutex
	byNumber map[string]domain.Account
	nextID   int64
	taken    map[string]bool
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byNumber: map[string]domain.Account{}, taken: map[string]bool{}}
}

func (f *fakeAccounts) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("GetByNumber: %w", domain.ErrNotFound)
	}
	return &a, nil
}

func (f *fakeAccounts) ExistsByNumber(_ context.Context, number string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byNumber[number]
	return ok || f.taken[number], nil
}

func (f *fakeAccounts) CountByUserID(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.byNumber {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAccounts) ListByUserID(_ context.Context, userID int64) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, a := range f.byNumber {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccounts) Create(_ context.Context, _ repository.Querier, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	f.byNumber[a.Number] = *a
	return nil
}

func (f *fakeAccounts) Save(_ context.Context, _ repository.Querier, a *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byNumber[a.Number] = *a
	return nil
}

type fakeUsers map[int64]bool

func (f fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if !f[id] {
		return nil, domain.ErrNotFound
	}
	return &domain.User{ID: id}, nil
}

type countingLocks struct {
	mu       sync.Mutex
	keys     []string
	released int
	busy     bool
}

func (l *countingLocks) Acquire(_ context.Context, key string, _, _ time.Duration) (lock.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return nil, lock.ErrNotAcquired
	}
	l.keys = append(l.keys, key)
	return l, nil
}

func (l *countingLocks) Release(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
	return nil
}

func newTestAccountService(t *testing.T, maxAccounts int) (*AccountService, *fakeAccounts, *countingLocks) {
	t.Helper()
	accounts := newFakeAccounts()
	locks := &countingLocks{}
	svc := NewAccountService(accounts, fakeUsers{1: true, 2: true}, nil, locks,
		lock.Options{Wait: time.Second, Lease: 15 * time.Second}, maxAccounts)
	return svc, accounts, locks
}

func TestCreateAccount(t *testing.T) {
	svc, accounts, _ := newTestAccountService(t, 10)

	a, err := svc.CreateAccount(context.Background(), 1, 1_000)
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Len(t, a.Number, 10)
	assert.Equal(t, domain.AccountStatusActive, a.Status)
	assert.Equal(t, int64(1_000), a.Balance)
	assert.False(t, a.RegisteredAt.IsZero())

	stored, err := accounts.GetByNumber(context.Background(), a.Number)
	require.NoError(t, err)
	assert.Equal(t, a.ID, stored.ID)
}

func TestCreateAccount_UnknownUser(t *testing.T) {
	svc, _, _ := newTestAccountService(t, 10)
	_, err := svc.CreateAccount(context.Background(), 42, 1_000)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateAccount_Cap(t *testing.T) {
	svc, _, _ := newTestAccountService(t, 2)
	ctx := context.Background()

	for range 2 {
		_, err := svc.CreateAccount(ctx, 1, 100)
		require.NoError(t, err)
	}
	_, err := svc.CreateAccount(ctx, 1, 100)
	require.ErrorIs(t, err, domain.ErrTooManyAccounts)

	_, err = svc.CreateAccount(ctx, 2, 100)
	require.NoError(t, err, "the cap is per user")
}

func TestCreateAccount_NumberCollisions(t *testing.T) {
	svc, accounts, _ := newTestAccountService(t, 10)
	accounts.taken["1111111111"] = true

	draws := []string{"1111111111", "1111111111", "2222222222"}
	svc.newNumber = func() (string, error) {
		n := draws[0]
		draws = draws[1:]
		return n, nil
	}

	a, err := svc.CreateAccount(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "2222222222", a.Number)
}

func TestCreateAccount_NumberSpaceExhausted(t *testing.T) {
	svc, accounts, _ := newTestAccountService(t, 10)
	accounts.taken["1111111111"] = true
	svc.newNumber = func() (string, error) { return "1111111111", nil }

	_, err := svc.CreateAccount(context.Background(), 1, 100)
	require.ErrorIs(t, err, errAccountNumberExhausted)
}

func TestGenerateAccountNumber_Range(t *testing.T) {
	for range 200 {
		n, err := generateAccountNumber()
		require.NoError(t, err)
		require.Len(t, n, 10)
		assert.NotEqual(t, byte('0'), n[0])
	}
}

func TestCloseAccount(t *testing.T) {
	seed := func(t *testing.T, balance int64, status domain.AccountStatus) (*AccountService, *fakeAccounts, *countingLocks) {
		svc, accounts, locks := newTestAccountService(t, 10)
		accounts.byNumber["1234567890"] = domain.Account{ID: 1, UserID: 1, Number: "1234567890", Balance: balance, Status: status}
		return svc, accounts, locks
	}

	t.Run("zero balance", func(t *testing.T) {
		svc, accounts, locks := seed(t, 0, domain.AccountStatusActive)
		a, err := svc.CloseAccount(context.Background(), 1, "1234567890")
		require.NoError(t, err)
		assert.Equal(t, domain.AccountStatusClosed, a.Status)
		assert.NotNil(t, a.UnregisteredAt)
		assert.Equal(t, domain.AccountStatusClosed, accounts.byNumber["1234567890"].Status)
		assert.Equal(t, []string{"1234567890"}, locks.keys)
		assert.Equal(t, 1, locks.released)
	})

	tests := []struct {
		name    string
		userID  int64
		number  string
		balance int64
		status  domain.AccountStatus
		wantErr error
	}{
		{name: "unknown user", userID: 9, number: "1234567890", status: domain.AccountStatusActive, wantErr: domain.ErrUserNotFound},
		{name: "unknown account", userID: 1, number: "0000000000", status: domain.AccountStatusActive, wantErr: domain.ErrAccountNotFound},
		{name: "other owner", userID: 2, number: "1234567890", status: domain.AccountStatusActive, wantErr: domain.ErrUserMismatch},
		{name: "remaining balance", userID: 1, number: "1234567890", balance: 100, status: domain.AccountStatusActive, wantErr: domain.ErrAccountHasBalance},
		{name: "already closed", userID: 1, number: "1234567890", status: domain.AccountStatusClosed, wantErr: domain.ErrAccountCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, locks := seed(t, tt.balance, tt.status)
			_, err := svc.CloseAccount(context.Background(), tt.userID, tt.number)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 1, locks.released, "lock released on failure")
		})
	}

	t.Run("busy account", func(t *testing.T) {
		svc, accounts, locks := seed(t, 0, domain.AccountStatusActive)
		locks.busy = true
		_, err := svc.CloseAccount(context.Background(), 1, "1234567890")
		require.ErrorIs(t, err, domain.ErrLockUnavailable)
		assert.Equal(t, domain.AccountStatusActive, accounts.byNumber["1234567890"].Status)
	})
}

func TestGetUserAccounts(t *testing.T) {
	svc, _, _ := newTestAccountService(t, 10)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, 1, 100)
	require.NoError(t, err)
	_, err = svc.CreateAccount(ctx, 2, 100)
	require.NoError(t, err)

	accounts, err := svc.GetUserAccounts(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, accounts, 1)

	_, err = svc.GetUserAccounts(ctx, 77)
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
}
