package transaction

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/josh-kwaku/account-ledger/internal/domain"
	"github.com/josh-kwaku/account-ledger/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs all three repositories. Reads hand out copies so callers see
// the same read-then-write behaviour as with Postgres.
type memStore struct {
	mu        sync.Mutex
	users     map[int64]domain.User
	accounts  map[int64]domain.Account
	entries   []domain.Transaction
	nextID    int64
	saveErr   error
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]domain.User{},
		accounts: map[int64]domain.Account{},
	}
}

func (m *memStore) addUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[id] = domain.User{ID: id, Name: "user"}
}

func (m *memStore) addAccount(userID int64, number string, balance int64, status domain.AccountStatus) domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := domain.Account{ID: m.nextID, UserID: userID, Number: number, Balance: balance, Status: status}
	m.accounts[a.ID] = a
	return a
}

func (m *memStore) addEntry(t domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, t)
}

func (m *memStore) account(t *testing.T, number string) domain.Account {
	t.Helper()
	a, err := m.GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return *a
}

func (m *memStore) ledger() []domain.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Transaction, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *memStore) GetByNumber(_ context.Context, number string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Number == number {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) Save(_ context.Context, _ repository.Querier, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = *a
	return nil
}

type ledgerView struct{ *memStore }

func (l ledgerView) Create(_ context.Context, _ repository.Querier, t *domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, *t)
	return nil
}

func (l ledgerView) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.entries {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (l ledgerView) ListByAccountNumber(_ context.Context, number string, limit, offset int) ([]domain.Transaction, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var matched []domain.Transaction
	for _, t := range l.entries {
		if t.AccountNumber == number {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

type userView struct{ *memStore }

func (u userView) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	usr, ok := u.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &usr, nil
}

// newTestService returns a Service over an in-memory store. Each successful
// mutation must be matched by expectCommits on the returned mock.
func newTestService(t *testing.T) (*Service, *memStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	store := newMemStore()
	return NewService(store, ledgerView{store}, userView{store}, db), store, mock
}

func expectCommits(mock sqlmock.Sqlmock, n int) {
	for range n {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

