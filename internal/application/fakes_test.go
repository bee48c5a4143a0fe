package application

import (
	"context"
	"sync"
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

// fakeStore is an in-memory ports.AccountStore for service tests.
type fakeStore struct {
	mu sync.Mutex

	now    time.Time
	nowErr error

	accounts map[domain.AccountID]domain.Account

	referralErr   error
	referralCalls map[string]int

	applyErr map[domain.AccountID]error
	applied  map[domain.AccountID]domain.Mutation
}

func newFakeStore(now time.Time, accounts ...domain.Account) *fakeStore {
	store := &fakeStore{
		now:           now,
		accounts:      make(map[domain.AccountID]domain.Account, len(accounts)),
		referralCalls: make(map[string]int),
		applyErr:      make(map[domain.AccountID]error),
		applied:       make(map[domain.AccountID]domain.Mutation),
	}
	for _, account := range accounts {
		store.accounts[account.ID] = account
	}

	return store
}

func (f *fakeStore) Now(_ context.Context) (time.Time, error) {
	if f.nowErr != nil {
		return time.Time{}, f.nowErr
	}
	return f.now, nil
}

func (f *fakeStore) Snapshot(_ context.Context) (map[domain.AccountID]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make(map[domain.AccountID]domain.Account, len(f.accounts))
	for id, account := range f.accounts {
		snapshot[id] = account
	}

	return snapshot, nil
}

func (f *fakeStore) CountActiveReferrals(_ context.Context, code string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.referralCalls[code]++
	if f.referralErr != nil {
		return 0, f.referralErr
	}

	count := 0
	for _, account := range f.accounts {
		if account.ReferredBy == code && account.HasOpenSession() {
			count++
		}
	}

	return count, nil
}

func (f *fakeStore) ApplyMutation(_ context.Context, id domain.AccountID, m domain.Mutation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.applyErr[id]; err != nil {
		return err
	}

	account, ok := f.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}

	f.accounts[id] = m.Apply(account)
	f.applied[id] = m

	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id domain.AccountID) (domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return account, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accounts := make([]domain.Account, 0, len(f.accounts))
	for _, account := range f.accounts {
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (f *fakeStore) Save(_ context.Context, account domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.accounts[account.ID] = account

	return nil
}
