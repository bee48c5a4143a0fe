package leveldb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/starxnet/mining-credits-cli/internal/domain"
	"github.com/starxnet/mining-credits-cli/internal/ports"
)

const accountKeyPrefix = "account:"

// Repository stores one JSON record per account in a goleveldb database.
// Read-modify-write cycles are serialized by a repository-level mutex; the
// database itself only sees whole-record puts.
type Repository struct {
	db    *leveldb.DB
	clock ports.Clock
	mu    sync.RWMutex
}

var _ ports.AccountStore = (*Repository)(nil)

func Open(path string, clock ports.Clock) (*Repository, error) {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}

	return &Repository{db: db, clock: clock}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Now(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	return r.clock.Now(), nil
}

func (r *Repository) Snapshot(ctx context.Context) (map[domain.AccountID]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make(map[domain.AccountID]domain.Account)
	iter := r.db.NewIterator(util.BytesPrefix([]byte(accountKeyPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		account, err := decodeAccount(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("decode account %s: %w", iter.Key(), err)
		}
		accounts[account.ID] = account
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

func (r *Repository) CountActiveReferrals(ctx context.Context, code string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if code == "" {
		return 0, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	iter := r.db.NewIterator(util.BytesPrefix([]byte(accountKeyPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		account, err := decodeAccount(iter.Value())
		if err != nil {
			return 0, fmt.Errorf("decode account %s: %w", iter.Key(), err)
		}
		if account.ReferredBy == code && account.HasOpenSession() {
			count++
		}
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("iterate accounts: %w", err)
	}

	return count, nil
}

func (r *Repository) ApplyMutation(ctx context.Context, id domain.AccountID, m domain.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.IsZero() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	account, err := r.get(id)
	if err != nil {
		return err
	}

	return r.put(m.Apply(account))
}

func (r *Repository) GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.get(id)
}

func (r *Repository) List(ctx context.Context) ([]domain.Account, error) {
	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(snapshot))
	for _, account := range snapshot {
		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (r *Repository) Save(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.put(account)
}

func (r *Repository) get(id domain.AccountID) (domain.Account, error) {
	data, err := r.db.Get(accountKey(id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return domain.Account{}, domain.ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("get account %s: %w", id, err)
	}

	account, err := decodeAccount(data)
	if err != nil {
		return domain.Account{}, fmt.Errorf("decode account %s: %w", id, err)
	}

	return account, nil
}

func (r *Repository) put(account domain.Account) error {
	data, err := json.Marshal(toRecord(account))
	if err != nil {
		return fmt.Errorf("encode account %s: %w", account.ID, err)
	}

	if err := r.db.Put(accountKey(account.ID), data, nil); err != nil {
		return fmt.Errorf("put account %s: %w", account.ID, err)
	}

	return nil
}

func accountKey(id domain.AccountID) []byte {
	return []byte(accountKeyPrefix + string(id))
}
