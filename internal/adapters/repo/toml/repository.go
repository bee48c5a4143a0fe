package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/starxnet/mining-credits-cli/internal/domain"
	"github.com/starxnet/mining-credits-cli/internal/ports"
)

const (
	accountsFileMode = 0o600
	accountsDirMode  = 0o700
	tempFilePattern  = ".accounts-*.toml.tmp"
)

// Repository stores the account population in a single TOML file with
// atomic replace-on-write semantics. The host that owns the file is the
// authoritative clock for runs against it.
type Repository struct {
	accountsPath string
	clock        ports.Clock
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.AccountStore = (*Repository)(nil)

func NewRepository(accountsPath string, clock ports.Clock) (*Repository, error) {
	if accountsPath == "" {
		return nil, errors.New("accounts path is empty")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	absPath, err := filepath.Abs(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve accounts path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &Repository{accountsPath: absPath, clock: clock, mu: lockForPath(absPath)}, nil
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

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	accounts := make(map[domain.AccountID]domain.Account, len(file.Accounts))
	for _, entry := range file.Accounts {
		account := fromSchema(entry)
		accounts[account.ID] = account
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

	file, err := r.readSchema()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range file.Accounts {
		if entry.ReferredBy != code {
			continue
		}
		if fromSchema(entry).HasOpenSession() {
			count++
		}
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

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	for i := range file.Accounts {
		if file.Accounts[i].ID != string(id) {
			continue
		}

		patched := m.Apply(fromSchema(file.Accounts[i]))
		file.Accounts[i] = toSchema(patched)

		return r.writeSchema(file)
	}

	return domain.ErrAccountNotFound
}

func (r *Repository) GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return domain.Account{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Account{}, err
	}

	for _, entry := range file.Accounts {
		if entry.ID == string(id) {
			return fromSchema(entry), nil
		}
	}

	return domain.Account{}, domain.ErrAccountNotFound
}

func (r *Repository) List(ctx context.Context) ([]domain.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(file.Accounts))
	for _, entry := range file.Accounts {
		accounts = append(accounts, fromSchema(entry))
	}

	return accounts, nil
}

func (r *Repository) Save(ctx context.Context, account domain.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	encoded := toSchema(account)
	updated := false
	for i := range file.Accounts {
		if file.Accounts[i].ID == encoded.ID {
			file.Accounts[i] = encoded
			updated = true
			break
		}
	}
	if !updated {
		file.Accounts = append(file.Accounts, encoded)
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.accountsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read accounts file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode accounts file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.accountsPath), accountsDirMode); err != nil {
		return fmt.Errorf("create accounts directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode accounts file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.accountsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp accounts file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp accounts file: %w", err)
	}

	if err := tempFile.Chmod(accountsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp accounts file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp accounts file: %w", err)
	}

	if err := os.Rename(tempName, r.accountsPath); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	cleanup = false

	if err := os.Chmod(r.accountsPath, accountsFileMode); err != nil {
		return fmt.Errorf("chmod accounts file: %w", err)
	}

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
