package ports

import (
	"context"
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

// AccountRepository is the narrow contract a batch run needs. Now returns
// the store's authoritative time for the run; a failure there is fatal for
// the whole run, the coordinator never falls back to the local clock.
type AccountRepository interface {
	Now(ctx context.Context) (time.Time, error)
	Snapshot(ctx context.Context) (map[domain.AccountID]domain.Account, error)
	CountActiveReferrals(ctx context.Context, code string) (int, error)
	ApplyMutation(ctx context.Context, id domain.AccountID, m domain.Mutation) error
}

// AccountStore adds the management operations the CLI layers on top of the
// run contract.
type AccountStore interface {
	AccountRepository

	GetByID(ctx context.Context, id domain.AccountID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
}
