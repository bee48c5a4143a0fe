package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func newTestRepository(t *testing.T) (*Repository, time.Time) {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo, err := NewRepository(filepath.Join(t.TempDir(), "accounts.toml"), fixedClock{now: now})
	require.NoError(t, err)

	return repo, now
}

func TestRepositorySaveAndGetRoundTrip(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	lastSlash := now.Add(-2 * time.Hour)
	account := domain.Account{
		ID:              "acc-1",
		Name:            "Primary",
		Balance:         12.5,
		ReferralCode:    "CODE",
		ReferredBy:      "PARENT",
		BoostRate:       0.25,
		LastSlashUpdate: &lastSlash,
		Mining: &domain.Session{
			IsMining:   true,
			StartTime:  now.Add(-time.Hour),
			LastUpdate: now.Add(-30 * time.Minute),
		},
	}

	require.NoError(t, repo.Save(ctx, account))

	loaded, err := repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)

	assert.Equal(t, account.Name, loaded.Name)
	assert.InDelta(t, account.Balance, loaded.Balance, 1e-9)
	assert.Equal(t, account.ReferralCode, loaded.ReferralCode)
	assert.Equal(t, account.ReferredBy, loaded.ReferredBy)
	assert.InDelta(t, account.BoostRate, loaded.BoostRate, 1e-9)
	require.NotNil(t, loaded.LastSlashUpdate)
	assert.True(t, loaded.LastSlashUpdate.Equal(lastSlash))
	require.NotNil(t, loaded.Mining)
	assert.True(t, loaded.Mining.IsMining)
	assert.True(t, loaded.Mining.StartTime.Equal(account.Mining.StartTime))
	assert.True(t, loaded.Mining.LastUpdate.Equal(account.Mining.LastUpdate))
}

func TestRepositoryGetByIDNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRepositoryNowUsesClock(t *testing.T) {
	repo, now := newTestRepository(t)

	got, err := repo.Now(context.Background())
	require.NoError(t, err)
	assert.True(t, got.Equal(now))
}

func TestRepositorySnapshotReturnsAllAccounts(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Account{ID: "acc-1", Balance: 1}))
	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:     "acc-2",
		Mining: &domain.Session{IsMining: true, StartTime: now},
	}))

	snapshot, err := repo.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, snapshot, 2)
	assert.InDelta(t, 1.0, snapshot["acc-1"].Balance, 1e-9)
	assert.True(t, snapshot["acc-2"].HasOpenSession())
}

func TestRepositoryCountActiveReferrals(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:         "miner-1",
		ReferredBy: "CODE",
		Mining:     &domain.Session{IsMining: true, StartTime: now},
	}))
	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:         "idle-1",
		ReferredBy: "CODE",
		Mining:     &domain.Session{IsMining: false, StartTime: now},
	}))
	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:         "miner-2",
		ReferredBy: "OTHER",
		Mining:     &domain.Session{IsMining: true, StartTime: now},
	}))

	count, err := repo.CountActiveReferrals(ctx, "CODE")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = repo.CountActiveReferrals(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepositoryApplyMutationPatchesOnlyTouchedFields(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	start := now.Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:           "acc-1",
		Name:         "Primary",
		Balance:      5.0,
		ReferralCode: "CODE",
		Mining:       &domain.Session{IsMining: true, StartTime: start, LastUpdate: start},
	}))

	balance := 7.0
	require.NoError(t, repo.ApplyMutation(ctx, "acc-1", domain.Mutation{
		Balance:    &balance,
		LastUpdate: &now,
	}))

	loaded, err := repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)

	assert.InDelta(t, 7.0, loaded.Balance, 1e-9)
	assert.True(t, loaded.Mining.LastUpdate.Equal(now))
	assert.True(t, loaded.Mining.IsMining, "untouched session flag stays put")
	assert.True(t, loaded.Mining.StartTime.Equal(start), "untouched start time stays put")
	assert.Equal(t, "Primary", loaded.Name)
	assert.Equal(t, "CODE", loaded.ReferralCode)
}

func TestRepositoryApplyMutationClosesSession(t *testing.T) {
	repo, now := newTestRepository(t)
	ctx := context.Background()

	start := now.Add(-25 * time.Hour)
	require.NoError(t, repo.Save(ctx, domain.Account{
		ID:     "acc-1",
		Mining: &domain.Session{IsMining: true, StartTime: start, LastUpdate: start},
	}))

	balance := 48.0
	closed := false
	end := start.Add(24 * time.Hour)
	require.NoError(t, repo.ApplyMutation(ctx, "acc-1", domain.Mutation{
		Balance:    &balance,
		LastUpdate: &end,
		IsMining:   &closed,
	}))

	loaded, err := repo.GetByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.False(t, loaded.Mining.IsMining)
	assert.True(t, loaded.Mining.LastUpdate.Equal(end))
}

func TestRepositoryApplyMutationUnknownAccount(t *testing.T) {
	repo, _ := newTestRepository(t)

	balance := 1.0
	err := repo.ApplyMutation(context.Background(), "missing", domain.Mutation{Balance: &balance})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRepositoryClampsMalformedStoredNumbers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "accounts.toml")

	raw := `version = 1

[[accounts]]
id = "acc-1"
balance = -42.0
boost_rate = -1.0
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	repo, err := NewRepository(path, fixedClock{now: now})
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Zero(t, loaded.Balance)
	assert.Zero(t, loaded.BoostRate)
}

func TestRepositoryPersistsAcrossInstances(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "accounts.toml")

	first, err := NewRepository(path, fixedClock{now: now})
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), domain.Account{ID: "acc-1", Balance: 2.5}))

	second, err := NewRepository(path, fixedClock{now: now})
	require.NoError(t, err)

	loaded, err := second.GetByID(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, loaded.Balance, 1e-9)
}
