package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

var testRates = domain.Rates{
	BasePerHour:      2.0,
	BoostPerReferral: 0.03,
	MaxSession:       24 * time.Hour,
	SlashPerHour:     1.0,
}

func miningAccount(id domain.AccountID, start time.Time) domain.Account {
	return domain.Account{
		ID:     id,
		Mining: &domain.Session{IsMining: true, StartTime: start, LastUpdate: start},
	}
}

func TestRunCreditsOpenSessionsAndClosesExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(now,
		miningAccount("acc-open", now.Add(-30*time.Minute)),
		miningAccount("acc-done", now.Add(-25*time.Hour)),
		domain.Account{ID: "acc-idle", Balance: 3.0},
	)
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, rep.AccountsEvaluated)
	assert.Equal(t, 1, rep.SessionsStillOpen)
	assert.Equal(t, 1, rep.SessionsClosed)
	assert.InDelta(t, 49.0, rep.TotalCredited, 1e-9)
	assert.Empty(t, rep.Failures)

	open := store.accounts["acc-open"]
	assert.InDelta(t, 1.0, open.Balance, 1e-9)
	assert.True(t, open.Mining.IsMining)
	assert.Equal(t, now, open.Mining.LastUpdate)

	done := store.accounts["acc-done"]
	assert.InDelta(t, 48.0, done.Balance, 1e-9)
	assert.False(t, done.Mining.IsMining)
	assert.Equal(t, now.Add(-25*time.Hour).Add(24*time.Hour), done.Mining.LastUpdate)

	idle := store.accounts["acc-idle"]
	assert.InDelta(t, 3.0, idle.Balance, 1e-9, "slashing is off by default")
}

func TestRunIsIdempotentAcrossRepeatedRuns(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(now, miningAccount("acc-1", now.Add(-2*time.Hour)))
	svc := NewRunService(store, testRates, nil)

	first, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	require.InDelta(t, 4.0, first.TotalCredited, 1e-9)

	second, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Empty(t, second.Results)
	assert.Zero(t, second.TotalCredited)
	assert.InDelta(t, 4.0, store.accounts["acc-1"].Balance, 1e-9)
}

func TestRunMemoizesReferralCountsWithinOneRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	referrer1 := miningAccount("ref-1", now.Add(-time.Hour))
	referrer1.ReferralCode = "CODE"
	referrer2 := miningAccount("ref-2", now.Add(-time.Hour))
	referrer2.ReferralCode = "CODE"
	referred1 := miningAccount("child-1", now.Add(-time.Hour))
	referred1.ReferredBy = "CODE"
	referred2 := miningAccount("child-2", now.Add(-time.Hour))
	referred2.ReferredBy = "CODE"

	store := newFakeStore(now, referrer1, referrer2, referred1, referred2)
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, store.referralCalls["CODE"], "two accounts sharing a code trigger one lookup")

	for _, result := range rep.Results {
		if result.ID == "ref-1" || result.ID == "ref-2" {
			assert.InDelta(t, 0.06, result.SpeedBoost, 1e-9)
			assert.InDelta(t, 2.06, result.RatePerHour, 1e-9)
		} else {
			assert.Zero(t, result.SpeedBoost)
		}
	}
}

func TestRunReferralLookupFailureFallsBackToZeroBoost(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	account := miningAccount("acc-1", now.Add(-time.Hour))
	account.ReferralCode = "CODE"

	store := newFakeStore(now, account)
	store.referralErr = errors.New("index unavailable")
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	require.Len(t, rep.Results, 1)
	assert.Zero(t, rep.Results[0].SpeedBoost)
	assert.InDelta(t, 2.0, rep.Results[0].RatePerHour, 1e-9)
}

func TestRunWriteFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(now,
		miningAccount("acc-1", now.Add(-time.Hour)),
		miningAccount("acc-2", now.Add(-time.Hour)),
	)
	store.applyErr["acc-1"] = errors.New("write rejected")
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, domain.AccountID("acc-1"), rep.Failures[0].ID)
	assert.Contains(t, rep.Failures[0].Err, "write rejected")

	assert.InDelta(t, 0.0, store.accounts["acc-1"].Balance, 1e-9, "failed write leaves the account untouched for the next run")
	assert.InDelta(t, 2.0, store.accounts["acc-2"].Balance, 1e-9)
}

func TestRunDryRunSubmitsNothing(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(now, miningAccount("acc-1", now.Add(-time.Hour)))
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, rep.DryRun)
	assert.InDelta(t, 2.0, rep.TotalCredited, 1e-9)
	assert.Empty(t, store.applied)
	assert.InDelta(t, 0.0, store.accounts["acc-1"].Balance, 1e-9)
}

func TestRunSlashRespectsAllowList(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lastSlash := now.Add(-3 * time.Hour)
	store := newFakeStore(now,
		domain.Account{ID: "acc-1", Balance: 5.0, LastSlashUpdate: &lastSlash},
		domain.Account{ID: "acc-2", Balance: 5.0, LastSlashUpdate: &lastSlash},
	)
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{
		SlashEnabled: true,
		SlashAllow:   []domain.AccountID{"acc-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, rep.AccountsSlashed)
	assert.InDelta(t, 3.0, rep.TotalSlashed, 1e-9)
	assert.InDelta(t, 2.0, store.accounts["acc-1"].Balance, 1e-9)
	assert.InDelta(t, 5.0, store.accounts["acc-2"].Balance, 1e-9)
	assert.Equal(t, now, *store.accounts["acc-1"].LastSlashUpdate)
}

func TestRunSlashesWholePopulationWithoutAllowList(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	lastSlash := now.Add(-2 * time.Hour)
	store := newFakeStore(now,
		domain.Account{ID: "acc-1", Balance: 5.0, LastSlashUpdate: &lastSlash},
		domain.Account{ID: "acc-2", Balance: 5.0, LastSlashUpdate: &lastSlash},
	)
	svc := NewRunService(store, testRates, nil)

	rep, err := svc.Run(context.Background(), RunOptions{SlashEnabled: true})
	require.NoError(t, err)

	assert.Equal(t, 2, rep.AccountsSlashed)
	assert.InDelta(t, 4.0, rep.TotalSlashed, 1e-9)
}

func TestRunClockFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := newFakeStore(time.Time{}, miningAccount("acc-1", time.Now()))
	store.nowErr = errors.New("server time unavailable")
	svc := NewRunService(store, testRates, nil)

	_, err := svc.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve run time")
}
