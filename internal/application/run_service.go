package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/starxnet/mining-credits-cli/internal/domain"
	"github.com/starxnet/mining-credits-cli/internal/ports"
)

const defaultSubmitLimit = 8

// RunService coordinates one scheduled pass: one authoritative now, one
// snapshot, a pure evaluation per account, then best-effort mutation
// submission. Evaluation shares nothing across accounts except the frozen
// now and the per-run referral-count cache, so per-account order never
// changes results.
type RunService struct {
	repo  ports.AccountRepository
	rates domain.Rates
	log   *zap.Logger
}

func NewRunService(repo ports.AccountRepository, rates domain.Rates, log *zap.Logger) *RunService {
	if log == nil {
		log = zap.NewNop()
	}

	return &RunService{repo: repo, rates: rates, log: log}
}

type pendingWrite struct {
	id       domain.AccountID
	mutation domain.Mutation
}

func (s *RunService) Run(ctx context.Context, opts RunOptions) (Report, error) {
	now, err := s.repo.Now(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("resolve run time: %w", err)
	}

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("snapshot accounts: %w", err)
	}

	ids := make([]domain.AccountID, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	slashAllowed := slashFilter(opts.SlashAllow)
	boosts := newBoostCache(s.repo, s.rates.BoostPerReferral, s.log)

	report := Report{RanAt: now, DryRun: opts.DryRun, AccountsEvaluated: len(ids)}
	pending := make([]pendingWrite, 0, len(ids))

	for _, id := range ids {
		account := snapshot[id]

		if account.HasOpenSession() {
			boost := boosts.resolve(ctx, account.ReferralCode)
			if accrual, ok := domain.EvaluateAccrual(account, boost, now, s.rates); ok {
				pending = append(pending, pendingWrite{id: id, mutation: accrual.Mutation()})
				report.Results = append(report.Results, AccountResult{
					ID:            id,
					Minutes:       accrual.Minutes,
					SpeedBoost:    boost,
					BoostRate:     account.BoostRate,
					RatePerHour:   accrual.RatePerHour,
					Credited:      accrual.Coins,
					SessionClosed: accrual.SessionClosed,
				})
				report.TotalCredited += accrual.Coins
				if accrual.SessionClosed {
					report.SessionsClosed++
				} else {
					report.SessionsStillOpen++
				}
			}
			continue
		}

		if opts.SlashEnabled && slashAllowed(id) {
			if slash, ok := domain.EvaluateSlash(account, now, s.rates); ok {
				pending = append(pending, pendingWrite{id: id, mutation: slash.Mutation()})
				report.Results = append(report.Results, AccountResult{
					ID:           id,
					SlashedHours: slash.Hours,
					Slashed:      slash.Amount,
				})
				report.AccountsSlashed++
				report.TotalSlashed += slash.Amount
			}
		}
	}

	if opts.DryRun {
		return report, nil
	}

	report.Failures = s.submit(ctx, pending, opts.SubmitLimit)

	return report, nil
}

// submit applies all collected mutations with bounded fan-out. A failed
// write is recorded, not fatal: the evaluator advanced nothing for that
// account, so the next scheduled run recomputes the same delta.
func (s *RunService) submit(ctx context.Context, pending []pendingWrite, limit int) []WriteFailure {
	if limit <= 0 {
		limit = defaultSubmitLimit
	}

	var mu sync.Mutex
	var failures []WriteFailure

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, write := range pending {
		g.Go(func() error {
			if err := s.repo.ApplyMutation(ctx, write.id, write.mutation); err != nil {
				s.log.Warn("apply mutation failed",
					zap.String("account", string(write.id)),
					zap.Error(err),
				)
				mu.Lock()
				failures = append(failures, WriteFailure{ID: write.id, Err: err.Error()})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(failures, func(i, j int) bool { return failures[i].ID < failures[j].ID })

	return failures
}

func slashFilter(allow []domain.AccountID) func(domain.AccountID) bool {
	if len(allow) == 0 {
		return func(domain.AccountID) bool { return true }
	}

	set := make(map[domain.AccountID]struct{}, len(allow))
	for _, id := range allow {
		set[id] = struct{}{}
	}

	return func(id domain.AccountID) bool {
		_, ok := set[id]
		return ok
	}
}

// boostCache memoizes referral counts by code within a single run. A failed
// lookup degrades to zero boost for the run and is logged once per code.
type boostCache struct {
	repo             ports.AccountRepository
	boostPerReferral float64
	log              *zap.Logger
	byCode           map[string]float64
}

func newBoostCache(repo ports.AccountRepository, boostPerReferral float64, log *zap.Logger) *boostCache {
	return &boostCache{
		repo:             repo,
		boostPerReferral: boostPerReferral,
		log:              log,
		byCode:           make(map[string]float64),
	}
}

func (c *boostCache) resolve(ctx context.Context, code string) float64 {
	if code == "" {
		return 0
	}
	if boost, ok := c.byCode[code]; ok {
		return boost
	}

	boost := 0.0
	count, err := c.repo.CountActiveReferrals(ctx, code)
	if err != nil {
		c.log.Warn("count active referrals failed, using zero boost",
			zap.String("referralCode", code),
			zap.Error(err),
		)
	} else {
		boost = float64(count) * c.boostPerReferral
	}

	c.byCode[code] = boost

	return boost
}
