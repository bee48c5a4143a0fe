package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
	"github.com/starxnet/mining-credits-cli/internal/ports"
)

// MiningService covers the operator-facing lifecycle around the batch run:
// registering accounts and opening/closing sessions. Session times always
// come from the store's clock, never the local machine.
type MiningService struct {
	store ports.AccountStore
	rates domain.Rates
}

func NewMiningService(store ports.AccountStore, rates domain.Rates) *MiningService {
	return &MiningService{store: store, rates: rates}
}

func (s *MiningService) AddAccount(ctx context.Context, account domain.Account) error {
	account.ID = domain.AccountID(strings.TrimSpace(string(account.ID)))
	if account.ID == "" {
		return fmt.Errorf("account id is required")
	}

	_, err := s.store.GetByID(ctx, account.ID)
	if err == nil {
		return fmt.Errorf("account %s: %w", account.ID, domain.ErrAccountExists)
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return fmt.Errorf("get account by id: %w", err)
	}

	if err := s.store.Save(ctx, account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

func (s *MiningService) StartMining(ctx context.Context, id domain.AccountID) (domain.Session, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Session{}, fmt.Errorf("get account by id: %w", err)
	}

	if account.HasOpenSession() {
		return domain.Session{}, fmt.Errorf("account %s: %w", id, domain.ErrSessionAlreadyOpen)
	}

	now, err := s.store.Now(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("resolve start time: %w", err)
	}

	session := domain.Session{IsMining: true, StartTime: now, LastUpdate: now}
	account.Mining = &session

	if err := s.store.Save(ctx, account); err != nil {
		return domain.Session{}, fmt.Errorf("save account: %w", err)
	}

	return session, nil
}

// StopMining credits the minutes earned up to now, then closes the session.
func (s *MiningService) StopMining(ctx context.Context, id domain.AccountID) (domain.AccrualResult, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.AccrualResult{}, fmt.Errorf("get account by id: %w", err)
	}

	if !account.HasOpenSession() {
		return domain.AccrualResult{}, fmt.Errorf("account %s: %w", id, domain.ErrNoOpenSession)
	}

	now, err := s.store.Now(ctx)
	if err != nil {
		return domain.AccrualResult{}, fmt.Errorf("resolve stop time: %w", err)
	}

	boost := 0.0
	if account.ReferralCode != "" {
		count, err := s.store.CountActiveReferrals(ctx, account.ReferralCode)
		if err != nil {
			return domain.AccrualResult{}, fmt.Errorf("count active referrals: %w", err)
		}
		boost = float64(count) * s.rates.BoostPerReferral
	}

	accrual, credited := domain.EvaluateAccrual(account, boost, now, s.rates)
	if credited {
		account = accrual.Mutation().Apply(account)
	}
	account.Mining.IsMining = false

	if err := s.store.Save(ctx, account); err != nil {
		return domain.AccrualResult{}, fmt.Errorf("save account: %w", err)
	}

	return accrual, nil
}

type Status struct {
	Account    domain.Account
	Open       bool
	SessionEnd time.Time
}

func (s *MiningService) GetStatus(ctx context.Context, id domain.AccountID) (Status, error) {
	account, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Status{}, fmt.Errorf("get account by id: %w", err)
	}

	return s.statusFromAccount(account), nil
}

func (s *MiningService) GetStatusAll(ctx context.Context) ([]Status, error) {
	accounts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })

	statuses := make([]Status, 0, len(accounts))
	for _, account := range accounts {
		statuses = append(statuses, s.statusFromAccount(account))
	}

	return statuses, nil
}

func (s *MiningService) statusFromAccount(account domain.Account) Status {
	status := Status{Account: account, Open: account.HasOpenSession()}
	if account.Mining != nil && !account.Mining.StartTime.IsZero() {
		status.SessionEnd = account.Mining.End(s.rates.MaxSession)
	}

	return status
}
