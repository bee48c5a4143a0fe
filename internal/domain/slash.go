package domain

import "time"

// SlashResult describes one inactivity penalty for an account.
type SlashResult struct {
	Hours      int
	Amount     float64
	NewBalance float64
	SlashedAt  time.Time
}

func (r SlashResult) Mutation() Mutation {
	slashedAt := r.SlashedAt
	return Mutation{
		Balance:         &r.NewBalance,
		LastSlashUpdate: &slashedAt,
	}
}

// EvaluateSlash computes the inactivity penalty for one account. Accounts
// with an open session or a zero balance are never slashed. The second
// return is false when no penalty applies; in that case nothing is written,
// so repeated runs inside the same hour cannot re-slash.
//
// The last activity time falls back through the session's credited point,
// the session's end, then the previous slash evaluation. A brand-new account
// with no history at all defaults to now and incurs no penalty on its first
// evaluation.
func EvaluateSlash(account Account, now time.Time, rates Rates) (SlashResult, bool) {
	if account.HasOpenSession() {
		return SlashResult{}, false
	}

	balance := sanitizeBalance(account.Balance)
	if balance <= 0 {
		return SlashResult{}, false
	}

	lastActivity := lastActivityTime(account, now, rates.MaxSession)

	hours := int(now.Sub(lastActivity) / time.Hour)
	if hours < 1 {
		return SlashResult{}, false
	}

	amount := float64(hours) * rates.SlashPerHour
	if amount > balance {
		amount = balance
	}
	if amount <= 0 {
		return SlashResult{}, false
	}

	return SlashResult{
		Hours:      hours,
		Amount:     amount,
		NewBalance: balance - amount,
		SlashedAt:  now,
	}, true
}

func lastActivityTime(account Account, now time.Time, maxSession time.Duration) time.Time {
	if session := account.Mining; session != nil {
		if !session.LastUpdate.IsZero() {
			return session.LastUpdate
		}
		if !session.StartTime.IsZero() {
			return session.End(maxSession)
		}
	}
	if account.LastSlashUpdate != nil && !account.LastSlashUpdate.IsZero() {
		return *account.LastSlashUpdate
	}

	return now
}
