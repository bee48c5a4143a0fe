package domain

import "time"

type AccountID string

type Account struct {
	ID              AccountID
	Name            string
	Balance         float64
	ReferralCode    string
	ReferredBy      string
	BoostRate       float64
	LastSlashUpdate *time.Time
	Mining          *Session
}

// Session is one bounded mining period. LastUpdate marks the point through
// which accrual has already been credited; a zero LastUpdate means nothing
// has been credited yet and StartTime is the effective starting point.
type Session struct {
	IsMining   bool
	StartTime  time.Time
	LastUpdate time.Time
}

func (s *Session) EffectiveLastUpdate() time.Time {
	if s.LastUpdate.IsZero() {
		return s.StartTime
	}
	return s.LastUpdate
}

func (s *Session) End(maxSession time.Duration) time.Time {
	return s.StartTime.Add(maxSession)
}

// HasOpenSession reports whether the account has a session the accrual
// evaluator should credit. A session without a start time is treated as
// partially initialized and skipped.
func (a Account) HasOpenSession() bool {
	return a.Mining != nil && a.Mining.IsMining && !a.Mining.StartTime.IsZero()
}
