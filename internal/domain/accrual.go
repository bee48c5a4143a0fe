package domain

import (
	"math"
	"time"
)

// AccrualResult describes one crediting step for an open session.
type AccrualResult struct {
	Minutes       int
	RatePerHour   float64
	Coins         float64
	NewBalance    float64
	CreditedUntil time.Time
	SessionClosed bool
}

func (r AccrualResult) Mutation() Mutation {
	m := Mutation{
		Balance:    &r.NewBalance,
		LastUpdate: &r.CreditedUntil,
	}
	if r.SessionClosed {
		closed := false
		m.IsMining = &closed
	}

	return m
}

// EvaluateAccrual computes the credit owed to one account between its last
// credited point and now, capped at the session end. It is a pure function:
// the caller resolves the referral speed boost and applies the returned
// mutation. The second return is false when there is nothing to credit.
//
// Elapsed whole minutes are floored when this pass closes the session, so a
// session can never be credited past its exact boundary, and rounded to the
// nearest minute otherwise, which tolerates scheduler jitter; the fractional
// remainder carries forward because LastUpdate advances to the unrounded
// credit point.
func EvaluateAccrual(account Account, speedBoost float64, now time.Time, rates Rates) (AccrualResult, bool) {
	if !account.HasOpenSession() {
		return AccrualResult{}, false
	}

	session := account.Mining
	last := session.EffectiveLastUpdate()
	sessionEnd := session.End(rates.MaxSession)

	creditUntil := now
	if sessionEnd.Before(creditUntil) {
		creditUntil = sessionEnd
	}
	sessionClosed := !creditUntil.Before(sessionEnd)

	elapsed := creditUntil.Sub(last)
	var minutes int
	if sessionClosed {
		minutes = int(elapsed / time.Minute)
	} else {
		minutes = int(math.Round(elapsed.Minutes()))
	}

	if minutes <= 0 {
		return AccrualResult{}, false
	}

	ratePerHour := rates.BasePerHour + sanitizeRate(speedBoost) + sanitizeRate(account.BoostRate)
	coins := float64(minutes) * ratePerHour / 60

	return AccrualResult{
		Minutes:       minutes,
		RatePerHour:   ratePerHour,
		Coins:         coins,
		NewBalance:    sanitizeBalance(account.Balance) + coins,
		CreditedUntil: creditUntil,
		SessionClosed: sessionClosed,
	}, true
}

// sanitizeBalance recovers partially-initialized records: a NaN, infinite or
// negative stored balance counts as zero rather than poisoning the batch.
func sanitizeBalance(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func sanitizeRate(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
