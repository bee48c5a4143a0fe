package leveldb

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

type accountRecord struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Balance         float64        `json:"balance"`
	ReferralCode    string         `json:"referral_code,omitempty"`
	ReferredBy      string         `json:"referred_by,omitempty"`
	BoostRate       float64        `json:"boost_rate,omitempty"`
	LastSlashUpdate *time.Time     `json:"last_slash_update,omitempty"`
	Mining          *sessionRecord `json:"mining,omitempty"`
}

type sessionRecord struct {
	IsMining   bool       `json:"is_mining"`
	StartTime  time.Time  `json:"start_time"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

func toRecord(account domain.Account) accountRecord {
	record := accountRecord{
		ID:           string(account.ID),
		Name:         account.Name,
		Balance:      account.Balance,
		ReferralCode: account.ReferralCode,
		ReferredBy:   account.ReferredBy,
		BoostRate:    account.BoostRate,
	}

	if account.LastSlashUpdate != nil && !account.LastSlashUpdate.IsZero() {
		t := account.LastSlashUpdate.UTC()
		record.LastSlashUpdate = &t
	}

	if account.Mining != nil {
		session := &sessionRecord{
			IsMining:  account.Mining.IsMining,
			StartTime: account.Mining.StartTime.UTC(),
		}
		if !account.Mining.LastUpdate.IsZero() {
			t := account.Mining.LastUpdate.UTC()
			session.LastUpdate = &t
		}
		record.Mining = session
	}

	return record
}

func decodeAccount(data []byte) (domain.Account, error) {
	var record accountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Account{}, fmt.Errorf("unmarshal account record: %w", err)
	}

	account := domain.Account{
		ID:           domain.AccountID(record.ID),
		Name:         record.Name,
		Balance:      clampAmount(record.Balance),
		ReferralCode: record.ReferralCode,
		ReferredBy:   record.ReferredBy,
		BoostRate:    clampAmount(record.BoostRate),
	}

	if record.LastSlashUpdate != nil && !record.LastSlashUpdate.IsZero() {
		t := *record.LastSlashUpdate
		account.LastSlashUpdate = &t
	}

	if record.Mining != nil {
		session := &domain.Session{
			IsMining:  record.Mining.IsMining,
			StartTime: record.Mining.StartTime,
		}
		if record.Mining.LastUpdate != nil {
			session.LastUpdate = *record.Mining.LastUpdate
		}
		account.Mining = session
	}

	return account, nil
}

func clampAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
