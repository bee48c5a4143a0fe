package toml

import (
	"fmt"
	"math"
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type accountSchema struct {
	ID              string         `toml:"id"`
	Name            string         `toml:"name,omitempty"`
	Balance         float64        `toml:"balance"`
	ReferralCode    string         `toml:"referral_code,omitempty"`
	ReferredBy      string         `toml:"referred_by,omitempty"`
	BoostRate       float64        `toml:"boost_rate,omitempty"`
	LastSlashUpdate string         `toml:"last_slash_update,omitempty"`
	Mining          *sessionSchema `toml:"mining,omitempty"`
}

type sessionSchema struct {
	IsMining   bool   `toml:"is_mining"`
	StartTime  string `toml:"start_time"`
	LastUpdate string `toml:"last_update,omitempty"`
}

func toSchema(account domain.Account) accountSchema {
	encoded := accountSchema{
		ID:              string(account.ID),
		Name:            account.Name,
		Balance:         account.Balance,
		ReferralCode:    account.ReferralCode,
		ReferredBy:      account.ReferredBy,
		BoostRate:       account.BoostRate,
		LastSlashUpdate: encodeTime(account.LastSlashUpdate),
	}

	if account.Mining != nil {
		encoded.Mining = &sessionSchema{
			IsMining:   account.Mining.IsMining,
			StartTime:  formatTime(account.Mining.StartTime),
			LastUpdate: formatTime(account.Mining.LastUpdate),
		}
	}

	return encoded
}

func fromSchema(entry accountSchema) domain.Account {
	account := domain.Account{
		ID:              domain.AccountID(entry.ID),
		Name:            entry.Name,
		Balance:         clampAmount(entry.Balance),
		ReferralCode:    entry.ReferralCode,
		ReferredBy:      entry.ReferredBy,
		BoostRate:       clampAmount(entry.BoostRate),
		LastSlashUpdate: decodeTime(entry.LastSlashUpdate),
	}

	if entry.Mining != nil {
		account.Mining = &domain.Session{
			IsMining:   entry.Mining.IsMining,
			StartTime:  parseTime(entry.Mining.StartTime),
			LastUpdate: parseTime(entry.Mining.LastUpdate),
		}
	}

	return account
}

// clampAmount recovers malformed stored numbers as zero instead of failing
// the account record.
func clampAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return t
}

func encodeTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func decodeTime(raw string) *time.Time {
	t := parseTime(raw)
	if t.IsZero() {
		return nil
	}
	return &t
}
