package domain

import (
	"fmt"
	"time"
)

// Rates holds the accrual and slashing constants for a deployment. All
// per-hour values are in coins per hour.
type Rates struct {
	BasePerHour      float64
	BoostPerReferral float64
	MaxSession       time.Duration
	SlashPerHour     float64
}

func DefaultRates() Rates {
	return Rates{
		BasePerHour:      0.3125,
		BoostPerReferral: 0.03,
		MaxSession:       24 * time.Hour,
		SlashPerHour:     0.1,
	}
}

func (r Rates) Validate() error {
	if r.BasePerHour < 0 {
		return fmt.Errorf("base rate must not be negative")
	}
	if r.BoostPerReferral < 0 {
		return fmt.Errorf("boost per referral must not be negative")
	}
	if r.MaxSession <= 0 {
		return fmt.Errorf("max session duration must be positive")
	}
	if r.SlashPerHour < 0 {
		return fmt.Errorf("slash rate must not be negative")
	}

	return nil
}
