package application

import (
	"time"

	"github.com/starxnet/mining-credits-cli/internal/domain"
)

// RunOptions controls one pass over the account population.
type RunOptions struct {
	// SlashEnabled turns on the inactivity slasher for this run.
	SlashEnabled bool
	// SlashAllow restricts slashing to the listed accounts. Empty means the
	// whole population is eligible.
	SlashAllow []domain.AccountID
	// DryRun evaluates everything but submits no mutations.
	DryRun bool
	// SubmitLimit bounds concurrent mutation submissions. Zero picks the
	// default.
	SubmitLimit int
}

// AccountResult is the structured per-account outcome of a run, the
// replacement for per-account console narration.
type AccountResult struct {
	ID            domain.AccountID
	Minutes       int
	SpeedBoost    float64
	BoostRate     float64
	RatePerHour   float64
	Credited      float64
	SessionClosed bool
	SlashedHours  int
	Slashed       float64
}

type WriteFailure struct {
	ID  domain.AccountID
	Err string
}

// Report aggregates one run. It is the sole observable output of a pass;
// Failures surfaces per-account write errors that did not abort the batch.
type Report struct {
	RanAt             time.Time
	DryRun            bool
	AccountsEvaluated int
	SessionsClosed    int
	SessionsStillOpen int
	TotalCredited     float64
	AccountsSlashed   int
	TotalSlashed      float64
	Results           []AccountResult
	Failures          []WriteFailure
}
