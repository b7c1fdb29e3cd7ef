package domain

import "time"

// StepOutcome is the result of one saga step.
type StepOutcome string

const (
	StepOK     StepOutcome = "ok"
	StepFailed StepOutcome = "failed"
)

// StepRecord journals one finalizer step.
// Corresponds to the mint_steps table in ClickHouse.
type StepRecord struct {
	TransactionID string
	Step          string
	Outcome       StepOutcome
	MintAddress   string // empty before create_mint
	Signature     string // empty for off-chain steps
	Error         string
	DurationMs    int64
	StartedAt     time.Time
}
