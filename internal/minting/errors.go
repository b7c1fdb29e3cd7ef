package minting

import (
	"errors"
	"fmt"
)

// Step names in execution order.
const (
	StepLoadRequest        = "load_request"
	StepPinImage           = "pin_image"
	StepPinMetadata        = "pin_metadata"
	StepCreateMint         = "create_mint"
	StepCreateTokenAccount = "create_token_account"
	StepMintSupply         = "mint_supply"
	StepSetMintAuthority   = "set_mint_authority"
	StepSetFreezeAuthority = "set_freeze_authority"
)

// Steps lists the saga in order.
var Steps = []string{
	StepLoadRequest,
	StepPinImage,
	StepPinMetadata,
	StepCreateMint,
	StepCreateTokenAccount,
	StepMintSupply,
	StepSetMintAuthority,
	StepSetFreezeAuthority,
}

// StepError reports the step a finalizer run stopped at. MintAddress is set
// once create_mint has landed, so the caller can report the partially
// configured mint.
type StepError struct {
	Step        string
	MintAddress string
	Err         error
}

func (e *StepError) Error() string {
	if e.MintAddress != "" {
		return fmt.Sprintf("step %s (mint %s): %v", e.Step, e.MintAddress, e.Err)
	}
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step name of a *StepError in err's chain.
func FailedStep(err error) (string, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step, true
	}
	return "", false
}
