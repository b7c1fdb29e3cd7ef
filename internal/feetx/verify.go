package feetx

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// ErrNotFeeTransfer is returned for a signed transaction that is not the
// issued fee transfer.
var ErrNotFeeTransfer = errors.New("not the issued fee transfer")

// VerifyTransfer checks that tx is a single system transfer of exactly
// lamports from payer to feeAddress, signed by payer.
func VerifyTransfer(tx *solana.Transaction, payer, feeAddress solana.PublicKey, lamports uint64) error {
	msg := &tx.Message

	if msg.Header.NumRequiredSignatures != 1 || len(msg.AccountKeys) == 0 || !msg.AccountKeys[0].Equals(payer) {
		return fmt.Errorf("%w: fee payer must be the requester", ErrNotFeeTransfer)
	}
	if len(msg.Instructions) != 1 {
		return fmt.Errorf("%w: expected 1 instruction, got %d", ErrNotFeeTransfer, len(msg.Instructions))
	}

	ix := msg.Instructions[0]
	program, err := msg.ResolveProgramIDIndex(ix.ProgramIDIndex)
	if err != nil || !program.Equals(solana.SystemProgramID) {
		return fmt.Errorf("%w: not a system instruction", ErrNotFeeTransfer)
	}

	accounts, err := ix.ResolveInstructionAccounts(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFeeTransfer, err)
	}
	decoded, err := system.DecodeInstruction(accounts, ix.Data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFeeTransfer, err)
	}
	transfer, ok := decoded.Impl.(*system.Transfer)
	if !ok {
		return fmt.Errorf("%w: not a transfer", ErrNotFeeTransfer)
	}

	if transfer.Lamports == nil || *transfer.Lamports != lamports {
		return fmt.Errorf("%w: wrong amount", ErrNotFeeTransfer)
	}
	if !transfer.GetFundingAccount().PublicKey.Equals(payer) {
		return fmt.Errorf("%w: wrong sender", ErrNotFeeTransfer)
	}
	if !transfer.GetRecipientAccount().PublicKey.Equals(feeAddress) {
		return fmt.Errorf("%w: wrong recipient", ErrNotFeeTransfer)
	}

	if len(tx.Signatures) != 1 {
		return fmt.Errorf("%w: expected 1 signature", ErrNotFeeTransfer)
	}
	content, err := msg.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if !tx.Signatures[0].Verify(payer, content) {
		return fmt.Errorf("%w: bad signature", ErrNotFeeTransfer)
	}
	return nil
}
