package token2022

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Associated token account program instructions.
const ataCreateIdempotent = 1

// FindAssociatedTokenAddress derives owner's Token-2022 account for mint.
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		owner[:],
		ProgramID[:],
		mint[:],
	}, AssociatedTokenProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}

// NewCreateIdempotentATAInstruction creates owner's associated token
// account unless it already exists.
func NewCreateIdempotentATAInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, solana.PublicKey, error) {
	ata, err := FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, solana.PublicKey{}, err
	}

	ix := solana.NewInstruction(AssociatedTokenProgramID, solana.AccountMetaSlice{
		solana.Meta(payer).WRITE().SIGNER(),
		solana.Meta(ata).WRITE(),
		solana.Meta(owner),
		solana.Meta(mint),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(ProgramID),
	}, []byte{ataCreateIdempotent})
	return ix, ata, nil
}
