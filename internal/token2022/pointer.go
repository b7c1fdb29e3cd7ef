package token2022

import (
	"github.com/gagliardetto/solana-go"
)

// Token-2022 instruction tags.
const (
	instructionMetadataPointerExtension = 39
	metadataPointerInitialize           = 0
)

// NewInitializeMetadataPointerInstruction makes mint point at metadata,
// updatable by authority. It must run before InitializeMint.
func NewInitializeMetadataPointerInstruction(mint, authority, metadata solana.PublicKey) solana.Instruction {
	data := make([]byte, 0, 2+metadataPointerLen)
	data = append(data, instructionMetadataPointerExtension, metadataPointerInitialize)
	data = append(data, authority[:]...)
	data = append(data, metadata[:]...)

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(mint).WRITE(),
	}, data)
}
