// Package token2022 builds the Token-2022 instructions that solana-go does
// not ship: the MetadataPointer extension, the token-metadata interface and
// idempotent associated token accounts owned by Token-2022.
package token2022

import (
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

var (
	// ProgramID is the Token-2022 program.
	ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

	// AssociatedTokenProgramID derives and creates associated token accounts.
	AssociatedTokenProgramID = solana.SPLAssociatedTokenAccountProgramID
)

// Point solana-go's token instruction builders at Token-2022. Every
// instruction this service sends targets Token-2022 mints.
func init() {
	token.SetProgramID(ProgramID)
}

// Account layout sizes.
const (
	// BaseMintLen is the size of a plain SPL mint.
	BaseMintLen = 82
	// baseAccountLen is the size of a plain SPL token account; extended
	// mints are padded to it so the account type byte sits at a fixed offset.
	baseAccountLen = 165
	accountTypeLen = 1
	// tlvHeaderLen is the type and length prefix of each extension.
	tlvHeaderLen = 4

	metadataPointerLen = 64

	// MetadataPointerMintLen is a mint with only the MetadataPointer extension.
	MetadataPointerMintLen = baseAccountLen + accountTypeLen + tlvHeaderLen + metadataPointerLen
)

// Extension types stored in the TLV area of a mint.
const (
	extensionMetadataPointer uint16 = 18
	extensionTokenMetadata   uint16 = 19
)

// accountTypeMint marks an extended account as a mint.
const accountTypeMint = 1
