package token2022

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Token-metadata interface discriminators: the first 8 bytes of
// sha256("spl_token_metadata_interface:<name>").
var (
	discInitialize      = discriminator("initialize_account")
	discUpdateField     = discriminator("updating_field")
	discUpdateAuthority = discriminator("update_the_authority")
)

func discriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("spl_token_metadata_interface:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// Field variants of the UpdateField instruction.
const (
	fieldName   uint8 = 0
	fieldSymbol uint8 = 1
	fieldURI    uint8 = 2
	fieldKey    uint8 = 3
)

// Metadata is the token-metadata stored in the mint.
type Metadata struct {
	UpdateAuthority *solana.PublicKey // nil once revoked
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
	Additional      [][2]string
}

type initializeArgs struct {
	Name   string
	Symbol string
	URI    string
}

// NewInitializeMetadataInstruction writes name, symbol and uri into the
// metadata account, here the mint itself.
func NewInitializeMetadataInstruction(metadata, updateAuthority, mint, mintAuthority solana.PublicKey, name, symbol, uri string) (solana.Instruction, error) {
	data, err := encode(discInitialize, func(enc *bin.Encoder) error {
		return enc.Encode(initializeArgs{Name: name, Symbol: symbol, URI: uri})
	})
	if err != nil {
		return nil, fmt.Errorf("encode initialize metadata: %w", err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(metadata).WRITE(),
		solana.Meta(updateAuthority),
		solana.Meta(mint),
		solana.Meta(mintAuthority).SIGNER(),
	}, data), nil
}

// NewUpdateFieldInstruction sets an additional metadata key. The well known
// names "name", "symbol" and "uri" update the base fields instead.
func NewUpdateFieldInstruction(metadata, updateAuthority solana.PublicKey, field, value string) (solana.Instruction, error) {
	data, err := encode(discUpdateField, func(enc *bin.Encoder) error {
		switch field {
		case "name":
			if err := enc.WriteUint8(fieldName); err != nil {
				return err
			}
		case "symbol":
			if err := enc.WriteUint8(fieldSymbol); err != nil {
				return err
			}
		case "uri":
			if err := enc.WriteUint8(fieldURI); err != nil {
				return err
			}
		default:
			if err := enc.WriteUint8(fieldKey); err != nil {
				return err
			}
			if err := enc.Encode(field); err != nil {
				return err
			}
		}
		return enc.Encode(value)
	})
	if err != nil {
		return nil, fmt.Errorf("encode update field %q: %w", field, err)
	}

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(metadata).WRITE(),
		solana.Meta(updateAuthority).SIGNER(),
	}, data), nil
}

// NewUpdateMetadataAuthorityInstruction hands the metadata update authority
// to newAuthority, or revokes it when newAuthority is nil.
func NewUpdateMetadataAuthorityInstruction(metadata, currentAuthority solana.PublicKey, newAuthority *solana.PublicKey) solana.Instruction {
	data := make([]byte, 0, 8+32)
	data = append(data, discUpdateAuthority[:]...)
	var next solana.PublicKey // zero key encodes None
	if newAuthority != nil {
		next = *newAuthority
	}
	data = append(data, next[:]...)

	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.Meta(metadata).WRITE(),
		solana.Meta(currentAuthority).SIGNER(),
	}, data)
}

func encode(disc [8]byte, body func(enc *bin.Encoder) error) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(disc[:])
	if err := body(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PackedMetadataLen is the borsh size of m once every additional field is
// set: two keys, three strings and the key/value vector.
func PackedMetadataLen(m *Metadata) int {
	n := 32 + 32 + borshStringLen(m.Name) + borshStringLen(m.Symbol) + borshStringLen(m.URI) + 4
	for _, kv := range m.Additional {
		n += borshStringLen(kv[0]) + borshStringLen(kv[1])
	}
	return n
}

// MetadataAccountLen is the full mint size the account grows to after the
// metadata is written. Rent must be funded for this size up front.
func MetadataAccountLen(m *Metadata) int {
	return MetadataPointerMintLen + tlvHeaderLen + PackedMetadataLen(m)
}

func borshStringLen(s string) int {
	return 4 + len(s)
}
