package token2022

import (
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// ErrNotMint is returned for account data that is not a Token-2022 mint.
var ErrNotMint = errors.New("account is not a mint")

// Mint is a decoded Token-2022 mint with the extensions this service sets.
type Mint struct {
	Supply          uint64
	Decimals        uint8
	MintAuthority   *solana.PublicKey
	FreezeAuthority *solana.PublicKey

	// MetadataAddress is where the pointer extension says metadata lives.
	MetadataAddress *solana.PublicKey
	Metadata        *Metadata
}

type metadataLayout struct {
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
	Additional      []metadataPair
}

type metadataPair struct {
	Key   string
	Value string
}

// ParseMint decodes raw mint account data.
func ParseMint(data []byte) (*Mint, error) {
	if len(data) < BaseMintLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrNotMint, len(data))
	}

	var base token.Mint
	if err := bin.NewBinDecoder(data[:BaseMintLen]).Decode(&base); err != nil {
		return nil, fmt.Errorf("decode mint: %w", err)
	}
	if !base.IsInitialized {
		return nil, fmt.Errorf("%w: not initialized", ErrNotMint)
	}

	m := &Mint{
		Supply:          base.Supply,
		Decimals:        base.Decimals,
		MintAuthority:   base.MintAuthority,
		FreezeAuthority: base.FreezeAuthority,
	}

	if len(data) <= baseAccountLen {
		return m, nil
	}
	if data[baseAccountLen] != accountTypeMint {
		return nil, fmt.Errorf("%w: account type %d", ErrNotMint, data[baseAccountLen])
	}

	tlv := data[baseAccountLen+accountTypeLen:]
	for len(tlv) >= tlvHeaderLen {
		typ := binary.LittleEndian.Uint16(tlv[0:2])
		length := int(binary.LittleEndian.Uint16(tlv[2:4]))
		if typ == 0 {
			break // uninitialized tail
		}
		if len(tlv) < tlvHeaderLen+length {
			return nil, fmt.Errorf("extension %d truncated", typ)
		}
		value := tlv[tlvHeaderLen : tlvHeaderLen+length]

		switch typ {
		case extensionMetadataPointer:
			if length != metadataPointerLen {
				return nil, fmt.Errorf("metadata pointer: unexpected length %d", length)
			}
			addr := solana.PublicKeyFromBytes(value[32:64])
			if !addr.IsZero() {
				m.MetadataAddress = &addr
			}
		case extensionTokenMetadata:
			md, err := decodeMetadata(value)
			if err != nil {
				return nil, err
			}
			m.Metadata = md
		}
		tlv = tlv[tlvHeaderLen+length:]
	}
	return m, nil
}

func decodeMetadata(value []byte) (*Metadata, error) {
	var layout metadataLayout
	if err := bin.NewBorshDecoder(value).Decode(&layout); err != nil {
		return nil, fmt.Errorf("decode token metadata: %w", err)
	}

	md := &Metadata{
		Mint:   layout.Mint,
		Name:   layout.Name,
		Symbol: layout.Symbol,
		URI:    layout.URI,
	}
	if !layout.UpdateAuthority.IsZero() {
		auth := layout.UpdateAuthority
		md.UpdateAuthority = &auth
	}
	for _, kv := range layout.Additional {
		md.Additional = append(md.Additional, [2]string{kv.Key, kv.Value})
	}
	return md, nil
}

// Field returns an additional metadata value.
func (m *Metadata) Field(key string) (string, bool) {
	for _, kv := range m.Additional {
		if kv[0] == key {
			return kv[1], true
		}
	}
	return "", false
}
