package minting

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"

	"token-minter/internal/apperr"
	"token-minter/internal/domain"
	rpc "token-minter/internal/solana"
	"token-minter/internal/storage"
	"token-minter/internal/token2022"
)

// TokenInfo is the on-chain state of a minted token plus the order that
// produced it, if any.
type TokenInfo struct {
	Address         string            `json:"address"`
	Supply          uint64            `json:"supply"`
	Decimals        uint8             `json:"decimals"`
	MintAuthority   *string           `json:"mintAuthority"`
	FreezeAuthority *string           `json:"freezeAuthority"`
	UpdateAuthority *string           `json:"updateAuthority"`
	Name            string            `json:"name,omitempty"`
	Symbol          string            `json:"symbol,omitempty"`
	URI             string            `json:"uri,omitempty"`
	Additional      map[string]string `json:"additionalMetadata,omitempty"`

	Order *domain.MintOrder `json:"-"`
}

// Inspector reads mints back from the chain.
type Inspector struct {
	rpc        rpc.RPCClient
	orders     storage.MintOrderStore
	commitment rpc.Commitment
}

// NewInspector creates an inspector. orders may be nil.
func NewInspector(client rpc.RPCClient, orders storage.MintOrderStore, commitment rpc.Commitment) *Inspector {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Inspector{rpc: client, orders: orders, commitment: commitment}
}

// Inspect fetches and decodes the mint at address.
func (i *Inspector) Inspect(ctx context.Context, address string) (*TokenInfo, error) {
	key, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, apperr.Validation("address", "Invalid token address.")
	}

	account, err := i.rpc.GetAccountInfo(ctx, key.String(), i.commitment)
	if err != nil {
		return nil, apperr.Network("fetch mint account", err)
	}
	if account == nil || account.Owner != token2022.ProgramID.String() {
		return nil, apperr.NotFound("mint "+address, token2022.ErrNotMint)
	}

	data, err := account.DecodeData()
	if err != nil {
		return nil, apperr.Network("decode mint account", err)
	}
	mint, err := token2022.ParseMint(data)
	if err != nil {
		return nil, apperr.NotFound("mint "+address, err)
	}

	info := &TokenInfo{
		Address:         key.String(),
		Supply:          mint.Supply,
		Decimals:        mint.Decimals,
		MintAuthority:   keyString(mint.MintAuthority),
		FreezeAuthority: keyString(mint.FreezeAuthority),
	}
	if md := mint.Metadata; md != nil {
		info.UpdateAuthority = keyString(md.UpdateAuthority)
		info.Name = md.Name
		info.Symbol = md.Symbol
		info.URI = md.URI
		if len(md.Additional) > 0 {
			info.Additional = make(map[string]string, len(md.Additional))
			for _, kv := range md.Additional {
				info.Additional[kv[0]] = kv[1]
			}
		}
	}

	if i.orders != nil {
		order, err := i.orders.GetByMintAddress(ctx, info.Address)
		switch {
		case err == nil:
			info.Order = order
		case !errors.Is(err, storage.ErrNotFound):
			return nil, apperr.Storage("load mint order", err)
		}
	}

	return info, nil
}

func keyString(k *solana.PublicKey) *string {
	if k == nil || k.IsZero() {
		return nil
	}
	s := k.String()
	return &s
}
