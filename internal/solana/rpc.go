// Package solana is a minimal JSON-RPC and WebSocket client for the calls
// the minting flow makes: blockhashes, rent, send, and confirmation.
package solana

import "context"

// RPCClient defines Solana RPC HTTP interface.
type RPCClient interface {
	// GetLatestBlockhash returns a recent blockhash and the last block height
	// at which a transaction using it is still valid.
	GetLatestBlockhash(ctx context.Context, commitment Commitment) (*Blockhash, error)

	// GetMinimumBalanceForRentExemption returns the lamports needed to make an
	// account of dataLen bytes rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64, commitment Commitment) (uint64, error)

	// SendTransaction submits a wire-encoded signed transaction and returns
	// its signature. It is never retried by the client.
	SendTransaction(ctx context.Context, wire []byte, opts SendOptions) (string, error)

	// GetSignatureStatuses returns one entry per signature; nil entries are
	// signatures the node has not seen.
	GetSignatureStatuses(ctx context.Context, signatures ...string) ([]*SignatureStatus, error)

	// GetBlockHeight returns the current block height.
	GetBlockHeight(ctx context.Context, commitment Commitment) (uint64, error)

	// GetAccountInfo retrieves account info by public key.
	// Returns nil if account not found.
	GetAccountInfo(ctx context.Context, pubkey string, commitment Commitment) (*AccountInfo, error)
}
