// Package stub provides in-memory fakes of the Solana clients for tests.
package stub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"token-minter/internal/solana"
)

// ErrNoBlockhash is returned when no blockhash was configured.
var ErrNoBlockhash = errors.New("no blockhash configured")

// RPCClient implements solana.RPCClient for testing. Every sent transaction
// is recorded; its status is Confirmed unless overridden in Statuses.
type RPCClient struct {
	mu sync.Mutex

	Blockhash   *solana.Blockhash
	BlockHeight uint64
	Rent        uint64
	Accounts    map[string]*solana.AccountInfo
	Statuses    map[string]*solana.SignatureStatus

	// SendErr, when set, is returned by the next sends. SendErrs pops one
	// error per call before falling back to SendErr.
	SendErr  error
	SendErrs []error

	// AutoConfirm controls whether sent transactions get a confirmed status.
	AutoConfirm bool

	Sent    [][]byte
	sigSeq  int
	SigFunc func(wire []byte) string

	// OnSend, when set, is called with the number of accepted sends after
	// each successful SendTransaction.
	OnSend func(sent int)
}

// NewRPCClient creates a new stub RPC client that confirms every send.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Blockhash: &solana.Blockhash{
			Hash:                 "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			LastValidBlockHeight: 1000,
			Slot:                 500,
		},
		BlockHeight: 900,
		Rent:        2039280,
		Accounts:    make(map[string]*solana.AccountInfo),
		Statuses:    make(map[string]*solana.SignatureStatus),
		AutoConfirm: true,
	}
}

// GetLatestBlockhash returns the configured blockhash.
func (c *RPCClient) GetLatestBlockhash(_ context.Context, _ solana.Commitment) (*solana.Blockhash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Blockhash == nil {
		return nil, ErrNoBlockhash
	}
	bh := *c.Blockhash
	return &bh, nil
}

// GetMinimumBalanceForRentExemption returns the configured rent.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64, _ solana.Commitment) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Rent, nil
}

// SendTransaction records wire and returns a signature.
func (c *RPCClient) SendTransaction(_ context.Context, wire []byte, _ solana.SendOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.SendErrs) > 0 {
		err := c.SendErrs[0]
		c.SendErrs = c.SendErrs[1:]
		if err != nil {
			return "", err
		}
	} else if c.SendErr != nil {
		return "", c.SendErr
	}

	c.Sent = append(c.Sent, append([]byte(nil), wire...))

	var sig string
	if c.SigFunc != nil {
		sig = c.SigFunc(wire)
	} else {
		c.sigSeq++
		sig = fmt.Sprintf("stub-signature-%d", c.sigSeq)
	}

	if _, ok := c.Statuses[sig]; !ok && c.AutoConfirm {
		c.Statuses[sig] = &solana.SignatureStatus{
			Slot:               501,
			ConfirmationStatus: solana.CommitmentConfirmed,
		}
	}
	if c.OnSend != nil {
		c.OnSend(len(c.Sent))
	}
	return sig, nil
}

// GetSignatureStatuses returns configured statuses, nil for unknown ones.
func (c *RPCClient) GetSignatureStatuses(_ context.Context, signatures ...string) ([]*solana.SignatureStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*solana.SignatureStatus, len(signatures))
	for i, sig := range signatures {
		if s, ok := c.Statuses[sig]; ok {
			cp := *s
			out[i] = &cp
		}
	}
	return out, nil
}

// GetBlockHeight returns the configured block height.
func (c *RPCClient) GetBlockHeight(_ context.Context, _ solana.Commitment) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.BlockHeight, nil
}

// GetAccountInfo returns the configured account, nil if absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string, _ solana.Commitment) (*solana.AccountInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.Accounts[pubkey]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

// SetStatus overrides the status reported for sig.
func (c *RPCClient) SetStatus(sig string, status *solana.SignatureStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Statuses[sig] = status
}

// SetAccount stores an account under pubkey.
func (c *RPCClient) SetAccount(pubkey string, info *solana.AccountInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[pubkey] = info
}

// SentCount returns the number of transactions accepted so far.
func (c *RPCClient) SentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Sent)
}

var _ solana.RPCClient = (*RPCClient)(nil)
