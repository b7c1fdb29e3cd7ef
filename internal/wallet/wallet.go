// Package wallet is the signing capability used by the service and the CLI.
// The server signs with the operator keypair; a browser wallet is an
// external Wallet that only ever sees the fee transaction.
package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ErrMissingSigner is returned when a transaction requires a signature
// that none of the given signers can produce.
var ErrMissingSigner = errors.New("missing signer")

// Signer produces ed25519 signatures for one public key.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(ctx context.Context, message []byte) (solana.Signature, error)
}

// Wallet is a Signer with a connection lifecycle, like a hardware or
// browser wallet.
type Wallet interface {
	Signer
	Connect(ctx context.Context) error
	Disconnect() error
}

// Keypair is an in-process Wallet backed by a private key.
type Keypair struct {
	key solana.PrivateKey
}

// NewKeypair wraps an existing private key.
func NewKeypair(key solana.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

// GenerateKeypair creates a fresh random keypair, e.g. for a new mint.
func GenerateKeypair() (*Keypair, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Keypair{key: key}, nil
}

// KeypairFromBase58 decodes a 64 byte base58 secret key.
func KeypairFromBase58(secret string) (*Keypair, error) {
	raw, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("secret key must be 64 bytes, got %d", len(raw))
	}

	key := solana.PrivateKey(raw)
	// The last 32 bytes must be the public key of the seed.
	if !solana.PrivateKey(ed25519.NewKeyFromSeed(raw[:32])).PublicKey().Equals(key.PublicKey()) {
		return nil, errors.New("secret key does not match its public key")
	}
	return &Keypair{key: key}, nil
}

// KeypairFromFile reads a solana-keygen JSON file.
func KeypairFromFile(path string) (*Keypair, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair file: %w", err)
	}
	return &Keypair{key: key}, nil
}

// PublicKey returns the signer address.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

// Sign signs message.
func (k *Keypair) Sign(_ context.Context, message []byte) (solana.Signature, error) {
	return k.key.Sign(message)
}

// Connect is a no-op for local keys.
func (k *Keypair) Connect(context.Context) error { return nil }

// Disconnect is a no-op for local keys.
func (k *Keypair) Disconnect() error { return nil }

var _ Wallet = (*Keypair)(nil)

// SignTransaction fills the signature slots of tx that belong to signers.
// Every required signer must be present unless partial is set, which
// leaves foreign slots untouched for another party to fill.
func SignTransaction(ctx context.Context, tx *solana.Transaction, partial bool, signers ...Signer) error {
	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	required := int(tx.Message.Header.NumRequiredSignatures)
	if len(tx.Message.AccountKeys) < required {
		return fmt.Errorf("message lists %d keys for %d signatures", len(tx.Message.AccountKeys), required)
	}
	if len(tx.Signatures) < required {
		sigs := make([]solana.Signature, required)
		copy(sigs, tx.Signatures)
		tx.Signatures = sigs
	}

	for i := 0; i < required; i++ {
		key := tx.Message.AccountKeys[i]
		signer := findSigner(signers, key)
		if signer == nil {
			if partial {
				continue
			}
			return fmt.Errorf("%w: %s", ErrMissingSigner, key)
		}
		sig, err := signer.Sign(ctx, message)
		if err != nil {
			return fmt.Errorf("sign for %s: %w", key, err)
		}
		tx.Signatures[i] = sig
	}
	return nil
}

func findSigner(signers []Signer, key solana.PublicKey) Signer {
	for _, s := range signers {
		if s.PublicKey().Equals(key) {
			return s
		}
	}
	return nil
}
