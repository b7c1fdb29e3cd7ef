// Package txsend sends transactions, waits for confirmation and classifies
// failures into network and chain errors.
package txsend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"token-minter/internal/apperr"
	"token-minter/internal/logger"
	"token-minter/internal/observability"
	rpc "token-minter/internal/solana"
	"token-minter/internal/wallet"
)

// Sender submits transactions through an RPC node.
type Sender struct {
	rpc        rpc.RPCClient
	confirmer  rpc.Confirmer
	commitment rpc.Commitment
	log        *logrus.Entry
}

// New creates a sender. Confirmation waits for commitment.
func New(client rpc.RPCClient, confirmer rpc.Confirmer, commitment rpc.Commitment) *Sender {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Sender{
		rpc:        client,
		confirmer:  confirmer,
		commitment: commitment,
		log:        logger.NewSublogger("txsend"),
	}
}

// SendRaw submits an already signed wire transaction with preflight
// simulation at the configured commitment.
func (s *Sender) SendRaw(ctx context.Context, wire []byte) (string, error) {
	sig, err := s.rpc.SendTransaction(ctx, wire, rpc.SendOptions{
		SkipPreflight:       false,
		PreflightCommitment: s.commitment,
	})
	if err != nil {
		return "", classifySendError(err)
	}
	return sig, nil
}

// Confirm waits until signature reaches the configured commitment. The
// expiry bound comes from a fresh blockhash, which is never earlier than
// the one the transaction was built with.
func (s *Sender) Confirm(ctx context.Context, signature string) error {
	bh, err := s.rpc.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return apperr.Network("fetch blockhash for confirmation", err)
	}
	return s.confirm(ctx, signature, bh.LastValidBlockHeight)
}

func (s *Sender) confirm(ctx context.Context, signature string, lastValidBlockHeight uint64) error {
	start := time.Now()
	err := s.confirmer.Confirm(ctx, signature, lastValidBlockHeight)
	observability.RecordConfirmation(confirmResult(err), time.Since(start))
	if err != nil {
		return classifyConfirmError(signature, err)
	}

	s.log.WithField("signature", signature).
		WithField("elapsed", time.Since(start).String()).
		Debug("Transaction confirmed")
	return nil
}

// SendAndConfirm builds a transaction paid by payer from instructions,
// signs it with payer and signers, sends it and waits for confirmation.
func (s *Sender) SendAndConfirm(ctx context.Context, instructions []solana.Instruction, payer wallet.Signer, signers ...wallet.Signer) (string, error) {
	bh, err := s.rpc.GetLatestBlockhash(ctx, s.commitment)
	if err != nil {
		return "", apperr.Network("fetch blockhash", err)
	}
	hash, err := solana.HashFromBase58(bh.Hash)
	if err != nil {
		return "", apperr.Network("decode blockhash", err)
	}

	tx, err := solana.NewTransaction(instructions, hash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return "", apperr.New(apperr.KindUnknown, "build transaction", err)
	}
	if err := wallet.SignTransaction(ctx, tx, false, append([]wallet.Signer{payer}, signers...)...); err != nil {
		return "", apperr.New(apperr.KindUnknown, "sign transaction", err)
	}

	wire, err := tx.MarshalBinary()
	if err != nil {
		return "", apperr.New(apperr.KindUnknown, "serialize transaction", err)
	}

	sig, err := s.SendRaw(ctx, wire)
	if err != nil {
		return "", err
	}
	if err := s.confirm(ctx, sig, bh.LastValidBlockHeight); err != nil {
		return sig, err
	}
	return sig, nil
}

func classifySendError(err error) error {
	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		// The node rejected the transaction itself, e.g. a failed simulation.
		return apperr.Chain(fmt.Sprintf("send rejected (%d)", rpcErr.Code), err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Network("send cancelled", err)
	}
	return apperr.Network("send transaction", err)
}

func classifyConfirmError(signature string, err error) error {
	var txErr *rpc.TransactionError
	switch {
	case errors.As(err, &txErr):
		return apperr.Chain("transaction failed on chain", err)
	case errors.Is(err, rpc.ErrBlockhashExpired):
		return apperr.Chain("transaction expired", err)
	case errors.Is(err, rpc.ErrConfirmationTimeout):
		return apperr.Chain("transaction not confirmed in time", err)
	default:
		return apperr.Network("confirm "+signature, err)
	}
}

func confirmResult(err error) string {
	var txErr *rpc.TransactionError
	switch {
	case err == nil:
		return "confirmed"
	case errors.As(err, &txErr):
		return "failed"
	case errors.Is(err, rpc.ErrBlockhashExpired):
		return "expired"
	case errors.Is(err, rpc.ErrConfirmationTimeout):
		return "timeout"
	default:
		return "error"
	}
}
